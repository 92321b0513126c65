package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	bucketRecords     = "records"      // settings + stats singletons
	bucketDomainState = "domain_state" // timeSpent_<domain> / lastUnlock_<domain>
)

// Store implements the storage.Store interface using bbolt.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store.
func Open(path string) (*Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return storage.EnsureDir(dir)
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketRecords, bucketDomainState} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// Close closes the underlying store database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Settings returns the settings store.
func (s *Store) Settings() storage.SettingsStore { return &settingsStore{db: s.db} }

// Stats returns the stats store.
func (s *Store) Stats() storage.StatsStore { return &statsStore{db: s.db} }

// Domains returns the per-domain ephemeral state store.
func (s *Store) Domains() storage.DomainStateStore { return &domainStore{db: s.db} }

// Dump serializes the full key space into a flat snapshot using the
// extension's key names.
func (s *Store) Dump(ctx context.Context) (map[string]json.RawMessage, error) {
	snapshot := make(map[string]json.RawMessage)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if b := tx.Bucket([]byte(bucketRecords)); b != nil {
			if err := b.ForEach(func(k, v []byte) error {
				snapshot[string(k)] = append(json.RawMessage(nil), v...)
				return nil
			}); err != nil {
				return err
			}
		}
		if b := tx.Bucket([]byte(bucketDomainState)); b != nil {
			if err := b.ForEach(func(k, v []byte) error {
				snapshot[string(k)] = append(json.RawMessage(nil), v...)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Restore writes every key of a validated snapshot in one transaction, so a
// failed import leaves the store unchanged.
func (s *Store) Restore(ctx context.Context, snapshot map[string]json.RawMessage) error {
	if err := storage.ValidateSnapshot(snapshot); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		records := tx.Bucket([]byte(bucketRecords))
		domains := tx.Bucket([]byte(bucketDomainState))
		if records == nil || domains == nil {
			return fmt.Errorf("store buckets missing")
		}
		for key, raw := range snapshot {
			bucket := records
			if strings.HasPrefix(key, storage.PrefixTimeSpent) || strings.HasPrefix(key, storage.PrefixLastUnlock) {
				bucket = domains
			}
			if err := bucket.Put([]byte(key), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

func marshal(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return data, nil
}

func unmarshal(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return nil
}

func getBucketValue(ctx context.Context, db *bbolt.DB, bucket string, key string) ([]byte, error) {
	var value []byte
	err := db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return storage.ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return storage.ErrNotFound
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func putBucketValue(ctx context.Context, db *bbolt.DB, bucket string, key string, data []byte) error {
	return db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket missing: %s", bucket)
		}
		return b.Put([]byte(key), data)
	})
}

func deleteBucketValue(ctx context.Context, db *bbolt.DB, bucket string, key string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}
