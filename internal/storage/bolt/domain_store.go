package bolt

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/storage"
	"go.etcd.io/bbolt"
)

type domainStore struct {
	db *bbolt.DB
}

func timeSpentKey(domain string) string {
	return storage.PrefixTimeSpent + domain
}

func lastUnlockKey(domain string) string {
	return storage.PrefixLastUnlock + domain
}

func (s *domainStore) LastUnlock(ctx context.Context, domain string) (time.Time, error) {
	raw, err := getBucketValue(ctx, s.db, bucketDomainState, lastUnlockKey(domain))
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

func (s *domainStore) SetLastUnlock(ctx context.Context, domain string, ts time.Time) error {
	value := strconv.FormatInt(ts.UnixMilli(), 10)
	return putBucketValue(ctx, s.db, bucketDomainState, lastUnlockKey(domain), []byte(value))
}

func (s *domainStore) TimeSpent(ctx context.Context, domain string) (int64, error) {
	raw, err := getBucketValue(ctx, s.db, bucketDomainState, timeSpentKey(domain))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

func (s *domainStore) AddTimeSpent(ctx context.Context, domain string, seconds int64) (int64, error) {
	var total int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketDomainState))
		if b == nil {
			return storage.ErrNotFound
		}
		key := []byte(timeSpentKey(domain))
		if existing := b.Get(key); existing != nil {
			prev, err := strconv.ParseInt(string(existing), 10, 64)
			if err == nil {
				total = prev
			}
		}
		total += seconds
		return b.Put(key, []byte(strconv.FormatInt(total, 10)))
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *domainStore) Clear(ctx context.Context, domains []string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketDomainState))
		if b == nil {
			return nil
		}
		for _, domain := range domains {
			if err := b.Delete([]byte(timeSpentKey(domain))); err != nil {
				return err
			}
			if err := b.Delete([]byte(lastUnlockKey(domain))); err != nil {
				return err
			}
		}
		return nil
	})
}
