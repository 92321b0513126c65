package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/config"
	"github.com/doomscrollingfix/dsfix/internal/storage"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every record; the suffix after the prefix is the same
// key name the extension uses, so exports are identical across backends.
const keyPrefix = "dsfix:"

// Store implements the storage.Store interface using Redis.
type Store struct {
	client        *redis.Client
	settingsStore *settingsStore
	statsStore    *statsStore
	domainStore   *domainStore
}

// Open creates a new Redis-backed storage instance.
func Open(cfg config.RedisConfig) (*Store, error) {
	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid dial_timeout: %w", err)
	}

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid read_timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid write_timeout: %w", err)
	}

	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &Store{
		client:        client,
		settingsStore: &settingsStore{client: client},
		statsStore:    &statsStore{client: client},
		domainStore:   &domainStore{client: client},
	}

	return store, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Settings returns the SettingsStore implementation.
func (s *Store) Settings() storage.SettingsStore {
	return s.settingsStore
}

// Stats returns the StatsStore implementation.
func (s *Store) Stats() storage.StatsStore {
	return s.statsStore
}

// Domains returns the DomainStateStore implementation.
func (s *Store) Domains() storage.DomainStateStore {
	return s.domainStore
}

// Dump serializes the full key space using the extension's key names.
func (s *Store) Dump(ctx context.Context) (map[string]json.RawMessage, error) {
	snapshot := make(map[string]json.RawMessage)

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan keys: %w", err)
		}
		for _, key := range keys {
			value, err := s.client.Get(ctx, key).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get %s: %w", key, err)
			}
			snapshot[strings.TrimPrefix(key, keyPrefix)] = json.RawMessage(value)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return snapshot, nil
}

// Restore writes every key of a validated snapshot in one MULTI/EXEC block.
func (s *Store) Restore(ctx context.Context, snapshot map[string]json.RawMessage) error {
	if err := storage.ValidateSnapshot(snapshot); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for key, raw := range snapshot {
		pipe.Set(ctx, keyPrefix+key, string(raw), 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

func getRaw(ctx context.Context, client *redis.Client, key string) ([]byte, error) {
	value, err := client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}
