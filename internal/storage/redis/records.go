package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doomscrollingfix/dsfix/internal/storage"
	"github.com/redis/go-redis/v9"
)

type settingsStore struct {
	client *redis.Client
}

func (s *settingsStore) Get(ctx context.Context) (storage.Settings, error) {
	raw, err := getRaw(ctx, s.client, storage.KeySettings)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.Settings{}, err
	}
	return storage.DecodeSettings(raw)
}

func (s *settingsStore) Put(ctx context.Context, settings storage.Settings) error {
	settings.Normalize()
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+storage.KeySettings, data, 0).Err()
}

func (s *settingsStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx, keyPrefix+storage.KeySettings).Err()
}

type statsStore struct {
	client *redis.Client
}

func (s *statsStore) Get(ctx context.Context) (storage.Stats, error) {
	raw, err := getRaw(ctx, s.client, storage.KeyStats)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.Stats{}, err
	}
	return storage.DecodeStats(raw)
}

func (s *statsStore) Put(ctx context.Context, stats storage.Stats) error {
	stats.Normalize()
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+storage.KeyStats, data, 0).Err()
}

func (s *statsStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx, keyPrefix+storage.KeyStats).Err()
}
