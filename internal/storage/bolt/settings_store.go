package bolt

import (
	"context"
	"errors"

	"github.com/doomscrollingfix/dsfix/internal/storage"
	"go.etcd.io/bbolt"
)

type settingsStore struct {
	db *bbolt.DB
}

func (s *settingsStore) Get(ctx context.Context) (storage.Settings, error) {
	raw, err := getBucketValue(ctx, s.db, bucketRecords, storage.KeySettings)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.Settings{}, err
	}
	return storage.DecodeSettings(raw)
}

func (s *settingsStore) Put(ctx context.Context, settings storage.Settings) error {
	settings.Normalize()
	data, err := marshal(settings)
	if err != nil {
		return err
	}
	return putBucketValue(ctx, s.db, bucketRecords, storage.KeySettings, data)
}

func (s *settingsStore) Reset(ctx context.Context) error {
	return deleteBucketValue(ctx, s.db, bucketRecords, storage.KeySettings)
}
