package bolt

import (
	"context"
	"errors"

	"github.com/doomscrollingfix/dsfix/internal/storage"
	"go.etcd.io/bbolt"
)

type statsStore struct {
	db *bbolt.DB
}

func (s *statsStore) Get(ctx context.Context) (storage.Stats, error) {
	raw, err := getBucketValue(ctx, s.db, bucketRecords, storage.KeyStats)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.Stats{}, err
	}
	return storage.DecodeStats(raw)
}

func (s *statsStore) Put(ctx context.Context, stats storage.Stats) error {
	stats.Normalize()
	data, err := marshal(stats)
	if err != nil {
		return err
	}
	return putBucketValue(ctx, s.db, bucketRecords, storage.KeyStats, data)
}

func (s *statsStore) Reset(ctx context.Context) error {
	return deleteBucketValue(ctx, s.db, bucketRecords, storage.KeyStats)
}
