package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/storage"
	"github.com/redis/go-redis/v9"
)

type domainStore struct {
	client *redis.Client
}

func (s *domainStore) LastUnlock(ctx context.Context, domain string) (time.Time, error) {
	raw, err := getRaw(ctx, s.client, storage.PrefixLastUnlock+domain)
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
	key := keyPrefix + storage.PrefixLastUnlock + domain
	return s.client.Set(ctx, key, strconv.FormatInt(ts.UnixMilli(), 10), 0).Err()
}

func (s *domainStore) TimeSpent(ctx context.Context, domain string) (int64, error) {
	raw, err := getRaw(ctx, s.client, storage.PrefixTimeSpent+domain)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

func (s *domainStore) AddTimeSpent(ctx context.Context, domain string, seconds int64) (int64, error) {
	key := keyPrefix + storage.PrefixTimeSpent + domain
	return s.client.IncrBy(ctx, key, seconds).Result()
}

func (s *domainStore) Clear(ctx context.Context, domains []string) error {
	if len(domains) == 0 {
		return nil
	}
	keys := make([]string, 0, len(domains)*2)
	for _, domain := range domains {
		keys = append(keys,
			keyPrefix+storage.PrefixTimeSpent+domain,
			keyPrefix+storage.PrefixLastUnlock+domain,
		)
	}
	return s.client.Del(ctx, keys...).Err()
}
