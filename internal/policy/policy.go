package policy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/clock"
	"github.com/doomscrollingfix/dsfix/internal/metrics"
	"github.com/doomscrollingfix/dsfix/internal/storage"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// unlockCacheSize bounds the per-domain unlock-time cache. One entry per
// monitored domain is plenty; the bound only guards pathological imports.
const unlockCacheSize = 128

// Policy decides, per (domain, now), whether the intervention overlay must
// be shown. Decisions are a function of the stored unlock timestamp and the
// configured reprompt interval; the LRU cache only avoids a storage read per
// scroll event and can serve a stale timestamp to one view, which is the
// same accepted approximation as the multi-tab write race.
type Policy struct {
	store  storage.Store
	clock  clock.Clock
	logger zerolog.Logger

	unlockCache *lru.Cache[string, time.Time]

	mu           sync.Mutex
	lastInterval time.Duration // last successfully read interval, for degraded reads
}

// New creates a reprompt policy over the given store and clock.
func New(store storage.Store, clk clock.Clock, logger zerolog.Logger) *Policy {
	cache, err := lru.New[string, time.Time](unlockCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &Policy{
		store:        store,
		clock:        clk,
		logger:       logger.With().Str("component", "reprompt-policy").Logger(),
		unlockCache:  cache,
		lastInterval: time.Duration(storage.DefaultRepromptMinutes) * time.Minute,
	}
}

// Interval returns the configured reprompt interval, clamped to [1, 60]
// minutes. A storage read failure degrades to the last successfully read
// value rather than failing the caller.
func (p *Policy) Interval(ctx context.Context) time.Duration {
	settings, err := p.store.Settings().Get(ctx)
	if err != nil {
		p.mu.Lock()
		fallback := p.lastInterval
		p.mu.Unlock()
		p.logger.Error().Err(err).Dur("fallback", fallback).Msg("Failed to read settings, using last-known interval")
		return fallback
	}

	interval := settings.RepromptInterval()
	p.mu.Lock()
	p.lastInterval = interval
	p.mu.Unlock()
	return interval
}

// ShouldShowOverlay reports whether the overlay is due for the domain:
// true when the domain has never been unlocked, or when the configured
// interval has elapsed since the last unlock. No side effects.
func (p *Policy) ShouldShowOverlay(ctx context.Context, domain string) (bool, error) {
	interval := p.Interval(ctx)

	lastUnlock, ok := p.unlockCache.Get(domain)
	if !ok {
		var err error
		lastUnlock, err = p.store.Domains().LastUnlock(ctx, domain)
		if errors.Is(err, storage.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		p.unlockCache.Add(domain, lastUnlock)
	}

	return p.clock.Now().Sub(lastUnlock) >= interval, nil
}

// RecordUnlock marks the domain as just unlocked, resetting its reprompt
// window. Last-writer-wins across simultaneous views of the same domain.
func (p *Policy) RecordUnlock(ctx context.Context, domain string) error {
	now := p.clock.Now()
	if err := p.store.Domains().SetLastUnlock(ctx, domain, now); err != nil {
		return err
	}
	p.unlockCache.Add(domain, now)
	metrics.UnlocksTotal.WithLabelValues(domain).Inc()

	p.logger.Debug().
		Str("domain", domain).
		Time("unlocked_at", now).
		Msg("Recorded unlock")
	return nil
}

// Forget drops any cached unlock time for the domain. Used when per-domain
// state is cleared so a following decision re-reads storage.
func (p *Policy) Forget(domain string) {
	p.unlockCache.Remove(domain)
}
