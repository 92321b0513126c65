package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Key prefixes for the per-domain ephemeral state. The full key space is what
// export/import serializes, so these match the extension's key names.
const (
	KeySettings        = "settings"
	KeyStats           = "stats"
	PrefixTimeSpent    = "timeSpent_"
	PrefixLastUnlock   = "lastUnlock_"
)

// Store is the root storage interface shared by all backends.
type Store interface {
	Close() error
	Settings() SettingsStore
	Stats() StatsStore
	Domains() DomainStateStore

	// Dump serializes the entire key space for export.
	Dump(ctx context.Context) (map[string]json.RawMessage, error)
	// Restore merges a previously exported snapshot wholesale. The snapshot
	// is validated in full before any key is written.
	Restore(ctx context.Context, snapshot map[string]json.RawMessage) error
}

// SettingsStore manages the settings singleton. Get merges stored fields onto
// defaults and normalizes, so callers always see a valid record.
type SettingsStore interface {
	Get(ctx context.Context) (Settings, error)
	Put(ctx context.Context, settings Settings) error
	Reset(ctx context.Context) error
}

// StatsStore manages the stats singleton.
type StatsStore interface {
	Get(ctx context.Context) (Stats, error)
	Put(ctx context.Context, stats Stats) error
	Reset(ctx context.Context) error
}

// DomainStateStore manages the per-domain ephemeral counters. There is no
// cross-domain invariant; each key is an independent last-writer-wins cell.
type DomainStateStore interface {
	// LastUnlock returns the last successful unlock time for the domain,
	// or ErrNotFound when the domain was never unlocked.
	LastUnlock(ctx context.Context, domain string) (time.Time, error)
	SetLastUnlock(ctx context.Context, domain string, ts time.Time) error

	// TimeSpent returns accumulated unlocked seconds for the domain
	// (zero when absent).
	TimeSpent(ctx context.Context, domain string) (int64, error)
	// AddTimeSpent increments the accumulated seconds and returns the new
	// total. Concurrent increments from multiple views are approximate by
	// design.
	AddTimeSpent(ctx context.Context, domain string, seconds int64) (int64, error)

	// Clear removes the ephemeral counters for the given domains.
	Clear(ctx context.Context, domains []string) error
}

// DecodeSettings overlays stored JSON onto the default record, then
// normalizes. A nil raw value yields pure defaults, so a fresh install reads
// a valid record without a prior write.
func DecodeSettings(raw []byte) (Settings, error) {
	settings := DefaultSettings()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return Settings{}, fmt.Errorf("decode settings: %w", err)
		}
	}
	settings.Normalize()
	return settings, nil
}

// DecodeStats overlays stored JSON onto the empty record, then normalizes.
func DecodeStats(raw []byte) (Stats, error) {
	stats := DefaultStats()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &stats); err != nil {
			return Stats{}, fmt.Errorf("decode stats: %w", err)
		}
	}
	stats.Normalize()
	return stats, nil
}

// ValidateSnapshot checks every key of an import payload before any write.
// Unknown keys are rejected so a wholesale restore cannot smuggle arbitrary
// records into the store.
func ValidateSnapshot(snapshot map[string]json.RawMessage) error {
	for key, raw := range snapshot {
		switch {
		case key == KeySettings:
			if _, err := DecodeSettings(raw); err != nil {
				return err
			}
		case key == KeyStats:
			if _, err := DecodeStats(raw); err != nil {
				return err
			}
		case strings.HasPrefix(key, PrefixTimeSpent), strings.HasPrefix(key, PrefixLastUnlock):
			if _, err := ParseEpochValue(raw); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
		default:
			return fmt.Errorf("unknown key in snapshot: %q", key)
		}
	}
	return nil
}

// ParseEpochValue parses the integer JSON value used by the per-domain keys.
func ParseEpochValue(raw json.RawMessage) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer value: %w", err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative value %d", value)
	}
	return value, nil
}
