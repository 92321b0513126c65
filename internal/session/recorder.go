package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/doomscrollingfix/dsfix/internal/clock"
	"github.com/doomscrollingfix/dsfix/internal/metrics"
	"github.com/doomscrollingfix/dsfix/internal/storage"
	"github.com/rs/zerolog"
)

// Recorder appends completed intervention sessions to the stats record.
// It computes the whole update from one in-memory snapshot and persists it
// with a single write, so readers never observe a partially applied session.
// Overlapping calls from multiple views race with last-writer-wins, the same
// accepted approximation as the per-domain counters.
type Recorder struct {
	store  storage.Store
	clock  clock.Clock
	logger zerolog.Logger
}

// NewRecorder creates a session recorder over the given store and clock.
func NewRecorder(store storage.Store, clk clock.Clock, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		clock:  clk,
		logger: logger.With().Str("component", "session-recorder").Logger(),
	}
}

// RecordSession records one resolved pass through the intervention flow.
// proceeded=false is a turnaround. The intention is logged only when
// non-empty after trimming whitespace.
func (r *Recorder) RecordSession(ctx context.Context, app string, durationSeconds int, proceeded bool, intention string) error {
	stats, err := r.store.Stats().Get(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}

	now := r.clock.Now()
	today := clock.DateOf(now)

	stats.InterventionCount++
	if !proceeded {
		stats.TurnaroundCount++
	}
	stats.TotalBreathingSeconds += durationSeconds

	switch stats.LastSessionDate {
	case today:
		// Already logged today, streak unchanged.
	case clock.Yesterday(now):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}
	stats.LastSessionDate = today

	stats.Sessions = append(stats.Sessions, storage.SessionEntry{
		App:       app,
		Timestamp: now.UnixMilli(),
		Duration:  durationSeconds,
		Proceeded: proceeded,
	})
	if len(stats.Sessions) > storage.MaxSessions {
		stats.Sessions = stats.Sessions[len(stats.Sessions)-storage.MaxSessions:]
	}

	if trimmed := strings.TrimSpace(intention); trimmed != "" {
		stats.IntentionLog = append(stats.IntentionLog, storage.IntentionEntry{
			App:       app,
			Intention: intention,
			Timestamp: now.UnixMilli(),
			Proceeded: proceeded,
		})
		if len(stats.IntentionLog) > storage.MaxIntentions {
			stats.IntentionLog = stats.IntentionLog[len(stats.IntentionLog)-storage.MaxIntentions:]
		}
	}

	if err := r.store.Stats().Put(ctx, stats); err != nil {
		return fmt.Errorf("persist stats: %w", err)
	}

	outcome := "proceeded"
	if !proceeded {
		outcome = "turnaround"
	}
	metrics.InterventionsTotal.WithLabelValues(app, outcome).Inc()
	metrics.BreathingSecondsTotal.Add(float64(durationSeconds))

	r.logger.Info().
		Str("app", app).
		Bool("proceeded", proceeded).
		Int("duration_seconds", durationSeconds).
		Int("streak", stats.CurrentStreak).
		Msg("Recorded session")

	return nil
}
