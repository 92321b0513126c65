package session

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/clock"
	"github.com/doomscrollingfix/dsfix/internal/storage"
	"github.com/doomscrollingfix/dsfix/internal/storage/bolt"
	"github.com/rs/zerolog"
	"pgregory.net/rapid"
)

type sessionInput struct {
	app       string
	duration  int
	proceeded bool
	intention string
	advance   time.Duration
}

func genSessionInput(t *rapid.T) sessionInput {
	return sessionInput{
		app:       rapid.SampledFrom(storage.DefaultApps).Draw(t, "app"),
		duration:  rapid.SampledFrom(storage.BreathingDurations).Draw(t, "duration"),
		proceeded: rapid.Bool().Draw(t, "proceeded"),
		intention: rapid.StringOf(rapid.RuneFrom([]rune(" abcdm"))).Draw(t, "intention"),
		advance:   time.Duration(rapid.Int64Range(0, 3*24*3600).Draw(t, "advanceSeconds")) * time.Second,
	}
}

// Invariants from the stats record: turnarounds never exceed interventions,
// both logs stay within their caps, and the intention log only grows for
// non-blank intentions.
func TestRecorderInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		inputs := rapid.SliceOfN(rapid.Custom(genSessionInput), 1, 60).Draw(rt, "inputs")

		store, err := bolt.Open(filepath.Join(t.TempDir(), "dsfix.db"))
		if err != nil {
			rt.Fatalf("open store: %v", err)
		}
		defer func() { _ = store.Close() }()

		clk := &clock.TestClock{CurrentTime: time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)}
		recorder := NewRecorder(store, clk, zerolog.Nop())
		ctx := context.Background()

		wantInterventions := 0
		wantTurnarounds := 0
		wantIntentions := 0

		for _, in := range inputs {
			clk.Advance(in.advance)
			if err := recorder.RecordSession(ctx, in.app, in.duration, in.proceeded, in.intention); err != nil {
				rt.Fatalf("record session: %v", err)
			}
			wantInterventions++
			if !in.proceeded {
				wantTurnarounds++
			}
			if strings.TrimSpace(in.intention) != "" {
				wantIntentions++
			}
		}

		stats, err := store.Stats().Get(ctx)
		if err != nil {
			rt.Fatalf("get stats: %v", err)
		}

		if stats.TurnaroundCount > stats.InterventionCount {
			rt.Fatalf("turnarounds %d exceed interventions %d", stats.TurnaroundCount, stats.InterventionCount)
		}
		if stats.InterventionCount != wantInterventions {
			rt.Fatalf("expected %d interventions, got %d", wantInterventions, stats.InterventionCount)
		}
		if stats.TurnaroundCount != wantTurnarounds {
			rt.Fatalf("expected %d turnarounds, got %d", wantTurnarounds, stats.TurnaroundCount)
		}
		if len(stats.Sessions) > storage.MaxSessions {
			rt.Fatalf("sessions over cap: %d", len(stats.Sessions))
		}
		if len(stats.IntentionLog) > storage.MaxIntentions {
			rt.Fatalf("intentions over cap: %d", len(stats.IntentionLog))
		}
		if wantIntentions <= storage.MaxIntentions && len(stats.IntentionLog) != wantIntentions {
			rt.Fatalf("expected %d intentions, got %d", wantIntentions, len(stats.IntentionLog))
		}
		if stats.CurrentStreak < 1 {
			rt.Fatalf("streak must be at least 1 after any session, got %d", stats.CurrentStreak)
		}

		// Timestamps are non-decreasing, so FIFO eviction kept the newest.
		for i := 1; i < len(stats.Sessions); i++ {
			if stats.Sessions[i].Timestamp < stats.Sessions[i-1].Timestamp {
				rt.Fatalf("session log out of order at %d", i)
			}
		}
	})
}
