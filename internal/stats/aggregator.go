// Package stats derives presentation-ready rollups from a stats snapshot.
// Everything here is a pure read: inputs are never mutated and calls are
// safe to repeat.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/clock"
	"github.com/doomscrollingfix/dsfix/internal/storage"
)

// MinutesSavedPerTurnaround is the fixed heuristic for estimated time saved.
const MinutesSavedPerTurnaround = 5

// RecentIntentionCount is how many intentions the recent view shows.
const RecentIntentionCount = 10

// Summary is the rollup the stats screens render.
type Summary struct {
	InterventionCount         int
	TurnaroundCount           int
	TotalBreathingSeconds     int
	CurrentStreak             int
	TodaySessions             int
	WeekSessions              int
	TurnaroundRatePercent     int
	EstimatedTimeSavedMinutes int
}

// AppCount is a per-app session tally.
type AppCount struct {
	App   string
	Count int
}

// Summarize computes the full rollup from one stats snapshot.
func Summarize(s storage.Stats, now time.Time) Summary {
	return Summary{
		InterventionCount:         s.InterventionCount,
		TurnaroundCount:           s.TurnaroundCount,
		TotalBreathingSeconds:     s.TotalBreathingSeconds,
		CurrentStreak:             s.CurrentStreak,
		TodaySessions:             len(TodaySessions(s.Sessions, now)),
		WeekSessions:              len(WeekSessions(s.Sessions, now)),
		TurnaroundRatePercent:     TurnaroundRate(s),
		EstimatedTimeSavedMinutes: s.TurnaroundCount * MinutesSavedPerTurnaround,
	}
}

// TodaySessions filters sessions whose local calendar date is today's.
func TodaySessions(sessions []storage.SessionEntry, now time.Time) []storage.SessionEntry {
	today := clock.DateOf(now)
	var out []storage.SessionEntry
	for _, s := range sessions {
		if clock.DateOf(time.UnixMilli(s.Timestamp)) == today {
			out = append(out, s)
		}
	}
	return out
}

// WeekSessions filters sessions from the trailing seven days.
func WeekSessions(sessions []storage.SessionEntry, now time.Time) []storage.SessionEntry {
	cutoff := now.UnixMilli() - 7*24*3600*1000
	var out []storage.SessionEntry
	for _, s := range sessions {
		if s.Timestamp >= cutoff {
			out = append(out, s)
		}
	}
	return out
}

// TurnaroundRate returns the went-back percentage, rounded; zero when no
// interventions have been recorded.
func TurnaroundRate(s storage.Stats) int {
	if s.InterventionCount == 0 {
		return 0
	}
	return int(math.Round(float64(s.TurnaroundCount) / float64(s.InterventionCount) * 100))
}

// AppCounts groups sessions by app, sorted by count descending. Ties keep
// first-seen order.
func AppCounts(sessions []storage.SessionEntry) []AppCount {
	index := make(map[string]int)
	var counts []AppCount
	for _, s := range sessions {
		if i, ok := index[s.App]; ok {
			counts[i].Count++
			continue
		}
		index[s.App] = len(counts)
		counts = append(counts, AppCount{App: s.App, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// RecentIntentions returns the newest entries, most recent first.
func RecentIntentions(log []storage.IntentionEntry) []storage.IntentionEntry {
	n := len(log)
	if n > RecentIntentionCount {
		n = RecentIntentionCount
	}
	out := make([]storage.IntentionEntry, 0, n)
	for i := len(log) - 1; i >= len(log)-n; i-- {
		out = append(out, log[i])
	}
	return out
}
