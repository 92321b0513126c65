package storage

import (
	"strings"
	"time"
)

// Settings is the singleton per-installation configuration record.
type Settings struct {
	MonitoredDomains         []string `json:"monitoredDomains"`
	MonitoredApps            []string `json:"monitoredApps"`
	RepromptIntervalMinutes  int      `json:"repromptIntervalMinutes"`
	BreathingDurationSeconds int      `json:"breathingDurationSeconds"`
	HapticsEnabled           bool     `json:"hapticsEnabled"`
	Password                 string   `json:"password,omitempty"`
	OnboardingComplete       bool     `json:"onboardingComplete"`
}

// SessionEntry is one completed pass through the intervention flow.
type SessionEntry struct {
	App       string `json:"app"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Duration  int    `json:"duration"`  // breathing duration in seconds
	Proceeded bool   `json:"proceeded"`
}

// IntentionEntry is one free-text intention given before a decision.
type IntentionEntry struct {
	App       string `json:"app"`
	Intention string `json:"intention"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Proceeded bool   `json:"proceeded"`
}

// Stats is the singleton record accumulating over the installation's lifetime.
type Stats struct {
	InterventionCount     int              `json:"interventionCount"`
	TurnaroundCount       int              `json:"turnaroundCount"`
	TotalBreathingSeconds int              `json:"totalBreathingSeconds"`
	CurrentStreak         int              `json:"currentStreak"`
	LastSessionDate       string           `json:"lastSessionDate,omitempty"` // YYYY-MM-DD
	Sessions              []SessionEntry   `json:"sessions"`
	IntentionLog          []IntentionEntry `json:"intentionLog"`
}

const (
	// MaxSessions caps the session log; oldest entries are evicted first.
	MaxSessions = 200
	// MaxIntentions caps the intention log; oldest entries are evicted first.
	MaxIntentions = 50

	// MinRepromptMinutes and MaxRepromptMinutes bound the configurable
	// reprompt interval. Out-of-range stored values are clamped, not applied.
	MinRepromptMinutes = 1
	MaxRepromptMinutes = 60

	// DefaultRepromptMinutes matches the extension default of 2 minutes.
	DefaultRepromptMinutes = 2

	// DefaultBreathingSeconds is the fixed extension duration and the
	// shortest of the app's enumerated choices.
	DefaultBreathingSeconds = 6
)

// BreathingDurations enumerates the selectable breathing lengths in seconds.
var BreathingDurations = []int{6, 15, 30}

// DefaultDomains are the monitored hostnames on a fresh install.
var DefaultDomains = []string{
	"twitter.com",
	"x.com",
	"facebook.com",
	"instagram.com",
	"reddit.com",
	"tiktok.com",
	"youtube.com",
}

// DefaultApps are the monitored app identifiers on a fresh install.
var DefaultApps = []string{
	"instagram",
	"tiktok",
	"twitter",
	"reddit",
	"youtube",
	"facebook",
}

// DefaultSettings returns the settings record for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		MonitoredDomains:         append([]string(nil), DefaultDomains...),
		MonitoredApps:            append([]string(nil), DefaultApps...),
		RepromptIntervalMinutes:  DefaultRepromptMinutes,
		BreathingDurationSeconds: DefaultBreathingSeconds,
		HapticsEnabled:           true,
		OnboardingComplete:       false,
	}
}

// DefaultStats returns the empty stats record for a fresh install.
func DefaultStats() Stats {
	return Stats{
		Sessions:     []SessionEntry{},
		IntentionLog: []IntentionEntry{},
	}
}

// RepromptInterval returns the configured interval as a duration, clamped.
func (s Settings) RepromptInterval() time.Duration {
	return time.Duration(ClampRepromptMinutes(s.RepromptIntervalMinutes)) * time.Minute
}

// MonitorsDomain reports whether hostname falls under a monitored domain.
// Matching is by substring of the hostname, as the extension does.
func (s Settings) MonitorsDomain(hostname string) bool {
	for _, d := range s.MonitoredDomains {
		if d != "" && containsFold(hostname, d) {
			return true
		}
	}
	return false
}

// ClampRepromptMinutes forces minutes into the valid [1, 60] range.
func ClampRepromptMinutes(minutes int) int {
	if minutes < MinRepromptMinutes {
		return MinRepromptMinutes
	}
	if minutes > MaxRepromptMinutes {
		return MaxRepromptMinutes
	}
	return minutes
}

// Normalize validates a loaded settings record field by field: interval
// clamped, breathing duration forced onto the enumerated set, identifier
// lists deduplicated with order preserved and blanks dropped.
func (s *Settings) Normalize() {
	s.RepromptIntervalMinutes = ClampRepromptMinutes(s.RepromptIntervalMinutes)

	valid := false
	for _, d := range BreathingDurations {
		if s.BreathingDurationSeconds == d {
			valid = true
			break
		}
	}
	if !valid {
		s.BreathingDurationSeconds = DefaultBreathingSeconds
	}

	s.MonitoredDomains = dedupe(s.MonitoredDomains)
	s.MonitoredApps = dedupe(s.MonitoredApps)
}

// Normalize repairs a loaded stats record: negative counters are zeroed, the
// turnaround count is capped by the intervention count, and both logs are
// trimmed to their caps keeping the most recent entries.
func (s *Stats) Normalize() {
	if s.InterventionCount < 0 {
		s.InterventionCount = 0
	}
	if s.TurnaroundCount < 0 {
		s.TurnaroundCount = 0
	}
	if s.TurnaroundCount > s.InterventionCount {
		s.TurnaroundCount = s.InterventionCount
	}
	if s.TotalBreathingSeconds < 0 {
		s.TotalBreathingSeconds = 0
	}
	if s.CurrentStreak < 0 {
		s.CurrentStreak = 0
	}
	if len(s.Sessions) > MaxSessions {
		s.Sessions = append([]SessionEntry(nil), s.Sessions[len(s.Sessions)-MaxSessions:]...)
	}
	if len(s.IntentionLog) > MaxIntentions {
		s.IntentionLog = append([]IntentionEntry(nil), s.IntentionLog[len(s.IntentionLog)-MaxIntentions:]...)
	}
	if s.Sessions == nil {
		s.Sessions = []SessionEntry{}
	}
	if s.IntentionLog == nil {
		s.IntentionLog = []IntentionEntry{}
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
