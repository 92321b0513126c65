package clock

import (
	"fmt"
	"time"
)

// DateLayout is the day-granularity layout used for streaks and daily rollups.
const DateLayout = "2006-01-02"

// Clock provides time information for policy and streak evaluation.
// This interface allows time to be mocked in tests.
type Clock interface {
	Now() time.Time
}

// RealClock provides actual system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock provides fixed time for testing.
type TestClock struct {
	CurrentTime time.Time
}

// Now returns the test time.
func (t *TestClock) Now() time.Time {
	return t.CurrentTime
}

// Advance moves the test clock forward.
func (t *TestClock) Advance(d time.Duration) {
	t.CurrentTime = t.CurrentTime.Add(d)
}

// DateOf returns the local calendar date of ts as YYYY-MM-DD.
func DateOf(ts time.Time) string {
	return ts.Format(DateLayout)
}

// Yesterday returns the calendar date one day before ts as YYYY-MM-DD.
func Yesterday(ts time.Time) string {
	return ts.AddDate(0, 0, -1).Format(DateLayout)
}

// FormatElapsed renders accumulated seconds as "Xm Ys" for timer displays.
func FormatElapsed(seconds int64) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
