package intervention

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled task. Safe to call more than once.
type CancelFunc func()

// Scheduler abstracts timer wiring so the controller's state machine can be
// driven deterministically in tests. Implementations must allow callbacks to
// call back into the scheduler.
type Scheduler interface {
	// Once runs fn after d. The returned CancelFunc stops it if it has not
	// fired yet.
	Once(d time.Duration, fn func()) CancelFunc
	// Repeating runs fn every d until cancelled.
	Repeating(d time.Duration, fn func()) CancelFunc
}

// NewScheduler returns a Scheduler backed by real timers.
func NewScheduler() Scheduler {
	return realScheduler{}
}

type realScheduler struct{}

func (realScheduler) Once(d time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}

func (realScheduler) Repeating(d time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
