package intervention

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/clock"
	"github.com/doomscrollingfix/dsfix/internal/policy"
	"github.com/doomscrollingfix/dsfix/internal/session"
	"github.com/doomscrollingfix/dsfix/internal/storage"
	"github.com/doomscrollingfix/dsfix/internal/storage/bolt"
	"github.com/rs/zerolog"
)

type fakeTask struct {
	d         time.Duration
	fn        func()
	repeat    bool
	cancelled bool
}

// fakeScheduler records scheduled tasks so tests can fire them by hand.
type fakeScheduler struct {
	tasks []*fakeTask
}

func (s *fakeScheduler) Once(d time.Duration, fn func()) CancelFunc {
	task := &fakeTask{d: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() { task.cancelled = true }
}

func (s *fakeScheduler) Repeating(d time.Duration, fn func()) CancelFunc {
	task := &fakeTask{d: d, fn: fn, repeat: true}
	s.tasks = append(s.tasks, task)
	return func() { task.cancelled = true }
}

// fireOnce fires the newest live one-shot task with the given delay.
func (s *fakeScheduler) fireOnce(t *testing.T, d time.Duration) {
	t.Helper()
	for i := len(s.tasks) - 1; i >= 0; i-- {
		task := s.tasks[i]
		if !task.repeat && !task.cancelled && task.d == d {
			task.cancelled = true
			task.fn()
			return
		}
	}
	t.Fatalf("no live one-shot task with delay %v", d)
}

// tick fires the newest live repeating task with the given period n times.
func (s *fakeScheduler) tick(t *testing.T, d time.Duration, n int) {
	t.Helper()
	for i := len(s.tasks) - 1; i >= 0; i-- {
		task := s.tasks[i]
		if task.repeat && !task.cancelled && task.d == d {
			for j := 0; j < n; j++ {
				task.fn()
			}
			return
		}
	}
	t.Fatalf("no live repeating task with period %v", d)
}

func (s *fakeScheduler) live(d time.Duration, repeat bool) bool {
	for _, task := range s.tasks {
		if task.repeat == repeat && !task.cancelled && task.d == d {
			return true
		}
	}
	return false
}

type fakeRenderer struct {
	breathing      []time.Duration
	intentions     int
	passwordErrors int
	unlocked       int
	dismissed      int
	ticks          []int64
}

func (r *fakeRenderer) ShowBreathing(d time.Duration) { r.breathing = append(r.breathing, d) }
func (r *fakeRenderer) ShowIntention()                { r.intentions++ }
func (r *fakeRenderer) ShowPasswordError()            { r.passwordErrors++ }
func (r *fakeRenderer) Unlocked()                     { r.unlocked++ }
func (r *fakeRenderer) Dismissed()                    { r.dismissed++ }
func (r *fakeRenderer) TimerTick(total int64)         { r.ticks = append(r.ticks, total) }

type harness struct {
	ctrl      *Controller
	scheduler *fakeScheduler
	renderer  *fakeRenderer
	store     storage.Store
	clk       *clock.TestClock
	pol       *policy.Policy
}

func newHarness(t *testing.T, domain string) *harness {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "dsfix.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clk := &clock.TestClock{CurrentTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)}
	pol := policy.New(store, clk, zerolog.Nop())
	rec := session.NewRecorder(store, clk, zerolog.Nop())
	sched := &fakeScheduler{}
	rend := &fakeRenderer{}
	ctrl := NewController(domain, store, pol, rec, rend, sched, zerolog.Nop())
	t.Cleanup(ctrl.Teardown)

	return &harness{ctrl: ctrl, scheduler: sched, renderer: rend, store: store, clk: clk, pol: pol}
}

// reach the unlocked state the honest way: breathe, then continue.
func (h *harness) unlock(t *testing.T) {
	t.Helper()
	h.ctrl.Start()
	h.scheduler.fireOnce(t, 6*time.Second)
	h.ctrl.Continue("catch up on messages", "")
	if h.ctrl.Phase() != PhaseUnlocked {
		t.Fatalf("expected unlocked, got phase %d", h.ctrl.Phase())
	}
}

func TestStartShowsBreathingWhenNeverUnlocked(t *testing.T) {
	h := newHarness(t, "reddit.com")

	h.ctrl.Start()

	if h.ctrl.Phase() != PhaseBreathing {
		t.Fatalf("expected breathing phase, got %d", h.ctrl.Phase())
	}
	if len(h.renderer.breathing) != 1 || h.renderer.breathing[0] != 6*time.Second {
		t.Fatalf("expected one 6s breathing overlay, got %v", h.renderer.breathing)
	}
}

func TestStartUnlockedWithinInterval(t *testing.T) {
	h := newHarness(t, "reddit.com")
	if err := h.pol.RecordUnlock(context.Background(), "reddit.com"); err != nil {
		t.Fatalf("record unlock: %v", err)
	}
	h.clk.Advance(30 * time.Second)

	h.ctrl.Start()

	if h.ctrl.Phase() != PhaseUnlocked {
		t.Fatalf("expected unlocked within interval, got phase %d", h.ctrl.Phase())
	}
	if h.renderer.unlocked != 1 || len(h.renderer.breathing) != 0 {
		t.Fatalf("expected immediate unlock without overlay, got %+v", h.renderer)
	}
	if !h.scheduler.live(timerTickInterval, true) {
		t.Fatal("expected elapsed-time ticker to be running")
	}
}

func TestBreathingCompleteAdvancesToIntention(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.ctrl.Start()

	h.scheduler.fireOnce(t, 6*time.Second)

	if h.ctrl.Phase() != PhaseIntention {
		t.Fatalf("expected intention phase, got %d", h.ctrl.Phase())
	}
	if h.renderer.intentions != 1 {
		t.Fatalf("expected one intention prompt, got %d", h.renderer.intentions)
	}
}

func TestBreathingUsesConfiguredDuration(t *testing.T) {
	h := newHarness(t, "reddit.com")
	ctx := context.Background()
	settings, err := h.store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	settings.BreathingDurationSeconds = 15
	if err := h.store.Settings().Put(ctx, settings); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	h.ctrl.Start()

	if len(h.renderer.breathing) != 1 || h.renderer.breathing[0] != 15*time.Second {
		t.Fatalf("expected 15s breathing overlay, got %v", h.renderer.breathing)
	}
}

func TestGoBackRecordsTurnaroundWithoutUnlock(t *testing.T) {
	h := newHarness(t, "reddit.com")
	ctx := context.Background()
	h.ctrl.Start()
	h.scheduler.fireOnce(t, 6*time.Second)

	h.ctrl.GoBack("just bored")

	if h.renderer.dismissed != 1 {
		t.Fatalf("expected dismissal, got %d", h.renderer.dismissed)
	}
	stats, err := h.store.Stats().Get(ctx)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.InterventionCount != 1 || stats.TurnaroundCount != 1 {
		t.Fatalf("expected 1 intervention / 1 turnaround, got %d/%d", stats.InterventionCount, stats.TurnaroundCount)
	}
	// Going back never resets the reprompt window.
	if _, err := h.store.Domains().LastUnlock(ctx, "reddit.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no unlock timestamp, got err %v", err)
	}
}

func TestContinueUnlocksAndRecords(t *testing.T) {
	h := newHarness(t, "reddit.com")
	ctx := context.Background()
	h.ctrl.Start()
	h.scheduler.fireOnce(t, 6*time.Second)

	h.ctrl.Continue("reply to one thread", "")

	if h.ctrl.Phase() != PhaseUnlocked || h.renderer.unlocked != 1 {
		t.Fatalf("expected unlocked state, got phase %d, unlocked %d", h.ctrl.Phase(), h.renderer.unlocked)
	}
	stats, err := h.store.Stats().Get(ctx)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.InterventionCount != 1 || stats.TurnaroundCount != 0 {
		t.Fatalf("expected 1 proceeded intervention, got %d/%d", stats.InterventionCount, stats.TurnaroundCount)
	}
	if len(stats.IntentionLog) != 1 || stats.IntentionLog[0].Intention != "reply to one thread" {
		t.Fatalf("expected intention logged, got %+v", stats.IntentionLog)
	}
	if _, err := h.store.Domains().LastUnlock(ctx, "reddit.com"); err != nil {
		t.Fatalf("expected unlock timestamp, got err %v", err)
	}
}

func TestContinuePasswordGate(t *testing.T) {
	h := newHarness(t, "reddit.com")
	ctx := context.Background()
	settings, err := h.store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	settings.Password = "hunter2"
	if err := h.store.Settings().Put(ctx, settings); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	h.ctrl.Start()
	h.scheduler.fireOnce(t, 6*time.Second)

	h.ctrl.Continue("check notifications", "wrong")
	if h.renderer.passwordErrors != 1 {
		t.Fatalf("expected inline password error, got %d", h.renderer.passwordErrors)
	}
	if h.ctrl.Phase() != PhaseIntention {
		t.Fatalf("wrong password must keep the intention phase, got %d", h.ctrl.Phase())
	}
	stats, err := h.store.Stats().Get(ctx)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.InterventionCount != 0 {
		t.Fatalf("failed attempt must not record a session, got %d", stats.InterventionCount)
	}

	// Retries are unlimited; the right password goes through.
	h.ctrl.Continue("check notifications", "hunter2")
	if h.ctrl.Phase() != PhaseUnlocked {
		t.Fatalf("expected unlocked after correct password, got %d", h.ctrl.Phase())
	}
}

func TestScrollTriggersRepromptAfterInterval(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.unlock(t)

	h.clk.Advance(3 * time.Minute)
	h.ctrl.ScrollBy(60)
	h.ctrl.ScrollBy(-60)
	h.scheduler.fireOnce(t, ScrollDebounce)

	if h.ctrl.Phase() != PhaseBreathing {
		t.Fatalf("expected reprompt into breathing, got phase %d", h.ctrl.Phase())
	}
	if len(h.renderer.breathing) != 2 {
		t.Fatalf("expected second breathing overlay, got %d", len(h.renderer.breathing))
	}
}

func TestScrollWithinIntervalDoesNotReprompt(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.unlock(t)

	h.clk.Advance(30 * time.Second)
	h.ctrl.ScrollBy(200)
	h.scheduler.fireOnce(t, ScrollDebounce)

	if h.ctrl.Phase() != PhaseUnlocked {
		t.Fatalf("expected to stay unlocked, got phase %d", h.ctrl.Phase())
	}
}

func TestScrollBelowThresholdSchedulesNothing(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.unlock(t)

	h.ctrl.ScrollBy(40)
	h.ctrl.ScrollBy(40)

	if h.scheduler.live(ScrollDebounce, false) {
		t.Fatal("scroll below the threshold must not arm the debounce")
	}
}

func TestPeriodicCheckTriggersReprompt(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.unlock(t)

	h.clk.Advance(3 * time.Minute)
	h.scheduler.tick(t, RepromptCheckInterval, 1)

	if h.ctrl.Phase() != PhaseBreathing {
		t.Fatalf("expected periodic reprompt, got phase %d", h.ctrl.Phase())
	}
}

func TestPeriodicCheckIsNoopWhileNotUnlocked(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.ctrl.Start() // breathing

	h.scheduler.tick(t, RepromptCheckInterval, 2)

	if h.ctrl.Phase() != PhaseBreathing || len(h.renderer.breathing) != 1 {
		t.Fatalf("periodic check must not restart breathing, got phase %d, overlays %d",
			h.ctrl.Phase(), len(h.renderer.breathing))
	}
}

func TestVisibilityPausesAndResumesTimer(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.unlock(t)
	if !h.scheduler.live(timerTickInterval, true) {
		t.Fatal("ticker should run while unlocked and visible")
	}

	h.ctrl.VisibilityChanged(false)
	if h.scheduler.live(timerTickInterval, true) {
		t.Fatal("ticker must stop while hidden")
	}

	h.clk.Advance(10 * time.Second) // still inside the interval
	h.ctrl.VisibilityChanged(true)
	if h.ctrl.Phase() != PhaseUnlocked {
		t.Fatalf("expected to stay unlocked, got phase %d", h.ctrl.Phase())
	}
	if !h.scheduler.live(timerTickInterval, true) {
		t.Fatal("ticker should resume when visible again")
	}
}

func TestVisibilityReturnRepromptsWhenDue(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.unlock(t)

	h.ctrl.VisibilityChanged(false)
	h.clk.Advance(3 * time.Minute)
	h.ctrl.VisibilityChanged(true)

	if h.ctrl.Phase() != PhaseBreathing {
		t.Fatalf("expected reprompt on return, got phase %d", h.ctrl.Phase())
	}
	if h.scheduler.live(timerTickInterval, true) {
		t.Fatal("ticker must not run during breathing")
	}
}

func TestTickAccumulatesTimeSpent(t *testing.T) {
	h := newHarness(t, "reddit.com")
	ctx := context.Background()
	h.unlock(t)

	h.scheduler.tick(t, timerTickInterval, 3)

	total, err := h.store.Domains().TimeSpent(ctx, "reddit.com")
	if err != nil {
		t.Fatalf("time spent: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 seconds accumulated, got %d", total)
	}
	if len(h.renderer.ticks) != 3 || h.renderer.ticks[2] != 3 {
		t.Fatalf("expected timer ticks 1..3, got %v", h.renderer.ticks)
	}
}

func TestTeardownCancelsEverything(t *testing.T) {
	h := newHarness(t, "reddit.com")
	h.ctrl.Start()

	h.ctrl.Teardown()

	for _, task := range h.scheduler.tasks {
		if !task.cancelled {
			t.Fatalf("task with delay %v left running after teardown", task.d)
		}
	}
	// A breathing timer that raced the teardown must be a no-op.
	h.scheduler.tasks[0].cancelled = false
	h.scheduler.fireOnce(t, 6*time.Second)
	if h.renderer.intentions != 0 {
		t.Fatal("callback after teardown must not advance the flow")
	}
}
