package intervention

import (
	"context"
	"sync"
	"time"

	"github.com/doomscrollingfix/dsfix/internal/metrics"
	"github.com/doomscrollingfix/dsfix/internal/policy"
	"github.com/doomscrollingfix/dsfix/internal/session"
	"github.com/doomscrollingfix/dsfix/internal/storage"
	"github.com/rs/zerolog"
)

// Phase is the controller's position in the intervention flow.
type Phase int

const (
	// PhaseIdle is the state before Start and after a go-back resolution.
	PhaseIdle Phase = iota
	// PhaseBreathing is the timed, non-skippable breathing phase.
	PhaseBreathing
	// PhaseIntention accepts the intention text and the proceed/go-back choice.
	PhaseIntention
	// PhaseUnlocked is content visible, with reprompt triggers armed.
	PhaseUnlocked
)

const (
	// ScrollThresholdPx is the cumulative scroll delta that arms a
	// scroll-triggered reprompt check.
	ScrollThresholdPx = 100
	// ScrollDebounce collapses scroll bursts into one check.
	ScrollDebounce = time.Second
	// RepromptCheckInterval is the periodic check cadence while unlocked.
	RepromptCheckInterval = 5 * time.Second
	// timerTickInterval is the per-second elapsed-time cadence.
	timerTickInterval = time.Second
)

// Renderer is the external render layer. The controller tells it what to
// show; it must not call back into the controller from within a callback.
type Renderer interface {
	// ShowBreathing replaces any existing overlay with the breathing phase.
	// The progress indicator animates over the given duration.
	ShowBreathing(duration time.Duration)
	// ShowIntention switches the overlay to the intention prompt.
	ShowIntention()
	// ShowPasswordError reports an incorrect password inline; the phase is
	// unchanged and retries are unlimited.
	ShowPasswordError()
	// Unlocked removes the overlay and reveals content.
	Unlocked()
	// Dismissed ends the flow after a go-back choice.
	Dismissed()
	// TimerTick reports the domain's accumulated unlocked seconds.
	TimerTick(totalSeconds int64)
}

// Controller runs the intervention state machine for one view of one domain.
// Construct one per view and tear it down when the view goes away; there is
// no cross-view coordination (simultaneous views of the same domain race on
// the shared counters by design).
type Controller struct {
	domain    string
	store     storage.Store
	policy    *policy.Policy
	recorder  *session.Recorder
	renderer  Renderer
	scheduler Scheduler
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	phase    Phase
	visible  bool
	tornDown bool

	breathingDuration time.Duration
	scrollAccum       float64

	breathingCancel CancelFunc
	tickCancel      CancelFunc
	repromptCancel  CancelFunc
	scrollCancel    CancelFunc
}

// NewController wires a controller for one view of the given domain.
func NewController(domain string, store storage.Store, pol *policy.Policy, recorder *session.Recorder, renderer Renderer, scheduler Scheduler, logger zerolog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		domain:    domain,
		store:     store,
		policy:    pol,
		recorder:  recorder,
		renderer:  renderer,
		scheduler: scheduler,
		logger:    logger.With().Str("component", "overlay-controller").Str("domain", domain).Logger(),
		ctx:       ctx,
		cancel:    cancel,
		phase:     PhaseIdle,
		visible:   true,
	}
}

// Phase returns the controller's current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Start performs the first policy evaluation and enters either the breathing
// phase or the unlocked state. A storage failure fails open: the content
// stays visible rather than trapping the user behind a broken overlay.
func (c *Controller) Start() {
	due, err := c.policy.ShouldShowOverlay(c.ctx, c.domain)
	if err != nil {
		c.logger.Error().Err(err).Msg("Initial policy evaluation failed, leaving content unlocked")
		due = false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return
	}
	if due {
		c.enterBreathingLocked()
	} else {
		c.enterUnlockedLocked()
	}
	c.startRepromptCheckLocked()
}

// GoBack resolves the intention phase without viewing content. The session
// is recorded as a turnaround and the reprompt window is NOT reset: the user
// never saw the content, so the next visit prompts again.
func (c *Controller) GoBack(intention string) {
	c.mu.Lock()
	if c.phase != PhaseIntention || c.tornDown {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseIdle
	duration := int(c.breathingDuration / time.Second)
	c.mu.Unlock()

	if err := c.recorder.RecordSession(c.ctx, c.domain, duration, false, intention); err != nil {
		c.logger.Error().Err(err).Msg("Failed to record turnaround session")
	}
	c.renderer.Dismissed()
}

// Continue resolves the intention phase toward the content. When a password
// is configured it must match; a mismatch keeps the phase with an inline
// error and unlimited retries. On success the session and unlock are
// recorded before the unlocked-state timers start.
func (c *Controller) Continue(intention, password string) {
	c.mu.Lock()
	if c.phase != PhaseIntention || c.tornDown {
		c.mu.Unlock()
		return
	}
	duration := int(c.breathingDuration / time.Second)
	c.mu.Unlock()

	settings, err := c.store.Settings().Get(c.ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to read settings for password check, proceeding without one")
		settings = storage.DefaultSettings()
	}
	if settings.Password != "" && password != settings.Password {
		c.renderer.ShowPasswordError()
		return
	}

	if err := c.recorder.RecordSession(c.ctx, c.domain, duration, true, intention); err != nil {
		c.logger.Error().Err(err).Msg("Failed to record session")
	}
	if err := c.policy.RecordUnlock(c.ctx, c.domain); err != nil {
		c.logger.Error().Err(err).Msg("Failed to record unlock")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown || c.phase != PhaseIntention {
		return
	}
	c.enterUnlockedLocked()
}

// ScrollBy feeds a scroll delta (in pixels, either direction) into the
// scroll-triggered reprompt check. Only meaningful while unlocked.
func (c *Controller) ScrollBy(deltaPx float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseUnlocked || c.tornDown {
		return
	}

	if deltaPx < 0 {
		deltaPx = -deltaPx
	}
	c.scrollAccum += deltaPx
	if c.scrollAccum <= ScrollThresholdPx {
		return
	}
	c.scrollAccum = 0

	// Each burst restarts the debounce window.
	if c.scrollCancel != nil {
		c.scrollCancel()
	}
	c.scrollCancel = c.scheduler.Once(ScrollDebounce, func() {
		c.checkReprompt("scroll")
	})
}

// VisibilityChanged pauses the elapsed-time counter while hidden and, on
// becoming visible again, evaluates the reprompt policy before resuming it.
func (c *Controller) VisibilityChanged(visible bool) {
	c.mu.Lock()
	c.visible = visible
	if c.tornDown {
		c.mu.Unlock()
		return
	}
	if !visible {
		c.stopTickLocked()
		c.mu.Unlock()
		return
	}
	unlocked := c.phase == PhaseUnlocked
	c.mu.Unlock()

	if !unlocked {
		return
	}

	due, err := c.policy.ShouldShowOverlay(c.ctx, c.domain)
	if err != nil {
		c.logger.Error().Err(err).Msg("Policy evaluation on visibility change failed")
		due = false
	}
	if due {
		c.triggerReprompt("visibility")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseUnlocked && !c.tornDown {
		c.startTickLocked()
	}
}

// Teardown cancels every active timer. The controller is inert afterwards;
// no callback outlives the owning view.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tornDown = true
	c.phase = PhaseIdle
	c.stopTickLocked()
	for _, cancel := range []*CancelFunc{&c.breathingCancel, &c.repromptCancel, &c.scrollCancel} {
		if *cancel != nil {
			(*cancel)()
			*cancel = nil
		}
	}
	c.cancel()
}

// enterBreathingLocked starts the timed breathing phase. Re-entry replaces
// the overlay (the renderer keeps at most one) but never stacks timers.
func (c *Controller) enterBreathingLocked() {
	c.phase = PhaseBreathing
	c.stopTickLocked()

	duration := c.loadBreathingDurationLocked()
	c.breathingDuration = duration
	c.renderer.ShowBreathing(duration)

	if c.breathingCancel != nil {
		return
	}
	c.breathingCancel = c.scheduler.Once(duration, c.onBreathingComplete)
}

func (c *Controller) onBreathingComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breathingCancel = nil
	if c.phase != PhaseBreathing || c.tornDown {
		return
	}
	c.phase = PhaseIntention
	c.renderer.ShowIntention()
}

func (c *Controller) enterUnlockedLocked() {
	c.phase = PhaseUnlocked
	c.scrollAccum = 0
	c.renderer.Unlocked()
	if c.visible {
		c.startTickLocked()
	}
}

// startTickLocked arms the per-second elapsed-time counter. Starting while
// one is running is a no-op, not a second timer.
func (c *Controller) startTickLocked() {
	if c.tickCancel != nil {
		return
	}
	c.tickCancel = c.scheduler.Repeating(timerTickInterval, c.onTick)
}

func (c *Controller) stopTickLocked() {
	if c.tickCancel != nil {
		c.tickCancel()
		c.tickCancel = nil
	}
}

func (c *Controller) onTick() {
	c.mu.Lock()
	if c.phase != PhaseUnlocked || !c.visible || c.tornDown {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	total, err := c.store.Domains().AddTimeSpent(c.ctx, c.domain, 1)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to persist time spent")
		return
	}
	metrics.UnlockedSecondsTotal.WithLabelValues(c.domain).Inc()
	c.renderer.TimerTick(total)
}

// startRepromptCheckLocked arms the periodic check. It runs for the life of
// the controller and is a no-op while not unlocked, matching the always-on
// interval of the content script.
func (c *Controller) startRepromptCheckLocked() {
	if c.repromptCancel != nil {
		return
	}
	c.repromptCancel = c.scheduler.Repeating(RepromptCheckInterval, func() {
		c.checkReprompt("timer")
	})
}

func (c *Controller) checkReprompt(trigger string) {
	c.mu.Lock()
	if c.phase != PhaseUnlocked || c.tornDown {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	due, err := c.policy.ShouldShowOverlay(c.ctx, c.domain)
	if err != nil {
		c.logger.Error().Err(err).Str("trigger", trigger).Msg("Reprompt check failed")
		return
	}
	if due {
		c.triggerReprompt(trigger)
	}
}

func (c *Controller) triggerReprompt(trigger string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseUnlocked || c.tornDown {
		return
	}
	metrics.RepromptsTotal.WithLabelValues(trigger).Inc()
	c.logger.Debug().Str("trigger", trigger).Msg("Reprompt triggered")
	c.enterBreathingLocked()
}

// loadBreathingDurationLocked reads the configured duration, degrading to
// the default on a storage failure.
func (c *Controller) loadBreathingDurationLocked() time.Duration {
	settings, err := c.store.Settings().Get(c.ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to read settings, using default breathing duration")
		return time.Duration(storage.DefaultBreathingSeconds) * time.Second
	}
	return time.Duration(settings.BreathingDurationSeconds) * time.Second
}
