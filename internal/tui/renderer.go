package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// queueDepth bounds pending render messages. The controller emits at most a
// few messages per second, so the queue never fills in practice.
const queueDepth = 64

// Renderer bridges controller callbacks into the bubbletea program as
// messages. Callbacks arrive on scheduler goroutines while the program loop
// may itself be calling into the controller, so messages go through a
// buffered queue with a dedicated forwarder; controller callbacks never
// block on the program loop.
type Renderer struct {
	mu    sync.Mutex
	queue chan tea.Msg
	p     *tea.Program
}

// NewRenderer creates an unattached renderer. Attach the program before the
// controller starts.
func NewRenderer() *Renderer {
	return &Renderer{queue: make(chan tea.Msg, queueDepth)}
}

// Attach binds the renderer to a program and starts forwarding messages.
func (r *Renderer) Attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.p != nil {
		return
	}
	r.p = p
	go func() {
		for msg := range r.queue {
			p.Send(msg)
		}
	}()
}

func (r *Renderer) send(msg tea.Msg) {
	select {
	case r.queue <- msg:
	default:
		// Queue full means the program is gone or wedged; drop rather
		// than stall the controller.
	}
}

func (r *Renderer) ShowBreathing(duration time.Duration) { r.send(breathingMsg{duration: duration}) }
func (r *Renderer) ShowIntention()                       { r.send(intentionMsg{}) }
func (r *Renderer) ShowPasswordError()                   { r.send(passwordErrMsg{}) }
func (r *Renderer) Unlocked()                            { r.send(unlockedMsg{}) }
func (r *Renderer) Dismissed()                           { r.send(dismissedMsg{}) }
func (r *Renderer) TimerTick(total int64)                { r.send(timerMsg{total: total}) }
