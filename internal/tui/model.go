// Package tui renders the intervention flow in the terminal. It is the
// render layer behind the controller's Renderer interface: the controller
// owns the state machine and all persistence; this package only draws the
// current phase and forwards key input back as controller calls.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/doomscrollingfix/dsfix/internal/intervention"
)

type screen int

const (
	screenBreathing screen = iota
	screenIntention
	screenUnlocked
	screenDone
)

// doneCooldown is how long the done screen lingers before the program exits.
const doneCooldown = 2 * time.Second

// Model is the bubbletea model for the breathe flow.
type Model struct {
	ctrl        *intervention.Controller
	domain      string
	hasPassword bool

	screen screen

	intentionInput textinput.Model
	passwordInput  textinput.Model
	passwordFocus  bool
	passwordErr    bool

	breathTotal     time.Duration
	breathRemaining time.Duration

	timerSeconds int64
	hidden       bool

	width  int
	height int
}

// Messages delivered by the Renderer bridge or internal ticks.
type (
	breathingMsg   struct{ duration time.Duration }
	intentionMsg   struct{}
	passwordErrMsg struct{}
	unlockedMsg    struct{}
	dismissedMsg   struct{}
	timerMsg       struct{ total int64 }
	breathTickMsg  time.Time
	doneQuitMsg    time.Time
)

// NewModel creates the model for one intervention run. hasPassword controls
// whether the intention screen shows a password field; the controller still
// enforces the actual check.
func NewModel(ctrl *intervention.Controller, domain string, hasPassword bool) Model {
	intention := textinput.New()
	intention.Placeholder = "Why are you here?"
	intention.CharLimit = 200
	intention.Width = 40

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 64
	password.Width = 40

	return Model{
		ctrl:           ctrl,
		domain:         domain,
		hasPassword:    hasPassword,
		screen:         screenBreathing,
		intentionInput: intention,
		passwordInput:  password,
	}
}

// Init implements tea.Model. Starting the controller from a command
// guarantees the program loop is running before the first render callback.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Start()
		return nil
	}
}

func breathTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return breathTickMsg(t)
	})
}

func doneQuitCmd() tea.Cmd {
	return tea.Tick(doneCooldown, func(t time.Time) tea.Msg {
		return doneQuitMsg(t)
	})
}
