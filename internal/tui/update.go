package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// scrollStepPx is the scroll delta one keypress feeds into the controller.
const scrollStepPx = 40

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case breathingMsg:
		m.screen = screenBreathing
		m.breathTotal = msg.duration
		m.breathRemaining = msg.duration
		m.passwordErr = false
		return m, breathTickCmd()

	case breathTickMsg:
		if m.screen != screenBreathing || m.breathRemaining <= 0 {
			return m, nil
		}
		m.breathRemaining -= time.Second
		return m, breathTickCmd()

	case intentionMsg:
		m.screen = screenIntention
		m.intentionInput.Reset()
		m.passwordInput.Reset()
		m.passwordErr = false
		m.passwordFocus = false
		m.intentionInput.Focus()
		m.passwordInput.Blur()
		return m, nil

	case passwordErrMsg:
		m.passwordErr = true
		m.passwordInput.Reset()
		return m, nil

	case unlockedMsg:
		m.screen = screenUnlocked
		return m, nil

	case dismissedMsg:
		m.screen = screenDone
		return m, doneQuitCmd()

	case timerMsg:
		m.timerSeconds = msg.total
		return m, nil

	case doneQuitMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.ctrl.Teardown()
		return m, tea.Quit
	}

	switch m.screen {
	case screenBreathing:
		// Not skippable.
		return m, nil

	case screenIntention:
		return m.handleIntentionKey(msg)

	case screenUnlocked:
		switch msg.String() {
		case "q", "esc":
			m.ctrl.Teardown()
			return m, tea.Quit
		case "up", "down", "j", "k", "pgup", "pgdown", " ":
			m.ctrl.ScrollBy(scrollStepPx)
		case "h":
			m.hidden = !m.hidden
			m.ctrl.VisibilityChanged(!m.hidden)
		}
		return m, nil

	case screenDone:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleIntentionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.GoBack(m.intentionInput.Value())
		return m, nil
	case "tab", "shift+tab":
		if m.hasPassword {
			m.passwordFocus = !m.passwordFocus
			if m.passwordFocus {
				m.intentionInput.Blur()
				m.passwordInput.Focus()
			} else {
				m.passwordInput.Blur()
				m.intentionInput.Focus()
			}
		}
		return m, nil
	case "enter":
		if m.hasPassword && !m.passwordFocus {
			m.passwordFocus = true
			m.intentionInput.Blur()
			m.passwordInput.Focus()
			return m, nil
		}
		m.ctrl.Continue(m.intentionInput.Value(), m.passwordInput.Value())
		return m, nil
	}

	var cmd tea.Cmd
	if m.passwordFocus {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	} else {
		m.intentionInput, cmd = m.intentionInput.Update(msg)
	}
	return m, cmd
}
