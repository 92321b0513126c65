package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/doomscrollingfix/dsfix/internal/clock"
)

const breathBarWidth = 30

// View implements tea.Model
func (m Model) View() string {
	var body string
	switch m.screen {
	case screenBreathing:
		body = m.breathingView()
	case screenIntention:
		body = m.intentionView()
	case screenUnlocked:
		body = m.unlockedView()
	case screenDone:
		body = m.doneView()
	}

	frame := frameStyle.Render(body)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame)
	}
	return frame
}

func (m Model) breathingView() string {
	remaining := int(m.breathRemaining.Seconds())
	if remaining < 0 {
		remaining = 0
	}

	filled := breathBarWidth
	if m.breathTotal > 0 {
		filled = breathBarWidth - int(float64(breathBarWidth)*m.breathRemaining.Seconds()/m.breathTotal.Seconds())
	}
	if filled < 0 {
		filled = 0
	}
	if filled > breathBarWidth {
		filled = breathBarWidth
	}
	bar := breathBarFilled.Render(strings.Repeat("█", filled)) +
		breathBarEmpty.Render(strings.Repeat("░", breathBarWidth-filled))

	return strings.Join([]string{
		titleStyle.Render("Take a breath"),
		domainStyle.Render(m.domain),
		"",
		breathStyle.Render(fmt.Sprintf("breathe in… breathe out…  %ds", remaining)),
		bar,
	}, "\n")
}

func (m Model) intentionView() string {
	lines := []string{
		titleStyle.Render("What brings you here?"),
		domainStyle.Render(m.domain),
		"",
		promptStyle.Render(m.intentionInput.View()),
	}
	if m.hasPassword {
		lines = append(lines, promptStyle.Render(m.passwordInput.View()))
	}
	if m.passwordErr {
		lines = append(lines, errorStyle.Render("Incorrect password, try again"))
	}
	lines = append(lines,
		"",
		helpStyle.Render("enter continue · esc go back"),
	)
	return strings.Join(lines, "\n")
}

func (m Model) unlockedView() string {
	status := timerStyle.Render("Time here: " + clock.FormatElapsed(m.timerSeconds))
	if m.hidden {
		status = domainStyle.Render("(hidden, timer paused)")
	}
	return strings.Join([]string{
		titleStyle.Render(m.domain),
		"",
		status,
		"",
		helpStyle.Render("j/k scroll · h hide/show · q quit"),
	}, "\n")
}

func (m Model) doneView() string {
	return strings.Join([]string{
		doneStyle.Render("Nice turnaround."),
		domainStyle.Render("That scroll can wait."),
	}, "\n")
}
