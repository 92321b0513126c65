package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Color palette (catppuccin mocha)
var (
	flavor = catppuccin.Mocha

	accentColor = lipgloss.Color(flavor.Mauve().Hex)
	calmColor   = lipgloss.Color(flavor.Sky().Hex)
	okColor     = lipgloss.Color(flavor.Green().Hex)
	dangerColor = lipgloss.Color(flavor.Red().Hex)
	mutedColor  = lipgloss.Color(flavor.Overlay1().Hex)
	fgColor     = lipgloss.Color(flavor.Text().Hex)
)

// Overlay frame and headings
var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 3)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	domainStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Breathing phase
var (
	breathStyle = lipgloss.NewStyle().
			Foreground(calmColor).
			Bold(true)

	breathBarFilled = lipgloss.NewStyle().
			Foreground(calmColor)

	breathBarEmpty = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Intention phase
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(fgColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)
)

// Unlocked and done states
var (
	timerStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)
)
