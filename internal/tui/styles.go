package tui

import "github.com/charmbracelet/lipgloss"

// The bar fades from barStart to barEnd as entries complete.
var (
	barStart  = lipgloss.Color("#2563EB")
	barEnd    = lipgloss.Color("#22C55E")
	faint     = lipgloss.Color("#8B93A1")
	failColor = lipgloss.Color("#DC2626")
)

var (
	frameStyle = lipgloss.NewStyle().Padding(1, 2)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(barStart)

	counterStyle = lipgloss.NewStyle().
			Foreground(faint)

	entryStyle = lipgloss.NewStyle().
			Italic(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(faint).
			MarginTop(1)

	okStyle = lipgloss.NewStyle().
			Foreground(barEnd).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(failColor).
			Bold(true)
)
