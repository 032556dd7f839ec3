package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorAccent = lipgloss.Color("#FFB000")
	ColorText   = lipgloss.Color("#E0E0E0")
	ColorDim    = lipgloss.Color("#6C6C6C")
	ColorOn     = lipgloss.Color("#3FD16B")
	ColorOff    = lipgloss.Color("#8A8A8A")
	ColorError  = lipgloss.Color("#FF4040")
)

var (
	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Padding(0, 1)

	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDim).
			Padding(0, 1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorDim).
			Width(12)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	StyleOn = lipgloss.NewStyle().
		Foreground(ColorOn).
		Bold(true)

	StyleOff = lipgloss.NewStyle().
			Foreground(ColorOff)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleLogTime = lipgloss.NewStyle().
			Foreground(ColorDim)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorDim)
)
