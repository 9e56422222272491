package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Negative   lipgloss.Style
	Selected   lipgloss.Style
	RoundedBox lipgloss.Style
	HelpKey    lipgloss.Style
	Primary    lipgloss.Color
	Border     lipgloss.Color
	MutedColor lipgloss.Color
	ErrorColor lipgloss.Color
	Foreground lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary:    lipgloss.Color("#2EC4B6"),
	Border:     lipgloss.Color("#404040"),
	MutedColor: lipgloss.Color("#737373"),
	ErrorColor: lipgloss.Color("#ef4444"),
	Foreground: lipgloss.Color("#fafafa"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2EC4B6")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Negative: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#2EC4B6")).
		Foreground(lipgloss.Color("#1a1a1a")).
		Bold(true),
	RoundedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(1, 2),
	HelpKey: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2EC4B6")),
}
