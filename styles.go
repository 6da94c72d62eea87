package main

import "github.com/charmbracelet/lipgloss"

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f4f4f5")).
			Background(lipgloss.Color("#27272a"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f43f5e")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f4f4f5")).Bold(true)
	pickStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24")).Bold(true)

	// Colour of the rubber band drawn from the pending source.
	bandColor = "#fbbf24"
)

// paint renders s in the hex colour c; an empty colour leaves s as is.
func paint(c, s string) string {
	if c == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(s)
}
