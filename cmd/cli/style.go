package main

import "github.com/charmbracelet/lipgloss"

var (
	green = lipgloss.Color("#10B981")
	red   = lipgloss.Color("#EF4444")
	amber = lipgloss.Color("#F59E0B")
	dim   = lipgloss.Color("#6B7280")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(dim)
	styleOK     = lipgloss.NewStyle().Foreground(green).Bold(true)
	styleErr    = lipgloss.NewStyle().Foreground(red).Bold(true)
	styleWarn   = lipgloss.NewStyle().Foreground(amber)
	styleDim    = lipgloss.NewStyle().Foreground(dim)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "active":
		return styleOK
	case "inactive":
		return styleErr
	default:
		return styleWarn
	}
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		for i := w; i < n; i++ {
			s += " "
		}
	}
	return s
}
