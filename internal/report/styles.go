package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	textColor    = lipgloss.Color("#F9FAFB") // Light gray
	stsColor     = lipgloss.Color("#F472B6") // Pink
	sbColor      = lipgloss.Color("#F59E0B") // Amber
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(18)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Width(8).
				Align(lipgloss.Right)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// DisableColor renders every style without ANSI colors.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// renderMetric renders a labelled value in the given color
func renderMetric(label, value string, c lipgloss.Color) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Foreground(c).Render(value),
	)
}
