package pmc

import "github.com/charmbracelet/lipgloss"

// Severity colors shared by the classifiers.
var (
	ColorGood = lipgloss.Color("#10B981") // Green
	ColorPeak = lipgloss.Color("#3B82F6") // Blue
	ColorRisk = lipgloss.Color("#EF4444") // Red
)

// LongTermColor classifies chronic load: above 100 is peak fitness,
// above 80 is good.
func LongTermColor(value float64, fallback lipgloss.Color) lipgloss.Color {
	switch {
	case value > 100:
		return ColorPeak
	case value > 80:
		return ColorGood
	default:
		return fallback
	}
}

// ShortTermColor returns fallback; acute load alone says nothing about
// whether the athlete is resting or peaking.
func ShortTermColor(_ float64, fallback lipgloss.Color) lipgloss.Color {
	return fallback
}

// BalanceColor flags a balance below -40 as an injury risk.
func BalanceColor(value float64, fallback lipgloss.Color) lipgloss.Color {
	if value < -40 {
		return ColorRisk
	}
	return fallback
}

// RampRateColor flags chronic load growing too fast (above 8) or
// detraining (below -4).
func RampRateColor(value float64, fallback lipgloss.Color) lipgloss.Color {
	if value < -4 || value > 8 {
		return ColorRisk
	}
	return fallback
}
