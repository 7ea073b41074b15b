package report

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"trainingload/internal/service"
)

// SummaryFallback is the color used for values that need no attention
var SummaryFallback = textColor

// RenderSummary renders the five model values of one day as a card
func RenderSummary(sum *service.Summary, now time.Time) string {
	title := titleStyle.Render(fmt.Sprintf("Training load (%s)", sum.Metric))

	if sum.Empty {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No rides or season seeds yet. Import or sync some rides first."),
		))
	}

	lines := []string{
		mutedStyle.Render(dayLabel(sum.Date, now)),
		"",
		renderMetric("Stress", fmt.Sprintf("%.0f", sum.Stress), SummaryFallback),
		renderMetric(fmt.Sprintf("Fitness (LTS %dd)", sum.LongTermDays), fmt.Sprintf("%.1f", sum.LongTermLoad), sum.LongTermColor),
		renderMetric(fmt.Sprintf("Fatigue (STS %dd)", sum.ShortTermDays), fmt.Sprintf("%.1f", sum.ShortTermLoad), sum.ShortTermColor),
		renderMetric("Form (SB)", fmt.Sprintf("%.1f", sum.Balance), sum.BalanceColor),
		renderMetric("Ramp rate", fmt.Sprintf("%+.1f", sum.RampRate), sum.RampRateColor),
		"",
		mutedStyle.Render(sum.Form),
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

// dayLabel formats date with a relative hint, e.g. "Mon 02 Jan 2006 (3 days ago)"
func dayLabel(date, now time.Time) string {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var rel string
	switch {
	case day.Equal(today):
		rel = "today"
	default:
		rel = humanize.RelTime(day, today, "ago", "from now")
	}
	return fmt.Sprintf("%s (%s)", day.Format("Mon 02 Jan 2006"), rel)
}
