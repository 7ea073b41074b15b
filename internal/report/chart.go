package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"trainingload/internal/pmc"
)

// ChartOptions controls the size of the rendered chart
type ChartOptions struct {
	Width  int
	Height int
	Color  bool
}

// RenderChart plots long-term load, short-term load and balance for rows
func RenderChart(metric string, rows []pmc.Day, opts ChartOptions) string {
	title := titleStyle.Render(fmt.Sprintf("Performance manager (%s)", metric))
	if len(rows) < 2 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Not enough days to chart")))
	}

	lts := make([]float64, len(rows))
	sts := make([]float64, len(rows))
	sb := make([]float64, len(rows))
	for i, r := range rows {
		lts[i] = r.LongTermLoad
		sts[i] = r.ShortTermLoad
		sb[i] = r.Balance
	}

	height := opts.Height
	if height <= 0 {
		height = 12
	}

	graphOpts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Precision(0),
		asciigraph.SeriesLegends("LTS", "STS", "SB"),
		asciigraph.Caption(fmt.Sprintf("%s to %s",
			rows[0].Date.Format("2006-01-02"),
			rows[len(rows)-1].Date.Format("2006-01-02"))),
	}
	if opts.Width > 0 {
		graphOpts = append(graphOpts, asciigraph.Width(opts.Width))
	}
	// legends index the series colors, so each series needs one
	colors := []asciigraph.AnsiColor{asciigraph.Default, asciigraph.Default, asciigraph.Default}
	if opts.Color {
		colors = []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.HotPink, asciigraph.Goldenrod}
	}
	graphOpts = append(graphOpts, asciigraph.SeriesColors(colors...))

	graph := asciigraph.PlotMany([][]float64{lts, sts, sb}, graphOpts...)
	if !opts.Color {
		// legend boxes still carry reset codes
		graph = strings.ReplaceAll(graph, asciigraph.Default.String(), "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, graph)
}
