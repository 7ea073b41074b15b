package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"trainingload/internal/pmc"
)

// WriteTable writes one row per day with the five model values.
// Balance and ramp rate cells at risk are colored red when useColors is set.
func WriteTable(w io.Writer, rows []pmc.Day, useColors bool) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Date", "Stress", "LTS", "STS", "SB", "RR"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	risk := fmt.Sprint
	if useColors {
		risk = color.New(color.FgRed, color.Bold).SprintFunc()
	}

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		sb := fmt.Sprintf("%.1f", r.Balance)
		if pmc.BalanceColor(r.Balance, "") == pmc.ColorRisk {
			sb = risk(sb)
		}
		rr := fmt.Sprintf("%+.1f", r.RampRate)
		if pmc.RampRateColor(r.RampRate, "") == pmc.ColorRisk {
			rr = risk(rr)
		}
		data = append(data, []string{
			r.Date.Format("2006-01-02"),
			fmt.Sprintf("%.0f", r.Stress),
			fmt.Sprintf("%.1f", r.LongTermLoad),
			fmt.Sprintf("%.1f", r.ShortTermLoad),
			sb,
			rr,
		})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("filling table: %w", err)
	}
	return table.Render()
}
