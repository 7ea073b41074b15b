package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trainingload/internal/pmc"
	"trainingload/internal/report"
)

const dateLayout = "2006-01-02"

// rangeFlags selects the days shown by chart, table and export.
type rangeFlags struct {
	days int
	from string
	to   string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&r.days, "days", "d", 0, "number of days ending at --to (default display.days)")
	cmd.Flags().StringVar(&r.from, "from", "", "first day, YYYY-MM-DD (overrides --days)")
	cmd.Flags().StringVar(&r.to, "to", "", "last day, YYYY-MM-DD (default today)")
}

// resolve returns the inclusive day range
func (r *rangeFlags) resolve(today time.Time) (from, to time.Time, err error) {
	to = today
	if r.to != "" {
		if to, err = time.Parse(dateLayout, r.to); err != nil {
			return from, to, fmt.Errorf("invalid --to date: %w", err)
		}
	}
	if r.from != "" {
		if from, err = time.Parse(dateLayout, r.from); err != nil {
			return from, to, fmt.Errorf("invalid --from date: %w", err)
		}
		return from, to, nil
	}
	days := r.days
	if days <= 0 {
		days = cfg.Display.Days
	}
	return to.AddDate(0, 0, -(days - 1)), to, nil
}

// today is the current calendar day as a UTC midnight
func today() time.Time {
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// history opens the store and loads the model rows for the range
func history(r *rangeFlags) ([]pmc.Day, error) {
	from, to, err := r.resolve(today())
	if err != nil {
		return nil, err
	}
	db, err := openStore()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	svc := newPMCService(db)
	defer svc.Close()
	return svc.History(cfg.PMC.Metric, from, to)
}

func newSummaryCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show fitness, fatigue, form and ramp rate for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := today()
			if date != "" {
				var err error
				if day, err = time.Parse(dateLayout, date); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := newPMCService(db)
			defer svc.Close()
			sum, err := svc.Summary(cfg.PMC.Metric, day, report.SummaryFallback)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report.RenderSummary(sum, today()))
			return err
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show, YYYY-MM-DD (default today)")
	return cmd
}

func newChartCmd() *cobra.Command {
	var r rangeFlags
	var height int
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Plot long-term load, short-term load and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := history(&r)
			if err != nil {
				return err
			}
			out := report.RenderChart(cfg.PMC.Metric, rows, report.ChartOptions{
				Width:  cfg.Display.ChartWidth,
				Height: height,
				Color:  useColor,
			})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	r.register(cmd)
	cmd.Flags().IntVar(&height, "height", 12, "chart height in lines")
	return cmd
}

func newTableCmd() *cobra.Command {
	var r rangeFlags
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the daily model values as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := history(&r)
			if err != nil {
				return err
			}
			return report.WriteTable(cmd.OutOrStdout(), rows, useColor)
		},
	}
	r.register(cmd)
	return cmd
}
