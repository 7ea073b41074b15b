package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"trainingload/internal/config"
	"trainingload/internal/store"
)

func newSeasonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Manage seasons and their starting fitness",
	}
	cmd.AddCommand(newSeasonAddCmd(), newSeasonListCmd(), newSeasonDeleteCmd())
	return cmd
}

func newSeasonAddCmd() *cobra.Command {
	var (
		id   string
		end  string
		seed float64
	)
	cmd := &cobra.Command{
		Use:   "add NAME START",
		Short: "Add or update a season starting on START (YYYY-MM-DD)",
		Long: `Add a season. With --seed the long-term load on the start day is pinned
to that value, e.g. the fitness carried over from before your records begin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(dateLayout, args[1])
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			season := &store.Season{ID: id, Name: args[0], Start: start}
			if end != "" {
				if season.End, err = time.Parse(dateLayout, end); err != nil {
					return fmt.Errorf("invalid --end date: %w", err)
				}
				if season.End.Before(season.Start) {
					return errors.New("season ends before it starts")
				}
			}
			if cmd.Flags().Changed("seed") {
				if seed < 0 {
					return fmt.Errorf("seed must not be negative, got %v", seed)
				}
				if seed == 0 {
					warnf("a seed of 0 does not pin the long-term load, the season start is computed from rides")
				}
				season.Seed = &seed
			}

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.SaveSeason(season); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved season %s (%s)\n", season.Name, season.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "update the season with this ID")
	cmd.Flags().StringVar(&end, "end", "", "last day of the season, YYYY-MM-DD")
	cmd.Flags().Float64Var(&seed, "seed", 0, "long-term load on the first day")
	return cmd
}

func newSeasonListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List seasons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			seasons, err := db.ListSeasons()
			if err != nil {
				return err
			}
			if len(seasons) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No seasons")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			defer func() { _ = table.Close() }()
			table.Header([]string{"ID", "Name", "Start", "End", "Seed"})
			for _, s := range seasons {
				endDate, seed := "-", "-"
				if !s.End.IsZero() {
					endDate = s.End.Format(dateLayout)
				}
				if s.Seed != nil {
					seed = strconv.FormatFloat(*s.Seed, 'f', 1, 64)
				}
				if err := table.Append([]string{s.ID, s.Name, s.Start.Format(dateLayout), endDate, seed}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func newSeasonDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteSeason(args[0]); err != nil {
				if errors.Is(err, store.ErrSeasonNotFound) {
					return fmt.Errorf("no season with ID %s", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted season %s\n", args[0])
			return nil
		},
	}
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the athlete's model settings",
		Long: `Athlete settings hold the model constants used when the config leaves them
at zero: lts_days (long-term days), sts_days (short-term days) and sb_today
(show the balance on the same day instead of the next).`,
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [KEY]",
		Short: "Print one or all settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if len(args) == 1 {
				value, err := db.GetSetting(cfg.Athlete.Name, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}

			settings, err := db.ListSettings(cfg.Athlete.Name)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, settings[k])
			}
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := validateSetting(key, value); err != nil {
				return err
			}

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			return db.SetSetting(cfg.Athlete.Name, key, value)
		},
	}
}

// validateSetting checks values of the keys the model reads
func validateSetting(key, value string) error {
	switch key {
	case store.SettingLongTermDays, store.SettingShortTermDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%s must be a positive number of days, got %q", key, value)
		}
	case store.SettingBalanceToday:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
	default:
		warnf("%s is not read by the training load model", key)
	}
	return nil
}

func newRidesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rides",
		Short: "List or delete stored rides",
	}
	cmd.AddCommand(newRidesListCmd(), newRidesDeleteCmd())
	return cmd
}

func newRidesListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent rides with their stress metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			rides, err := db.ListRides()
			if err != nil {
				return err
			}
			if limit > 0 && len(rides) > limit {
				rides = rides[len(rides)-limit:]
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			defer func() { _ = table.Close() }()
			table.Header([]string{"ID", "Date", "Source", "Sport", "Name", "Distance", cfg.PMC.Metric})
			for _, r := range rides {
				stress := "-"
				if v, ok := r.Metrics[cfg.PMC.Metric]; ok {
					stress = strconv.FormatFloat(v, 'f', 0, 64)
				}
				row := []string{
					strconv.FormatInt(r.ID, 10),
					r.StartDateLocal.Format(dateLayout),
					r.Source,
					r.Sport,
					r.Name,
					humanize.FormatFloat("#,###.#", r.Distance/1000) + " km",
					stress,
				}
				if err := table.Append(row); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rides, 0 for all")
	return cmd
}

func newRidesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored ride",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid ride ID %q", args[0])
			}

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteRide(id); err != nil {
				if errors.Is(err, store.ErrRideNotFound) {
					return fmt.Errorf("no ride with ID %d", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted ride %d\n", id)
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := config.CreateExample(flags.configPath)
			if err != nil {
				return fmt.Errorf("creating example config: %w", err)
			}
			path := flags.configPath
			if path == "" {
				dir, _ := config.GetConfigDir()
				path = dir + "/config.json"
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Please edit the config file at:\n  %s\n\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Strava sync needs API credentials from https://www.strava.com/settings/api")
			return nil
		},
	}
}
