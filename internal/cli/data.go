package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/oauth2"

	"trainingload/internal/auth"
	"trainingload/internal/export"
	"trainingload/internal/fitfile"
	"trainingload/internal/pmc"
	"trainingload/internal/service"
	"trainingload/internal/store"
	"trainingload/internal/strava"
)

func newExportCmd() *cobra.Command {
	var r rangeFlags
	var all bool
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the daily model values to a Parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := newPMCService(db)
			defer svc.Close()

			days, err := exportRows(svc, &r, all)
			if err != nil {
				return err
			}
			if err := export.WriteParquetFile(args[0], cfg.PMC.Metric, days); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s days to %s\n", humanize.Comma(int64(len(days))), args[0])
			return nil
		},
	}
	r.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "export every day of the model instead of a range")
	return cmd
}

// exportRows returns the whole model with all set, else the range
func exportRows(svc *service.PMCService, r *rangeFlags, all bool) ([]pmc.Day, error) {
	if all {
		return svc.Series(cfg.PMC.Metric)
	}
	from, to, err := r.resolve(today())
	if err != nil {
		return nil, err
	}
	return svc.History(cfg.PMC.Metric, from, to)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH...",
		Short: "Import rides from FIT files or directories of FIT files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := service.NewImportService(db, fitfile.Config{FTP: cfg.Athlete.FTP, Zones: zones()})
			result, err := svc.ImportFiles(ctx, args)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d files (%d not cycling, %d failed)\n",
					result.Imported, result.Files, result.Skipped, result.Failed)
			}
			for _, e := range multierr.Errors(err) {
				warnf("%v", e)
			}
			if result != nil && result.Failed > 0 && result.Imported == 0 {
				return errors.New("no files imported")
			}
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize access to your Strava rides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateStrava(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			return login(ctx, cmd, db)
		},
	}
}

func login(ctx context.Context, cmd *cobra.Command, db *store.DB) error {
	result, err := auth.Authenticate(ctx, oauthConfig(), cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("authentication: %w", err)
	}
	if err := auth.Save(db, cfg.Athlete.Name, result); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nSuccessfully authenticated %s as Strava athlete %d!\n", cfg.Athlete.Name, result.AthleteID)
	return nil
}

func newSyncCmd() *cobra.Command {
	var streamLimit int
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new rides from Strava",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateStrava(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			oauthCfg := oauthConfig()
			tokens, err := auth.StoredTokenSource(db, cfg.Athlete.Name, oauthCfg)
			if errors.Is(err, store.ErrNoAuth) {
				fmt.Fprintln(cmd.OutOrStdout(), "No authentication found. Starting OAuth flow...")
				if err := login(ctx, cmd, db); err != nil {
					return err
				}
				tokens, err = auth.StoredTokenSource(db, cfg.Athlete.Name, oauthCfg)
			}
			if err != nil {
				return err
			}

			svc := service.NewSyncService(strava.NewClient(tokens), db, service.SyncOptions{
				FTP:         cfg.Athlete.FTP,
				Zones:       zones(),
				StreamLimit: streamLimit,
			})

			progress := make(chan service.SyncProgress)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for p := range progress {
					log.WithFields(log.Fields{
						"phase":     p.Phase,
						"completed": p.Completed,
						"total":     p.Total,
					}).Debug("sync: progress")
					if p.CurrentRide != "" {
						fmt.Fprintf(cmd.ErrOrStderr(), "\r[%d/%d] %-40.40s", p.Completed, p.Total, p.CurrentRide)
					}
				}
			}()

			result, err := svc.Sync(ctx, progress)
			<-done
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nFetched %d rides, stored %d (%d with streams)\n",
				result.RidesFetched, result.RidesStored, result.StreamsFetched)
			for _, e := range multierr.Errors(result.Err()) {
				warnf("%v", e)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&streamLimit, "streams", 50, "most rides per sync whose power and heart rate streams are fetched")
	return cmd
}

func oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	})
}
