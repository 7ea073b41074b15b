package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"trainingload/internal/analysis"
	"trainingload/internal/config"
	"trainingload/internal/pmc"
	"trainingload/internal/report"
	"trainingload/internal/service"
	"trainingload/internal/store"
)

// flags holds the persistent command line overrides.
var flags struct {
	configPath string
	dbPath     string
	metric     string
	athlete    string
	sports     []string
	noColor    bool
}

// cfg is the loaded configuration with flag overrides applied.
var cfg *config.Config

// useColor is set when stdout is a terminal and colors are not disabled.
var useColor bool

// now is replaced in tests.
var now = time.Now

// newRootCmd builds the command tree. Flags bind to the package level
// flags struct, so each build starts from the defaults.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pmc",
		Short: "Cycling training load from Strava and FIT files",
		Long: `pmc tracks long-term load (fitness), short-term load (fatigue), stress
balance (form) and ramp rate from the stress scores of your rides.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.pmc/config.json)")
	pf.StringVar(&flags.dbPath, "db", "", "database file (default ~/.pmc/data.db)")
	pf.StringVarP(&flags.metric, "metric", "m", "", "stress metric: "+strings.Join(analysis.StressMetrics, ", "))
	pf.StringVar(&flags.athlete, "athlete", "", "athlete whose settings are used")
	pf.StringSliceVar(&flags.sports, "sport", nil, "only count rides of these sports, e.g. Ride,VirtualRide")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newInitCmd(),
		newLoginCmd(),
		newSyncCmd(),
		newImportCmd(),
		newSummaryCmd(),
		newChartCmd(),
		newTableCmd(),
		newExportCmd(),
		newSeasonCmd(),
		newSettingsCmd(),
		newRidesCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// setup loads the configuration and sets up logging and colors before any
// command runs.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadOrDefault(flags.configPath)
	if err != nil {
		return err
	}
	if flags.dbPath != "" {
		loaded.DB.Path = flags.dbPath
	}
	if flags.metric != "" {
		loaded.PMC.Metric = flags.metric
	}
	if flags.athlete != "" {
		loaded.Athlete.Name = flags.athlete
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !analysis.IsStressMetric(loaded.PMC.Metric) {
		warnf("%q is not a known stress metric, days without it count as zero", loaded.PMC.Metric)
	}
	cfg = loaded

	loggingSetup(cfg.Log.Path, cfg.Log.Level)

	out := cmd.OutOrStdout()
	f, isFile := out.(*os.File)
	useColor = !flags.noColor && isFile && term.IsTerminal(int(f.Fd()))
	if !useColor {
		color.NoColor = true
		report.DisableColor()
	}
	return nil
}

// loggingSetup sets the logrus level and sends output to a rotated log
// file when path is set.
func loggingSetup(path, level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
		warnf("unknown log level %q, using warn", level)
	}
	log.SetLevel(lvl)

	if path == "" {
		log.SetOutput(os.Stderr)
		return
	}
	if !strings.HasSuffix(path, ".log") {
		path += ".log"
	}
	log.SetOutput(&lumberjack.Logger{
		Filename: path,
		MaxSize:  10, // megabytes
		Compress: true,
	})
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
}

// warnf prints a yellow warning to stderr.
func warnf(format string, args ...any) {
	_, _ = color.New(color.FgYellow).Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// openStore opens the configured database.
func openStore() (*store.DB, error) {
	if cfg.DB.Path != "" {
		return store.OpenPath(cfg.DB.Path)
	}
	return store.Open()
}

// newPMCService builds the query service for the configured athlete.
func newPMCService(db *store.DB) *service.PMCService {
	return service.NewPMCService(db, service.PMCOptions{
		Athlete:       cfg.Athlete.Name,
		LongTermDays:  cfg.PMC.LongTermDays,
		ShortTermDays: cfg.PMC.ShortTermDays,
		BalanceToday:  cfg.PMC.BalanceToday,
		Spec:          pmc.Sports(flags.sports...),
	})
}

func zones() analysis.HRZones {
	return analysis.HRZones{RestingHR: cfg.Athlete.RestingHR, MaxHR: cfg.Athlete.MaxHR}
}
