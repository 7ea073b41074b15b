package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig  `json:"strava" mapstructure:"strava"`
	Athlete AthleteConfig `json:"athlete" mapstructure:"athlete"`
	PMC     PMCConfig     `json:"pmc" mapstructure:"pmc"`
	Display DisplayConfig `json:"display" mapstructure:"display"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
	DB      DBConfig      `json:"db" mapstructure:"db"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	Name      string  `json:"name" mapstructure:"name"`
	FTP       float64 `json:"ftp" mapstructure:"ftp"` // watts
	RestingHR float64 `json:"resting_hr" mapstructure:"resting_hr"`
	MaxHR     float64 `json:"max_hr" mapstructure:"max_hr"`
}

// PMCConfig selects the stress metric and model constants. Zero day
// counts defer to the athlete settings stored in the database.
type PMCConfig struct {
	Metric        string `json:"metric" mapstructure:"metric"`
	LongTermDays  int    `json:"lts_days" mapstructure:"lts_days"`
	ShortTermDays int    `json:"sts_days" mapstructure:"sts_days"`
	BalanceToday  bool   `json:"sb_today" mapstructure:"sb_today"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	Days       int `json:"days" mapstructure:"days"`
	ChartWidth int `json:"chart_width" mapstructure:"chart_width"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
	Path  string `json:"path" mapstructure:"path"` // empty logs to stderr
}

// DBConfig holds the database location
type DBConfig struct {
	Path string `json:"path" mapstructure:"path"` // empty uses ~/.pmc/data.db
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// EnvPrefix prefixes environment overrides, e.g. PMC_ATHLETE_FTP
const EnvPrefix = "PMC"

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			Name:      "default",
			RestingHR: 50,
			MaxHR:     185,
		},
		PMC: PMCConfig{
			Metric: "tss",
		},
		Display: DisplayConfig{
			Days:       90,
			ChartWidth: 80,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// newViper returns a viper instance with defaults and environment
// overrides for every key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("strava.client_id", d.Strava.ClientID)
	v.SetDefault("strava.client_secret", d.Strava.ClientSecret)
	v.SetDefault("athlete.name", d.Athlete.Name)
	v.SetDefault("athlete.ftp", d.Athlete.FTP)
	v.SetDefault("athlete.resting_hr", d.Athlete.RestingHR)
	v.SetDefault("athlete.max_hr", d.Athlete.MaxHR)
	v.SetDefault("pmc.metric", d.PMC.Metric)
	v.SetDefault("pmc.lts_days", d.PMC.LongTermDays)
	v.SetDefault("pmc.sts_days", d.PMC.ShortTermDays)
	v.SetDefault("pmc.sb_today", d.PMC.BalanceToday)
	v.SetDefault("display.days", d.Display.Days)
	v.SetDefault("display.chart_width", d.Display.ChartWidth)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("db.path", d.DB.Path)
	return v
}

// Load reads the configuration from path, or ~/.pmc/config.json when path
// is empty. Defaults apply to missing values and PMC_* environment
// variables override the file. It returns ErrNoConfig when the file does
// not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = getConfigPath(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoConfig
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return unmarshal(v)
}

// LoadOrDefault is Load, but a missing file yields the defaults plus any
// environment overrides.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrNoConfig) {
		return unmarshal(newViper())
	}
	return cfg, err
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to path, or ~/.pmc/config.json when path
// is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		if path, err = getConfigPath(); err != nil {
			return err
		}
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists. It reports
// whether a file was written.
func CreateExample(path string) (bool, error) {
	if path == "" {
		var err error
		if path, err = getConfigPath(); err != nil {
			return false, err
		}
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return false, nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	example.Athlete.FTP = 250

	if err := Save(&example, path); err != nil {
		return false, err
	}
	return true, nil
}

// Validate checks the model and display settings.
func (c *Config) Validate() error {
	if c.Athlete.Name == "" {
		return errors.New("athlete.name must not be empty")
	}
	if c.Athlete.FTP < 0 {
		return fmt.Errorf("athlete.ftp must not be negative, got %v", c.Athlete.FTP)
	}
	if c.Athlete.RestingHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.RestingHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.RestingHR, c.Athlete.MaxHR)
	}
	if c.PMC.Metric == "" {
		return errors.New("pmc.metric must not be empty")
	}
	if c.PMC.LongTermDays < 0 || c.PMC.ShortTermDays < 0 {
		return errors.New("pmc.lts_days and pmc.sts_days must not be negative")
	}
	if c.Display.Days < 1 {
		return fmt.Errorf("display.days must be at least 1, got %d", c.Display.Days)
	}
	if c.Display.ChartWidth < 10 {
		return fmt.Errorf("display.chart_width must be at least 10, got %d", c.Display.ChartWidth)
	}
	return nil
}

// ValidateStrava checks that Strava credentials are configured
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".pmc"), nil
}
