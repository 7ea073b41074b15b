package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test athlete defaults
	if cfg.Athlete.RestingHR != 50 {
		t.Errorf("Athlete.RestingHR = %v, want 50", cfg.Athlete.RestingHR)
	}
	if cfg.Athlete.MaxHR != 185 {
		t.Errorf("Athlete.MaxHR = %v, want 185", cfg.Athlete.MaxHR)
	}
	if cfg.PMC.Metric != "tss" {
		t.Errorf("PMC.Metric = %q, want %q", cfg.PMC.Metric, "tss")
	}

	// Zero constants defer to athlete settings
	if cfg.PMC.LongTermDays != 0 || cfg.PMC.ShortTermDays != 0 {
		t.Errorf("PMC days = %d/%d, want 0/0", cfg.PMC.LongTermDays, cfg.PMC.ShortTermDays)
	}

	// Strava config should be empty by default
	if cfg.Strava.ClientID != "" {
		t.Errorf("Strava.ClientID should be empty, got %q", cfg.Strava.ClientID)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		errContains string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty athlete", func(c *Config) { c.Athlete.Name = "" }, "athlete.name"},
		{"negative ftp", func(c *Config) { c.Athlete.FTP = -1 }, "athlete.ftp"},
		{"resting above max", func(c *Config) { c.Athlete.RestingHR = 190 }, "resting_hr"},
		{"empty metric", func(c *Config) { c.PMC.Metric = "" }, "pmc.metric"},
		{"negative days", func(c *Config) { c.PMC.ShortTermDays = -7 }, "sts_days"},
		{"no display days", func(c *Config) { c.Display.Days = 0 }, "display.days"},
		{"narrow chart", func(c *Config) { c.Display.ChartWidth = 5 }, "chart_width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateStrava(t *testing.T) {
	tests := []struct {
		name        string
		strava      StravaConfig
		errContains string
	}{
		{"valid", StravaConfig{ClientID: "12345", ClientSecret: "abc123secret"}, ""},
		{"empty client ID", StravaConfig{ClientSecret: "abc123secret"}, "client_id"},
		{"placeholder client ID", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "abc123secret"}, "client_id"},
		{"empty client secret", StravaConfig{ClientID: "12345"}, "client_secret"},
		{"placeholder client secret", StravaConfig{ClientID: "12345", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_secret"},
		{"both placeholders", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Strava: tt.strava}
			err := cfg.ValidateStrava()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoConfig)

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"strava": {"client_id": "42", "client_secret": "s3cret"},
		"athlete": {"name": "alice", "ftp": 280},
		"pmc": {"metric": "trimp", "lts_days": 50}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("PMC_ATHLETE_FTP", "300")
	t.Setenv("PMC_PMC_SB_TODAY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "42", cfg.Strava.ClientID)
	assert.Equal(t, "alice", cfg.Athlete.Name)
	assert.Equal(t, 300.0, cfg.Athlete.FTP)
	assert.Equal(t, "trimp", cfg.PMC.Metric)
	assert.Equal(t, 50, cfg.PMC.LongTermDays)
	assert.True(t, cfg.PMC.BalanceToday)

	// untouched keys keep their defaults
	assert.Equal(t, 185.0, cfg.Athlete.MaxHR)
	assert.Equal(t, 90, cfg.Display.Days)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "reading config file"))
}

func TestCreateExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	created, err := CreateExample(path)
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "YOUR_CLIENT_ID", cfg.Strava.ClientID)
	assert.Error(t, cfg.ValidateStrava())
	assert.NoError(t, cfg.Validate())

	// existing files are left alone
	created, err = CreateExample(path)
	require.NoError(t, err)
	assert.False(t, created)
}
