package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
inputs:
  events: "./data/events.csv"
  well_locations: "./data/well_locations.csv"
  well_volumes: "https://example.com/well_volumes.csv"
  timeout: 10s

filter:
  min_magnitude: 0.5
  from: "2013-01-01"
  to: "2013-12-31"

analysis:
  parse_policy: fail
  rank_by: magnitude
  top_k: 5

telegram:
  bot_token: "test_token"
  chat_id: "12345"
  enabled: true

logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Inputs.WellVolumes != "https://example.com/well_volumes.csv" {
		t.Errorf("Unexpected volumes input: %s", cfg.Inputs.WellVolumes)
	}
	if cfg.Inputs.Timeout != 10*time.Second {
		t.Errorf("Unexpected timeout: %v", cfg.Inputs.Timeout)
	}
	if cfg.Filter.MinMagnitude == nil || *cfg.Filter.MinMagnitude != 0.5 {
		t.Errorf("Unexpected min magnitude: %v", cfg.Filter.MinMagnitude)
	}
	if cfg.Analysis.ParsePolicy != "fail" || cfg.Analysis.RankBy != "magnitude" || cfg.Analysis.TopK != 5 {
		t.Errorf("Unexpected analysis config: %+v", cfg.Analysis)
	}

	// Defaults fill what the file leaves out.
	if cfg.Wells.LocationPrefix != "PGKYP" || cfg.Wells.HoleDelimiter != "-" {
		t.Errorf("Unexpected wells defaults: %+v", cfg.Wells)
	}
	if cfg.Inputs.MaxRetries != 3 {
		t.Errorf("Unexpected max retries: %d", cfg.Inputs.MaxRetries)
	}
	if cfg.Output.WellsPath != "./out/wells_final.csv" {
		t.Errorf("Unexpected wells path: %s", cfg.Output.WellsPath)
	}

	from, to, err := cfg.Filter.Range()
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if !from.Equal(time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)) || !to.Equal(time.Date(2013, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected range: %v - %v", from, to)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Filter.MinMagnitude != nil {
		t.Errorf("min magnitude should be unset, got %v", *cfg.Filter.MinMagnitude)
	}
	if cfg.Storage.DBPath != "" || cfg.Telegram.Enabled {
		t.Errorf("optional side effects should be off: %+v %+v", cfg.Storage, cfg.Telegram)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SEISCORR_ANALYSIS_TOP_K", "3")
	t.Setenv("SEISCORR_INPUTS_EVENTS", "/srv/catalogue.csv")

	cfg, err := Load(writeConfig(t, "analysis:\n  top_k: 10\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.TopK != 3 {
		t.Errorf("top_k = %d, want 3 from environment", cfg.Analysis.TopK)
	}
	if cfg.Inputs.Events != "/srv/catalogue.csv" {
		t.Errorf("events = %s, want environment value", cfg.Inputs.Events)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/seiscorr.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func validConfig() *Config {
	return &Config{
		Inputs: InputsConfig{
			Events:        "events.csv",
			WellLocations: "wells.csv",
			WellVolumes:   "volumes.csv",
			Timeout:       30 * time.Second,
			MaxRetries:    3,
		},
		Wells:    WellsConfig{LocationPrefix: "PGKYP", HoleDelimiter: "-"},
		Analysis: AnalysisConfig{ParsePolicy: "drop", RankBy: "signed", TopK: 10},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing events", func(c *Config) { c.Inputs.Events = "" }, "inputs.events"},
		{"short timeout", func(c *Config) { c.Inputs.Timeout = time.Millisecond }, "inputs.timeout"},
		{"empty delimiter", func(c *Config) { c.Wells.HoleDelimiter = "" }, "wells.hole_delimiter"},
		{"bad from date", func(c *Config) { c.Filter.From = "01/02/2013" }, "filter.from"},
		{"inverted range", func(c *Config) { c.Filter.From, c.Filter.To = "2013-12-31", "2013-01-01" }, "filter.to"},
		{"unknown policy", func(c *Config) { c.Analysis.ParsePolicy = "ignore" }, "analysis.parse_policy"},
		{"unknown order", func(c *Config) { c.Analysis.RankBy = "abs" }, "analysis.rank_by"},
		{"zero top k", func(c *Config) { c.Analysis.TopK = 0 }, "analysis.top_k"},
		{"storage without max runs", func(c *Config) { c.Storage.DBPath = "runs.db" }, "storage.max_runs"},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true }, "telegram.bot_token"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
