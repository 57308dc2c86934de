package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DateLayout is the layout of filter.from and filter.to.
const DateLayout = "2006-01-02"

// Config represents the complete application configuration
type Config struct {
	Inputs   InputsConfig   `mapstructure:"inputs"`
	Wells    WellsConfig    `mapstructure:"wells"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Output   OutputConfig   `mapstructure:"output"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// InputsConfig locates the three input tables. Each entry is a file path or
// an http(s) URL.
type InputsConfig struct {
	Events         string        `mapstructure:"events"`
	WellLocations  string        `mapstructure:"well_locations"`
	WellVolumes    string        `mapstructure:"well_volumes"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// WellsConfig holds the well naming conventions.
type WellsConfig struct {
	LocationPrefix string `mapstructure:"location_prefix"`
	HoleDelimiter  string `mapstructure:"hole_delimiter"`
}

// FilterConfig selects catalogue events.
type FilterConfig struct {
	MinMagnitude *float64 `mapstructure:"min_magnitude"`
	From         string   `mapstructure:"from"`
	To           string   `mapstructure:"to"`
}

// Range parses From and To. Empty bounds come back as the zero time.
func (f FilterConfig) Range() (from, to time.Time, err error) {
	if f.From != "" {
		if from, err = time.Parse(DateLayout, f.From); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("filter.from: %w", err)
		}
	}
	if f.To != "" {
		if to, err = time.Parse(DateLayout, f.To); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("filter.to: %w", err)
		}
	}
	return from, to, nil
}

// AnalysisConfig holds row handling and ranking behaviour.
type AnalysisConfig struct {
	ParsePolicy string `mapstructure:"parse_policy"`
	RankBy      string `mapstructure:"rank_by"`
	TopK        int    `mapstructure:"top_k"`
}

// OutputConfig names the exported files. An empty path skips that export.
type OutputConfig struct {
	WellsPath  string `mapstructure:"wells_path"`
	SeriesPath string `mapstructure:"series_path"`
}

// StorageConfig holds run history configuration. An empty DBPath disables it.
type StorageConfig struct {
	DBPath  string `mapstructure:"db_path"`
	MaxRuns int    `mapstructure:"max_runs"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// Environment variables use the SEISCORR_ prefix with underscores for nesting,
// e.g. SEISCORR_TELEGRAM_BOT_TOKEN.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("SEISCORR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("inputs.events", "./data/events.csv")
	v.SetDefault("inputs.well_locations", "./data/well_locations.csv")
	v.SetDefault("inputs.well_volumes", "./data/well_volumes.csv")
	v.SetDefault("inputs.timeout", "30s")
	v.SetDefault("inputs.max_retries", 3)
	v.SetDefault("inputs.retry_delay_base", "1s")

	v.SetDefault("wells.location_prefix", "PGKYP")
	v.SetDefault("wells.hole_delimiter", "-")

	v.SetDefault("filter.from", "")
	v.SetDefault("filter.to", "")

	v.SetDefault("analysis.parse_policy", "drop")
	v.SetDefault("analysis.rank_by", "signed")
	v.SetDefault("analysis.top_k", 10)

	v.SetDefault("output.wells_path", "./out/wells_final.csv")
	v.SetDefault("output.series_path", "./out/merged_final.csv")

	v.SetDefault("storage.db_path", "")
	v.SetDefault("storage.max_runs", 50)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Inputs.Events == "" {
		return fmt.Errorf("inputs.events is required")
	}
	if c.Inputs.WellLocations == "" {
		return fmt.Errorf("inputs.well_locations is required")
	}
	if c.Inputs.WellVolumes == "" {
		return fmt.Errorf("inputs.well_volumes is required")
	}
	if c.Inputs.Timeout < time.Second {
		return fmt.Errorf("inputs.timeout must be at least 1 second")
	}
	if c.Inputs.MaxRetries < 1 {
		return fmt.Errorf("inputs.max_retries must be at least 1")
	}

	if c.Wells.HoleDelimiter == "" {
		return fmt.Errorf("wells.hole_delimiter is required")
	}

	from, to, err := c.Filter.Range()
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("filter.to must not be before filter.from")
	}

	validPolicies := map[string]bool{"drop": true, "fail": true}
	if !validPolicies[c.Analysis.ParsePolicy] {
		return fmt.Errorf("analysis.parse_policy must be one of: drop, fail")
	}
	validOrders := map[string]bool{"signed": true, "magnitude": true}
	if !validOrders[c.Analysis.RankBy] {
		return fmt.Errorf("analysis.rank_by must be one of: signed, magnitude")
	}
	if c.Analysis.TopK < 1 {
		return fmt.Errorf("analysis.top_k must be at least 1")
	}

	if c.Storage.DBPath != "" && c.Storage.MaxRuns < 1 {
		return fmt.Errorf("storage.max_runs must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
