// Package config loads and validates the application configuration from a
// YAML file, with environment variable expansion and optional .env loading.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "multazim/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Bot      BotConfig     `yaml:"bot"`
	Storage  StorageConfig `yaml:"storage"`
	Timezone string        `yaml:"timezone,omitempty"`
	HTTP     HTTPConfig    `yaml:"http"`
	Backup   BackupConfig  `yaml:"backup"`
	Logging  LoggingConfig `yaml:"logging"`
	Texts    TextsConfig   `yaml:"texts,omitempty"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token       string `yaml:"token"`
	PollTimeout int    `yaml:"poll_timeout_seconds,omitempty"`
	Debug       bool   `yaml:"debug,omitempty"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend    string `yaml:"backend"` // "file" or "sqlite"
	DataDir    string `yaml:"data_dir,omitempty"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// HTTPConfig configures the admin/metrics HTTP surface.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr,omitempty"`
}

// BackupConfig configures periodic store snapshots. Interval is a Go
// duration string ("24h", "90m").
type BackupConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval,omitempty"`
	Dir      string `yaml:"dir,omitempty"`
	Keep     int    `yaml:"keep,omitempty"` // snapshots retained, oldest pruned
}

// IntervalDuration returns the parsed snapshot interval. Call only after
// Validate; an unparseable value falls back to 24h.
func (b BackupConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(b.Interval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug|info|warn|error
	Format string `yaml:"format,omitempty"` // text|json
}

// TextsConfig overrides the built-in user-facing texts. Empty fields keep
// the defaults; celebrations and labels are keyed by task id.
type TextsConfig struct {
	Welcome        string            `yaml:"welcome,omitempty"`
	AlreadyDone    string            `yaml:"already_done,omitempty"`
	StorageFailure string            `yaml:"storage_failure,omitempty"`
	Celebrations   map[string]string `yaml:"celebrations,omitempty"`
	TaskLabels     map[string]string `yaml:"task_labels,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env/.env.local if present; process env always wins.
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, derrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to unmarshal config").
			WithContext("path", configPath)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Bot.PollTimeout == 0 {
		c.Bot.PollTimeout = 30
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = c.Storage.DataDir + "/multazim.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8090"
	}
	if c.Backup.Interval == "" {
		c.Backup.Interval = "24h"
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = c.Storage.DataDir + "/backups"
	}
	if c.Backup.Keep == 0 {
		c.Backup.Keep = 14
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for fatal problems.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return derrors.ConfigRequired("bot.token")
	}
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return derrors.ValidationFailed("storage.backend",
			fmt.Sprintf("unknown backend %q (expected file or sqlite)", c.Storage.Backend))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return derrors.ValidationFailed("logging.level",
			fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return derrors.ValidationFailed("logging.format",
			fmt.Sprintf("unknown format %q", c.Logging.Format))
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return derrors.ValidationFailed("timezone", err.Error())
		}
	}
	if d, err := time.ParseDuration(c.Backup.Interval); err != nil {
		return derrors.ValidationFailed("backup.interval", err.Error())
	} else if c.Backup.Enabled && d < time.Minute {
		return derrors.ValidationFailed("backup.interval", "must be at least 1m")
	}
	return nil
}

// Location resolves the configured timezone, falling back to process-local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
