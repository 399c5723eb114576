package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"multazim/internal/config"
	"multazim/internal/storage"
)

// logLevel is shared so a config reload can adjust verbosity at runtime.
var logLevel = new(slog.LevelVar)

// Global context passed to subcommands if we need to share global state later.
type Global struct{}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve  ServeCmd  `cmd:"" help:"Run the bot, admin HTTP server, and backup scheduler"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
	Backup BackupCmd `cmd:"" help:"Take a one-shot snapshot of the user store"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	logLevel.Set(slog.LevelInfo)
	if c.Verbose {
		logLevel.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return nil
}

// applyLogging reconfigures slog from the loaded config. The --verbose flag
// wins over the configured level.
func applyLogging(cfg *config.Config, verbose bool) {
	if !verbose {
		switch cfg.Logging.Level {
		case "debug":
			logLevel.Set(slog.LevelDebug)
		case "warn":
			logLevel.Set(slog.LevelWarn)
		case "error":
			logLevel.Set(slog.LevelError)
		default:
			logLevel.Set(slog.LevelInfo)
		}
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore builds the configured storage backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.Storage.SQLitePath)
	default:
		return storage.NewFileStore(cfg.Storage.DataDir)
	}
}
