package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"multazim/internal/backup"
	"multazim/internal/bot"
	"multazim/internal/config"
	"multazim/internal/metrics"
	"multazim/internal/server"
	"multazim/internal/tracker"
	"multazim/internal/watcher"
)

// userGaugeInterval is how often the known-users gauge is refreshed.
const userGaugeInterval = 5 * time.Minute

// ServeCmd implements the 'serve' command.
type ServeCmd struct{}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()

	var registry *prom.Registry
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.HTTP.Enabled {
		registry = prom.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	service := tracker.NewService(store, cfg.Location(), recorder)
	service.RefreshUserGauge(ctx)

	texts := bot.TextsFromConfig(cfg.Texts)
	b, err := bot.New(cfg.Bot, texts, service)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	slog.Info("authenticated with telegram", "username", b.Username())

	// Admin HTTP surface (health, metrics, read-only API).
	if cfg.HTTP.Enabled {
		adminSrv := server.New(cfg.HTTP.Addr, service, registry)
		go func() {
			slog.Info("admin server listening", "addr", cfg.HTTP.Addr)
			if err := adminSrv.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("admin server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := adminSrv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("admin server shutdown failed", "error", err)
			}
		}()
	}

	// Periodic store snapshots.
	if cfg.Backup.Enabled {
		runner, err := backup.NewRunner(store, cfg.Backup)
		if err != nil {
			return fmt.Errorf("create backup runner: %w", err)
		}
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start backup runner: %w", err)
		}
		defer func() {
			if err := runner.Stop(); err != nil {
				slog.Warn("backup scheduler shutdown failed", "error", err)
			}
		}()
	}

	// Hot-reload texts and log level on config file changes.
	cw, err := watcher.New(root.Config, func() {
		reloaded, err := config.Load(root.Config)
		if err != nil {
			slog.Error("config reload failed, keeping previous configuration", "error", err)
			return
		}
		applyLogging(reloaded, root.Verbose)
		b.SetTexts(bot.TextsFromConfig(reloaded.Texts))
		slog.Info("configuration reloaded")
	})
	if err != nil {
		slog.Warn("config watcher unavailable", "error", err)
	} else {
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config watcher failed to start", "error", err)
		} else {
			defer cw.Stop()
		}
	}

	go func() {
		ticker := time.NewTicker(userGaugeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				service.RefreshUserGauge(ctx)
			}
		}
	}()

	// Run the bot until shutdown.
	errChan := make(chan error, 1)
	go func() {
		errChan <- b.Run(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("bot error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping")
	}
	return nil
}
