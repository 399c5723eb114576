// Package watcher monitors the configuration file and triggers debounced
// reloads so text overrides and log level changes apply without a restart.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	derrors "multazim/internal/errors"
)

// ConfigWatcher monitors configuration file changes and triggers reloads.
type ConfigWatcher struct {
	configPath   string
	onReload     func()
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	reloadChan   chan struct{}
	debounceTime time.Duration
}

// New creates a configuration file watcher. onReload is invoked (debounced)
// after every write to the config file.
func New(configPath string, onReload func()) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryRuntime, derrors.SeverityError, "failed to create file watcher")
	}

	// Resolve absolute path for consistent watching
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		_ = watcher.Close()
		return nil, derrors.Wrap(err, derrors.CategoryRuntime, derrors.SeverityError, "failed to resolve config path")
	}

	return &ConfigWatcher{
		configPath:   absPath,
		onReload:     onReload,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: 2 * time.Second, // Debounce rapid file changes
	}, nil
}

// Start begins monitoring the configuration file.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	// Watch the directory containing the config file; editors replace files
	// on save, which drops watches on the file itself.
	configDir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(configDir); err != nil {
		return derrors.Wrap(err, derrors.CategoryRuntime, derrors.SeverityError, "failed to watch config directory").
			WithContext("dir", configDir)
	}

	slog.Info("watching configuration file", "path", cw.configPath)

	go cw.watchLoop(ctx)
	go cw.reloadLoop(ctx)
	return nil
}

// Stop stops the configuration watcher.
func (cw *ConfigWatcher) Stop() {
	close(cw.stopChan)
	if err := cw.watcher.Close(); err != nil {
		slog.Error("error closing file watcher", "error", err)
	}
}

func (cw *ConfigWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != cw.configPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Coalesce; reloadLoop debounces.
			select {
			case cw.reloadChan <- struct{}{}:
			default:
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}

func (cw *ConfigWatcher) reloadLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case <-cw.reloadChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(cw.debounceTime)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			slog.Info("configuration file changed, reloading")
			cw.onReload()
		}
	}
}
