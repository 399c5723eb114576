// Package backup runs periodic snapshots of the user store. Retention of
// live tracking data is deliberately not a core concern; this is storage
// lifecycle only.
package backup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	"multazim/internal/config"
	derrors "multazim/internal/errors"
	"multazim/internal/storage"
)

// Runner schedules periodic store snapshots via gocron.
type Runner struct {
	store     storage.Store
	cfg       config.BackupConfig
	scheduler gocron.Scheduler
}

// NewRunner creates a backup runner for the given store.
func NewRunner(store storage.Store, cfg config.BackupConfig) (*Runner, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryRuntime, derrors.SeverityFatal, "failed to create scheduler")
	}
	return &Runner{store: store, cfg: cfg, scheduler: s}, nil
}

// Start registers the snapshot job and begins the scheduler.
func (r *Runner) Start(ctx context.Context) error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.cfg.IntervalDuration()),
		gocron.NewTask(func() { r.RunOnce(ctx) }),
		gocron.WithName("store-snapshot"),
	)
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryRuntime, derrors.SeverityFatal, "failed to schedule snapshot job")
	}

	r.scheduler.Start()
	slog.Info("backup scheduler started", "interval", r.cfg.Interval, "dir", r.cfg.Dir)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (r *Runner) Stop() error {
	return r.scheduler.Shutdown()
}

// RunOnce takes one snapshot and prunes old ones. Failures are logged, not
// propagated; the next tick retries.
func (r *Runner) RunOnce(ctx context.Context) {
	start := time.Now()
	path, err := r.store.Snapshot(ctx, r.cfg.Dir)
	if err != nil {
		slog.Error("store snapshot failed", "error", err)
		return
	}
	slog.Info("store snapshot written", "path", path, "duration", time.Since(start))

	if err := pruneSnapshots(r.cfg.Dir, r.cfg.Keep); err != nil {
		slog.Warn("snapshot pruning failed", "error", err)
	}
}

// pruneSnapshots keeps the newest keep snapshot files and removes the rest.
// Snapshot names embed a UTC timestamp, so lexical order is age order.
func pruneSnapshots(dir string, keep int) error {
	if keep < 1 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "snapshot-") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) <= keep {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
