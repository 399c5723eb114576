package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"multazim/internal/config"
	"multazim/internal/storage"
	"multazim/internal/tracker"
)

func TestRunOnce_WritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	h, _, err := tracker.MarkComplete(tracker.UserHistory{}, "2024-05-01", tracker.TaskQuranPortion)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "42", h))

	r, err := NewRunner(store, config.BackupConfig{Enabled: true, Interval: "24h", Dir: dir, Keep: 3})
	require.NoError(t, err)
	r.RunOnce(ctx)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Name(), "snapshot-")
}

func TestPruneSnapshots_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("snapshot-2024050%dT120000-aaaa.json", i+1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	// Unrelated files are left alone.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))

	require.NoError(t, pruneSnapshots(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{
		"snapshot-20240504T120000-aaaa.json",
		"snapshot-20240505T120000-aaaa.json",
		"notes.txt",
	}, names)
}

func TestPruneSnapshots_NoopBelowLimit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot-20240501T120000-aaaa.json"), []byte("{}"), 0o644))

	require.NoError(t, pruneSnapshots(dir, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRunner_StartStop(t *testing.T) {
	r, err := NewRunner(storage.NewMemoryStore(), config.BackupConfig{Enabled: true, Interval: "1h", Dir: t.TempDir(), Keep: 1})
	require.NoError(t, err)

	require.NoError(t, r.Start(context.Background()))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, r.Stop())
}
