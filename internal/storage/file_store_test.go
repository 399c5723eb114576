package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	derrors "multazim/internal/errors"
	"multazim/internal/tracker"
)

func markedHistory(t *testing.T) tracker.UserHistory {
	t.Helper()
	h := tracker.UserHistory{}
	h, _, err := tracker.MarkComplete(h, "2024-05-01", tracker.TaskQuranPortion)
	require.NoError(t, err)
	h, _, err = tracker.MarkComplete(h, "2024-04-29", tracker.TaskNightPrayer)
	require.NoError(t, err)
	return h
}

func TestFileStore_LoadUnknownUser(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	h, err := store.Load(context.Background(), "99")

	require.NoError(t, err, "first contact is not an error")
	require.Empty(t, h)
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	h := markedHistory(t)

	require.NoError(t, store.Save(ctx, "42", h))

	loaded, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, h, loaded)
}

func TestFileStore_SaveReplaces(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "42", markedHistory(t)))

	smaller := tracker.UserHistory{"2024-05-02": tracker.DefaultDay()}
	require.NoError(t, store.Save(ctx, "42", smaller))

	loaded, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, smaller, loaded)
}

func TestFileStore_CorruptRecordIsError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_42.json"), []byte("{not json"), 0o644))

	_, err = store.Load(context.Background(), "42")
	require.Error(t, err)
	require.True(t, derrors.IsCategory(err, derrors.CategoryStorage),
		"corrupt data must surface as a storage error, not an empty history")
}

func TestFileStore_Users(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "1", markedHistory(t)))
	require.NoError(t, store.Save(ctx, "2", markedHistory(t)))

	ids, err := store.Users(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestFileStore_Snapshot(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "42", markedHistory(t)))

	snapDir := t.TempDir()
	path, err := store.Snapshot(ctx, snapDir)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, snapDir, filepath.Dir(path))
}

func TestSanitizeID(t *testing.T) {
	require.Equal(t, "12345", sanitizeID("12345"))
	require.Equal(t, "a_b_c", sanitizeID("a/b\\c"))
	require.Equal(t, "__", sanitizeID(".."))
}
