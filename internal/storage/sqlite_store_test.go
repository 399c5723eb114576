package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"multazim/internal/tracker"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_LoadUnknownUser(t *testing.T) {
	store := newTestSQLiteStore(t)

	h, err := store.Load(context.Background(), "99")

	require.NoError(t, err)
	require.Empty(t, h)
}

func TestSQLiteStore_SaveLoadRoundtrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	h := markedHistory(t)

	require.NoError(t, store.Save(ctx, "42", h))

	loaded, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, h, loaded)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "42", markedHistory(t)))

	smaller := tracker.UserHistory{"2024-05-02": tracker.DefaultDay()}
	require.NoError(t, store.Save(ctx, "42", smaller))

	loaded, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, smaller, loaded)
}

func TestSQLiteStore_UsersAreIsolated(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", markedHistory(t)))

	h, err := store.Load(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, h)

	ids, err := store.Users(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, ids)
}

func TestSQLiteStore_Snapshot(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "42", markedHistory(t)))

	path, err := store.Snapshot(ctx, t.TempDir())
	require.NoError(t, err)
	require.FileExists(t, path)

	// The snapshot must itself be a readable store with the same content.
	snap, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer snap.Close()

	loaded, err := snap.Load(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, markedHistory(t), loaded)
}
