package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"multazim/internal/tracker"
)

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "42", markedHistory(t)))

	first, err := store.Load(ctx, "42")
	require.NoError(t, err)
	first["2024-05-01"][tracker.TaskNightPrayer] = true

	second, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.False(t, second["2024-05-01"][tracker.TaskNightPrayer],
		"mutating a loaded history must not affect the stored one")
}

func TestMemoryStore_Users(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ids, err := store.Users(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, store.Save(ctx, "b", tracker.UserHistory{}))
	require.NoError(t, store.Save(ctx, "a", tracker.UserHistory{}))

	ids, err = store.Users(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)
}
