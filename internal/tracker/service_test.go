package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derrors "multazim/internal/errors"
	"multazim/internal/metrics"
	"multazim/internal/storage"
	"multazim/internal/tracker"
)

var noon = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*tracker.Service, *countingStore) {
	t.Helper()
	store := &countingStore{Store: storage.NewMemoryStore()}
	return tracker.NewService(store, time.UTC, nil), store
}

// countingStore wraps a Store and counts Save calls.
type countingStore struct {
	storage.Store
	mu    sync.Mutex
	saves int
}

func (c *countingStore) Save(ctx context.Context, userID string, h tracker.UserHistory) error {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	return c.Store.Save(ctx, userID, h)
}

func (c *countingStore) saveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func TestService_StatusFirstContact(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.Status(context.Background(), "42", noon)

	require.NoError(t, err)
	require.Equal(t, tracker.DefaultDay(), rec)
}

func TestService_MarkPersists(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Mark(ctx, "42", tracker.TaskQuranPortion, noon)
	require.NoError(t, err)
	require.False(t, result.AlreadyDone)
	require.True(t, result.Record[tracker.TaskQuranPortion])

	rec, err := svc.Status(ctx, "42", noon)
	require.NoError(t, err)
	require.True(t, rec[tracker.TaskQuranPortion])
	require.False(t, rec[tracker.TaskNightPrayer])
}

func TestService_RepeatMarkSkipsSave(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Mark(ctx, "42", tracker.TaskQuranPortion, noon)
	require.NoError(t, err)
	require.Equal(t, 1, store.saveCount())

	result, err := svc.Mark(ctx, "42", tracker.TaskQuranPortion, noon)
	require.NoError(t, err)
	require.True(t, result.AlreadyDone)
	require.Equal(t, 1, store.saveCount(), "already-done mark must not write")
}

func TestService_InvalidTaskDoesNotWrite(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Mark(context.Background(), "42", tracker.TaskID("nope"), noon)

	require.True(t, derrors.IsCategory(err, derrors.CategoryValidation))
	require.Equal(t, 0, store.saveCount())
}

// captureRecorder records the task labels passed to IncMark.
type captureRecorder struct {
	metrics.NoopRecorder
	mu    sync.Mutex
	tasks []string
}

func (c *captureRecorder) IncMark(task string, _ metrics.MarkResult) {
	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	c.mu.Unlock()
}

func TestService_InvalidTaskUsesConstantMetricLabel(t *testing.T) {
	rec := &captureRecorder{}
	svc := tracker.NewService(storage.NewMemoryStore(), time.UTC, rec)
	ctx := context.Background()

	// Ids straight from callback payloads; none may become a label value.
	for _, id := range []string{"nope", "x'; DROP", "💣", ""} {
		_, err := svc.Mark(ctx, "42", tracker.TaskID(id), noon)
		require.Error(t, err)
	}

	require.Equal(t, []string{
		metrics.TaskUnknown, metrics.TaskUnknown, metrics.TaskUnknown, metrics.TaskUnknown,
	}, rec.tasks)
}

func TestService_MarksAreScopedPerUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Mark(ctx, "alice", tracker.TaskNightPrayer, noon)
	require.NoError(t, err)

	rec, err := svc.Status(ctx, "bob", noon)
	require.NoError(t, err)
	require.Equal(t, tracker.DefaultDay(), rec)
}

func TestService_ConcurrentMarksSameUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Every task marked multiple times from concurrent goroutines; the
	// per-user serialization must not lose any completion.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for _, task := range tracker.AllTasks() {
			wg.Add(1)
			go func(task tracker.TaskID) {
				defer wg.Done()
				_, err := svc.Mark(ctx, "42", task, noon)
				require.NoError(t, err)
			}(task)
		}
	}
	wg.Wait()

	rec, err := svc.Status(ctx, "42", noon)
	require.NoError(t, err)
	for _, task := range tracker.AllTasks() {
		require.True(t, rec[task], "task %s lost in concurrent marking", task)
	}
}

func TestService_WeekWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Mark(ctx, "42", tracker.TaskMorningRemembrance, noon)
	require.NoError(t, err)

	window, err := svc.Week(ctx, "42", noon, tracker.DefaultWindowDays)
	require.NoError(t, err)
	require.Len(t, window, 7)
	require.Equal(t, "2024-05-01", window[6].Date)
	require.True(t, window[6].Record[tracker.TaskMorningRemembrance])
}

// failingStore returns a storage error on every operation.
type failingStore struct {
	storage.Store
}

func (failingStore) Load(context.Context, string) (tracker.UserHistory, error) {
	return nil, derrors.StorageFailed("load", errors.New("disk on fire"))
}

func TestService_StorageErrorPropagates(t *testing.T) {
	svc := tracker.NewService(failingStore{}, time.UTC, nil)

	_, err := svc.Status(context.Background(), "42", noon)
	require.True(t, derrors.IsCategory(err, derrors.CategoryStorage),
		"a storage failure must never read as an empty history")

	_, err = svc.Mark(context.Background(), "42", tracker.TaskQuranPortion, noon)
	require.True(t, derrors.IsCategory(err, derrors.CategoryStorage))
}
