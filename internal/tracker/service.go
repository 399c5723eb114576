package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"multazim/internal/metrics"
)

// Store is the persistence contract the Service depends on. It is declared
// here, consumer-side, because internal/storage imports this package for the
// record types; importing storage back would be a cycle. Every storage
// backend satisfies it implicitly.
type Store interface {
	Load(ctx context.Context, userID string) (UserHistory, error)
	Save(ctx context.Context, userID string, history UserHistory) error

	// Users lists all user ids with persisted state.
	Users(ctx context.Context) ([]string, error)

	// Snapshot writes a self-contained backup of the whole store into dir
	// and returns the path of the written file.
	Snapshot(ctx context.Context, dir string) (string, error)

	Close() error
}

// DefaultWindowDays is the window size used by the weekly view.
const DefaultWindowDays = 7

// MarkResult is the outcome of a Mark call.
type MarkResult struct {
	Record      DayRecord
	AlreadyDone bool
}

// Service binds the pure day-tracking logic to a storage backend. It is the
// single entry point for the delivery layers: each operation runs a
// Load→transform→Save cycle, serialized per user id so concurrent events for
// the same user cannot lose updates. Operations for different users do not
// block each other.
type Service struct {
	store    Store
	loc      *time.Location
	recorder metrics.Recorder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService constructs a Service. A nil recorder disables metrics; a nil
// location falls back to the process-local timezone.
func NewService(store Store, loc *time.Location, recorder metrics.Recorder) *Service {
	if loc == nil {
		loc = time.Local
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Service{
		store:    store,
		loc:      loc,
		recorder: recorder,
		locks:    map[string]*sync.Mutex{},
	}
}

// Location returns the timezone used for date-key derivation.
func (s *Service) Location() *time.Location { return s.loc }

// userLock returns the mutex serializing Load+Save cycles for userID.
// Lock entries are small and never deleted; the user population of a single
// bot instance stays far below anything that would matter.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Status returns today's record for userID, default-filled for a day with no
// activity.
func (s *Service) Status(ctx context.Context, userID string, now time.Time) (DayRecord, error) {
	start := time.Now()
	defer func() { s.recorder.ObserveOpDuration("status", time.Since(start)) }()
	s.recorder.IncQuery("status")

	history, err := s.store.Load(ctx, userID)
	if err != nil {
		s.recorder.IncStorageError("load")
		return nil, err
	}
	return StatusOn(history, DateKey(now, s.loc)), nil
}

// Mark records completion of task for userID on the day derived from now.
// Repeated marks of a complete task are reported via AlreadyDone and do not
// touch storage.
func (s *Service) Mark(ctx context.Context, userID string, task TaskID, now time.Time) (MarkResult, error) {
	start := time.Now()
	defer func() { s.recorder.ObserveOpDuration("mark", time.Since(start)) }()

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.store.Load(ctx, userID)
	if err != nil {
		s.recorder.IncStorageError("load")
		return MarkResult{}, err
	}

	date := DateKey(now, s.loc)
	updated, alreadyDone, err := MarkComplete(history, date, task)
	if err != nil {
		// The rejected id is raw callback data; labeling with it would let
		// arbitrary payloads mint unbounded metric series.
		s.recorder.IncMark(metrics.TaskUnknown, metrics.MarkInvalid)
		return MarkResult{}, err
	}

	if alreadyDone {
		s.recorder.IncMark(string(task), metrics.MarkAlreadyDone)
		return MarkResult{Record: StatusOn(updated, date), AlreadyDone: true}, nil
	}

	if err := s.store.Save(ctx, userID, updated); err != nil {
		s.recorder.IncStorageError("save")
		return MarkResult{}, err
	}

	s.recorder.IncMark(string(task), metrics.MarkDone)
	slog.Debug("task marked complete", "user_id", userID, "task", task, "date", date)
	return MarkResult{Record: StatusOn(updated, date), AlreadyDone: false}, nil
}

// Week returns the trailing size-day window ending today, oldest first.
func (s *Service) Week(ctx context.Context, userID string, now time.Time, size int) ([]WindowEntry, error) {
	start := time.Now()
	defer func() { s.recorder.ObserveOpDuration("week", time.Since(start)) }()
	s.recorder.IncQuery("week")

	if size < 1 {
		size = DefaultWindowDays
	}
	history, err := s.store.Load(ctx, userID)
	if err != nil {
		s.recorder.IncStorageError("load")
		return nil, err
	}
	return Window(history, now, s.loc, size), nil
}

// RefreshUserGauge updates the known-users gauge from storage. Called
// opportunistically by the maintenance loop.
func (s *Service) RefreshUserGauge(ctx context.Context) {
	ids, err := s.store.Users(ctx)
	if err != nil {
		slog.Warn("failed to count users for metrics", "error", err)
		return
	}
	s.recorder.SetKnownUsers(len(ids))
}
