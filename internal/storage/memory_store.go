package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	derrors "multazim/internal/errors"
	"multazim/internal/tracker"
)

// MemoryStore is an in-process Store for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]tracker.UserHistory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[string]tracker.UserHistory{}}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (tracker.UserHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.users[userID]
	if !ok {
		return tracker.UserHistory{}, nil
	}
	return h.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, history tracker.UserHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[userID] = history.Clone()
	return nil
}

func (s *MemoryStore) Users(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Snapshot(_ context.Context, dir string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", derrors.StorageFailed("snapshot", err).WithContext("dir", dir)
	}
	all := make(map[string]userEnvelope, len(s.users))
	for id, h := range s.users {
		all[id] = userEnvelope{Version: schemaVersion, Days: h}
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return "", derrors.StorageFailed("snapshot", err)
	}
	name := fmt.Sprintf("snapshot-%s-%s.json", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", derrors.StorageFailed("snapshot", err).WithContext("path", path)
	}
	return path, nil
}

func (s *MemoryStore) Close() error { return nil }
