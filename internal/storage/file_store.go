package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	derrors "multazim/internal/errors"
	"multazim/internal/tracker"
)

const userFilePrefix = "user_"

// FileStore keeps one JSON file per user under a data directory, the same
// layout the original deployment used (user_<id>.json). Writes go through a
// temp file and rename so a crash mid-write cannot corrupt a record.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates the data directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, derrors.StorageFailed("mkdir", err).WithContext("dir", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) userPath(userID string) string {
	return filepath.Join(s.dir, userFilePrefix+sanitizeID(userID)+".json")
}

// sanitizeID keeps user ids filesystem-safe. Telegram ids are numeric, but
// the store accepts opaque strings.
func sanitizeID(userID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, userID)
}

// Load reads the persisted history for userID, or an empty history when the
// user has never been saved.
func (s *FileStore) Load(_ context.Context, userID string) (tracker.UserHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := os.ReadFile(s.userPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return tracker.UserHistory{}, nil
		}
		return nil, derrors.StorageFailed("load", err).WithContext("user_id", userID)
	}

	var env userEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, derrors.StorageCorrupt("load", err).WithContext("user_id", userID)
	}
	if env.Days == nil {
		env.Days = tracker.UserHistory{}
	}
	return env.Days, nil
}

// Save atomically replaces the persisted history for userID.
func (s *FileStore) Save(_ context.Context, userID string, history tracker.UserHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := userEnvelope{Version: schemaVersion, Days: history}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return derrors.StorageFailed("save", err).WithContext("user_id", userID)
	}

	path := s.userPath(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return derrors.StorageFailed("save", err).WithContext("user_id", userID)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return derrors.StorageFailed("save", err).WithContext("user_id", userID)
	}
	return nil
}

// Users lists the ids found in the data directory.
func (s *FileStore) Users(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, derrors.StorageFailed("list", err).WithContext("dir", s.dir)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, userFilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, userFilePrefix), ".json"))
	}
	return ids, nil
}

// Snapshot writes every user record into a single timestamped JSON file.
func (s *FileStore) Snapshot(ctx context.Context, dir string) (string, error) {
	ids, err := s.Users(ctx)
	if err != nil {
		return "", err
	}

	all := make(map[string]userEnvelope, len(ids))
	for _, id := range ids {
		h, err := s.Load(ctx, id)
		if err != nil {
			return "", err
		}
		all[id] = userEnvelope{Version: schemaVersion, Days: h}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", derrors.StorageFailed("snapshot", err).WithContext("dir", dir)
	}
	name := fmt.Sprintf("snapshot-%s-%s.json", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	path := filepath.Join(dir, name)

	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return "", derrors.StorageFailed("snapshot", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", derrors.StorageFailed("snapshot", err).WithContext("path", path)
	}
	return path, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }
