package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	derrors "multazim/internal/errors"
	"multazim/internal/tracker"
)

// SQLiteStore implements Store on a single SQLite database. One row per
// (user, day, task) cell; Save replaces a user's rows inside a transaction,
// which doubles as the atomic read-modify-write boundary at the storage
// layer.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, derrors.StorageFailed("open", err).WithContext("path", dbPath)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, derrors.StorageFailed("initialize", err).WithContext("path", dbPath)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS completions (
		user_id TEXT NOT NULL,
		day     TEXT NOT NULL,
		task    TEXT NOT NULL,
		done    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, day, task)
	);
	CREATE INDEX IF NOT EXISTS idx_completions_user ON completions(user_id);
	CREATE TABLE IF NOT EXISTS schema_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO schema_meta (key, value) VALUES ('version', ?)",
		fmt.Sprintf("%d", schemaVersion),
	)
	return err
}

// Load assembles the user's history from completion rows. Unknown users get
// an empty history.
func (s *SQLiteStore) Load(ctx context.Context, userID string) (tracker.UserHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT day, task, done FROM completions WHERE user_id = ? ORDER BY day",
		userID,
	)
	if err != nil {
		return nil, derrors.StorageFailed("load", err).WithContext("user_id", userID)
	}
	defer rows.Close()

	history := tracker.UserHistory{}
	for rows.Next() {
		var day, task string
		var done int
		if err := rows.Scan(&day, &task, &done); err != nil {
			return nil, derrors.StorageCorrupt("load", err).WithContext("user_id", userID)
		}
		rec, ok := history[day]
		if !ok {
			rec = tracker.DefaultDay()
			history[day] = rec
		}
		rec[tracker.TaskID(task)] = done != 0
	}
	if err := rows.Err(); err != nil {
		return nil, derrors.StorageFailed("load", err).WithContext("user_id", userID)
	}
	return history, nil
}

// Save replaces the user's rows in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, userID string, history tracker.UserHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return derrors.StorageFailed("save", err).WithContext("user_id", userID)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE user_id = ?", userID); err != nil {
		return derrors.StorageFailed("save", err).WithContext("user_id", userID)
	}
	for day, rec := range history {
		for task, done := range rec {
			d := 0
			if done {
				d = 1
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO completions (user_id, day, task, done) VALUES (?, ?, ?, ?)",
				userID, day, string(task), d,
			); err != nil {
				return derrors.StorageFailed("save", err).WithContext("user_id", userID)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return derrors.StorageFailed("save", err).WithContext("user_id", userID)
	}
	return nil
}

// Users lists distinct user ids with at least one row.
func (s *SQLiteStore) Users(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT user_id FROM completions ORDER BY user_id")
	if err != nil {
		return nil, derrors.StorageFailed("list", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, derrors.StorageFailed("list", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, derrors.StorageFailed("list", err)
	}
	return ids, nil
}

// Snapshot copies the whole database with VACUUM INTO.
func (s *SQLiteStore) Snapshot(ctx context.Context, dir string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", derrors.StorageFailed("snapshot", err).WithContext("dir", dir)
	}
	name := fmt.Sprintf("snapshot-%s-%s.db", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	path := filepath.Join(dir, name)

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", derrors.StorageFailed("snapshot", err).WithContext("path", path)
	}
	return path, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
