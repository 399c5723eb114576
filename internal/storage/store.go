// Package storage owns the durable per-user history records. It exposes a
// Store interface so the persistence medium (per-user JSON files, SQLite) is
// swappable without touching the tracking logic.
package storage

import (
	"context"

	"multazim/internal/tracker"
)

// schemaVersion tags persisted records so the task set can evolve safely.
const schemaVersion = 1

// Store is the persistence contract for per-user histories.
//
// Load returns an empty history (not an error) for a user with no prior
// Save; first contact is the normal case. A corrupt existing record is a
// storage-category error, never silently treated as empty. Save fully
// replaces the persisted history for the user.
type Store interface {
	Load(ctx context.Context, userID string) (tracker.UserHistory, error)
	Save(ctx context.Context, userID string, history tracker.UserHistory) error

	// Users lists all user ids with persisted state.
	Users(ctx context.Context) ([]string, error)

	// Snapshot writes a self-contained backup of the whole store into dir
	// and returns the path of the written file.
	Snapshot(ctx context.Context, dir string) (string, error)

	Close() error
}

// userEnvelope is the versioned persisted form of one user's history.
type userEnvelope struct {
	Version int                 `json:"version"`
	Days    tracker.UserHistory `json:"days"`
}
