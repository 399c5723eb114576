// Package metrics defines observability hooks for tracker operations.
package metrics

import "time"

// MarkResult enumerates mark outcomes for counters.
type MarkResult string

const (
	MarkDone        MarkResult = "done"
	MarkAlreadyDone MarkResult = "already_done"
	MarkInvalid     MarkResult = "invalid"
)

// TaskUnknown is the task label for marks rejected as out-of-set. Rejected
// ids must never become label values themselves; they are unbounded input.
const TaskUnknown = "unknown"

// Recorder defines observability hooks for tracker and storage operations.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on the NoopRecorder (allowing optional injection).
type Recorder interface {
	IncMark(task string, result MarkResult)
	IncQuery(kind string) // kind: status|week
	IncStorageError(op string)
	ObserveOpDuration(op string, d time.Duration)
	SetKnownUsers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncMark(string, MarkResult)              {}
func (NoopRecorder) IncQuery(string)                         {}
func (NoopRecorder) IncStorageError(string)                  {}
func (NoopRecorder) ObserveOpDuration(string, time.Duration) {}
func (NoopRecorder) SetKnownUsers(int)                       {}
