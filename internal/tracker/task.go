// Package tracker implements the daily devotional-task state model: the
// closed task set, per-day completion records, the pure transition/query
// logic over a user's history, and the Service facade that binds the logic
// to a storage backend.
package tracker

// TaskID identifies one of the four tracked devotional tasks.
type TaskID string

const (
	TaskMorningRemembrance TaskID = "morning_remembrance"
	TaskQuranPortion       TaskID = "quran_portion"
	TaskEveningRemembrance TaskID = "evening_remembrance"
	TaskNightPrayer        TaskID = "night_prayer"
)

// allTasks is the closed task set in display order.
var allTasks = []TaskID{
	TaskMorningRemembrance,
	TaskQuranPortion,
	TaskEveningRemembrance,
	TaskNightPrayer,
}

// AllTasks returns the closed task set in display order. The returned slice
// is a copy; callers may reorder it freely.
func AllTasks() []TaskID {
	out := make([]TaskID, len(allTasks))
	copy(out, allTasks)
	return out
}

// Valid reports whether t belongs to the closed task set.
func (t TaskID) Valid() bool {
	for _, known := range allTasks {
		if t == known {
			return true
		}
	}
	return false
}
