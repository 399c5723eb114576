package tracker

import (
	"time"

	derrors "multazim/internal/errors"
)

// StatusOn resolves the day record for date without mutating history. Absent
// dates read as a default day; the returned record is always a copy, so the
// caller may mutate it freely.
func StatusOn(history UserHistory, date string) DayRecord {
	if day, ok := history[date]; ok {
		d := day.Clone()
		// Older records may predate a task being added to the set.
		for _, t := range allTasks {
			if _, ok := d[t]; !ok {
				d[t] = false
			}
		}
		return d
	}
	return DefaultDay()
}

// MarkComplete records completion of task on date. It is idempotent: marking
// an already-complete task returns the history unchanged with
// alreadyDone=true, so callers can acknowledge repeats differently from
// fresh completions. An unrecognized task id returns a validation error and
// the history untouched.
func MarkComplete(history UserHistory, date string, task TaskID) (UserHistory, bool, error) {
	if !task.Valid() {
		return history, false, derrors.InvalidTask(string(task))
	}

	day := StatusOn(history, date)
	if day[task] {
		return history, true, nil
	}

	day[task] = true
	if history == nil {
		history = UserHistory{}
	}
	history[date] = day
	return history, false, nil
}

// WindowEntry is one day of a rendered history window.
type WindowEntry struct {
	Date    string
	Weekday time.Weekday
	Record  DayRecord
}

// Window derives a contiguous run of size days ending at today, oldest
// first. Days absent from history are filled with default records. The
// result is deterministic given today and history; history is not mutated.
func Window(history UserHistory, today time.Time, loc *time.Location, size int) []WindowEntry {
	if loc == nil {
		loc = time.Local
	}
	if size < 1 {
		size = 1
	}

	today = today.In(loc)
	out := make([]WindowEntry, 0, size)
	for i := size - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(dateLayout)
		out = append(out, WindowEntry{
			Date:    key,
			Weekday: day.Weekday(),
			Record:  StatusOn(history, key),
		})
	}
	return out
}
