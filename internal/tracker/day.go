package tracker

import "time"

// dateLayout is the calendar-day key format used throughout persistence.
const dateLayout = "2006-01-02"

// DayRecord maps every TaskID in the closed set to its completion state for
// one calendar day. A well-formed record always carries all four keys.
type DayRecord map[TaskID]bool

// UserHistory maps ISO date keys (YYYY-MM-DD) to day records. Keys are
// sparse: a date with no recorded activity has no entry and reads as a
// default day.
type UserHistory map[string]DayRecord

// DefaultDay returns a fresh record with all tasks incomplete.
func DefaultDay() DayRecord {
	d := make(DayRecord, len(allTasks))
	for _, t := range allTasks {
		d[t] = false
	}
	return d
}

// Clone returns a deep copy of the record.
func (d DayRecord) Clone() DayRecord {
	out := make(DayRecord, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Done reports whether every task in the record is complete.
func (d DayRecord) Done() bool {
	for _, t := range allTasks {
		if !d[t] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the history.
func (h UserHistory) Clone() UserHistory {
	out := make(UserHistory, len(h))
	for date, day := range h {
		out[date] = day.Clone()
	}
	return out
}

// DateKey derives the calendar-day key for t in the given location.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key back into a midnight time in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateLayout, key, loc)
}
