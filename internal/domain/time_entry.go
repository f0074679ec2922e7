package domain

import "time"

// TimeEntry represents a single tracked interval against a task.
// EndedAt and Duration are nil while the entry is open (still running).
type TimeEntry struct {
	ID        string
	TaskID    string
	UserID    string
	StartedAt time.Time
	EndedAt   *time.Time
	Duration  *int64 // seconds; negative only for manual corrections
}

// Open reports whether the entry has not been closed yet.
func (e TimeEntry) Open() bool { return e.EndedAt == nil }
