package ports

import (
	"context"
	"time"

	"github.com/Marki500/taskery-v2/internal/domain"
)

// TimeEntryStore persists time entries. Implementations must return at most
// one open entry per user from FindOpenEntryForUser; when the backing rows
// violate that, the most recently started one wins.
type TimeEntryStore interface {
	// CreateOpenEntry inserts a new entry with StartedAt set and no end.
	CreateOpenEntry(ctx context.Context, taskID, userID string) (domain.TimeEntry, error)
	// CloseEntry sets EndedAt and Duration on an entry.
	// Returns domain.ErrNotFound if the id is unknown.
	CloseEntry(ctx context.Context, id string, endedAt time.Time, duration int64) error
	// FindOpenEntryForUser returns the user's open entry, or nil if none.
	FindOpenEntryForUser(ctx context.Context, userID string) (*domain.TimeEntry, error)
	// SumDurationsForTask returns the task's accumulated seconds across all
	// closed entries.
	SumDurationsForTask(ctx context.Context, taskID string) (int64, error)
	// SumDurationsSince returns the user's tracked seconds for entries
	// started at or after since.
	SumDurationsSince(ctx context.Context, userID string, since time.Time) (int64, error)
	// InsertClosedEntry inserts an already-closed entry (manual corrections).
	InsertClosedEntry(ctx context.Context, taskID, userID string, startedAt, endedAt time.Time, duration int64) (domain.TimeEntry, error)
	// ListEntriesForTask returns a task's entries, newest first.
	ListEntriesForTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error)
	// ListEntriesForUser returns the user's entries started at or after
	// since, oldest first.
	ListEntriesForUser(ctx context.Context, userID string, since time.Time) ([]domain.TimeEntry, error)
	// UpdateEntryDuration overwrites the duration of a specific entry.
	// Returns domain.ErrNotFound if the id is unknown.
	UpdateEntryDuration(ctx context.Context, id string, duration int64) error
}

// TaskDirectory resolves and manages tasks and projects. The timer engine
// only reads from it; the CLI and HTTP surfaces also create records.
type TaskDirectory interface {
	GetTask(ctx context.Context, id string) (domain.Task, error)
	CreateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}
