package domain

import "time"

// Task statuses as used by the kanban board.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task represents a board task in the domain layer.
type Task struct {
	ID        string
	ProjectID string
	Title     string
	Status    string
	Deadline  *time.Time
	CreatedAt time.Time
}

// Project groups tasks.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
