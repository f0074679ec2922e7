package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Marki500/taskery-v2/internal/domain"
	"github.com/Marki500/taskery-v2/internal/usecase"
)

// memStore is a minimal in-memory store for report aggregation tests.
type memStore struct {
	entries []domain.TimeEntry
	tasks   []domain.Task
}

func (m *memStore) CreateOpenEntry(ctx context.Context, taskID, userID string) (domain.TimeEntry, error) {
	return domain.TimeEntry{}, nil
}

func (m *memStore) CloseEntry(ctx context.Context, id string, endedAt time.Time, duration int64) error {
	return nil
}

func (m *memStore) FindOpenEntryForUser(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	return nil, nil
}

func (m *memStore) SumDurationsForTask(ctx context.Context, taskID string) (int64, error) {
	var total int64
	for _, e := range m.entries {
		if e.TaskID == taskID && e.Duration != nil {
			total += *e.Duration
		}
	}
	return total, nil
}

func (m *memStore) SumDurationsSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var total int64
	for _, e := range m.entries {
		if e.UserID == userID && e.Duration != nil && !e.StartedAt.Before(since) {
			total += *e.Duration
		}
	}
	return total, nil
}

func (m *memStore) InsertClosedEntry(ctx context.Context, taskID, userID string, startedAt, endedAt time.Time, duration int64) (domain.TimeEntry, error) {
	return domain.TimeEntry{}, nil
}

func (m *memStore) ListEntriesForTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	return nil, nil
}

func (m *memStore) ListEntriesForUser(ctx context.Context, userID string, since time.Time) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for _, e := range m.entries {
		if e.UserID == userID && !e.StartedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) UpdateEntryDuration(ctx context.Context, id string, duration int64) error {
	return nil
}

func (m *memStore) GetTask(ctx context.Context, id string) (domain.Task, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, domain.ErrNotFound
}

func (m *memStore) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *memStore) ListTasks(ctx context.Context) ([]domain.Task, error) { return m.tasks, nil }

func (m *memStore) GetProject(ctx context.Context, id string) (domain.Project, error) {
	return domain.Project{}, domain.ErrNotFound
}

func (m *memStore) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	return p, nil
}

func (m *memStore) ListProjects(ctx context.Context) ([]domain.Project, error) { return nil, nil }

func closedEntry(taskID string, startedAt time.Time, duration int64) domain.TimeEntry {
	ended := startedAt.Add(time.Duration(duration) * time.Second)
	return domain.TimeEntry{
		ID: taskID + startedAt.Format(time.RFC3339), TaskID: taskID, UserID: "user-1",
		StartedAt: startedAt, EndedAt: &ended, Duration: &duration,
	}
}

func newReportUC(store *memStore) *usecase.ReportUseCase {
	return &usecase.ReportUseCase{
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Entries: store,
		Tasks:   store,
	}
}

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "wednesday",
			in:   time.Date(2025, 8, 6, 15, 30, 0, 0, time.UTC),
			want: time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday stays",
			in:   time.Date(2025, 8, 4, 0, 0, 1, 0, time.UTC),
			want: time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday rolls back six days",
			in:   time.Date(2025, 8, 10, 23, 59, 0, 0, time.UTC),
			want: time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := usecase.StartOfWeek(c.in); !got.Equal(c.want) {
				t.Errorf("StartOfWeek(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestBuildWeeklyActivityBuckets(t *testing.T) {
	// Wednesday afternoon; the activity window is Thu (Jul 31) .. Wed (Aug 6).
	now := time.Date(2025, 8, 6, 15, 0, 0, 0, time.UTC)
	store := &memStore{
		tasks: []domain.Task{{ID: "task-1", Title: "t", Status: domain.StatusTodo}},
		entries: []domain.TimeEntry{
			closedEntry("task-1", time.Date(2025, 8, 6, 9, 0, 0, 0, time.UTC), 600),   // today
			closedEntry("task-1", time.Date(2025, 8, 6, 13, 0, 0, 0, time.UTC), 300),  // today again
			closedEntry("task-1", time.Date(2025, 8, 3, 10, 0, 0, 0, time.UTC), 1200), // three days ago
			closedEntry("task-1", time.Date(2025, 7, 31, 8, 0, 0, 0, time.UTC), 450),  // oldest bucket
			closedEntry("task-1", time.Date(2025, 7, 29, 8, 0, 0, 0, time.UTC), 999),  // outside the window
		},
	}

	r, err := newReportUC(store).Build(context.Background(), "user-1", now, time.UTC)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantStart := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	if !r.WeeklyActivity[0].Date.Equal(wantStart) {
		t.Errorf("first bucket = %v, want %v", r.WeeklyActivity[0].Date, wantStart)
	}
	wantEnd := time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC)
	if !r.WeeklyActivity[6].Date.Equal(wantEnd) {
		t.Errorf("last bucket = %v, want %v", r.WeeklyActivity[6].Date, wantEnd)
	}

	wantSeconds := [7]int64{450, 0, 0, 1200, 0, 0, 900}
	for i, want := range wantSeconds {
		if got := r.WeeklyActivity[i].Seconds; got != want {
			t.Errorf("bucket %d (%s): seconds = %d, want %d",
				i, r.WeeklyActivity[i].Date.Format("2006-01-02"), got, want)
		}
	}
}

func TestBuildScoreAndWeeklyHours(t *testing.T) {
	// Wednesday; the week started Monday Aug 4.
	now := time.Date(2025, 8, 6, 18, 0, 0, 0, time.UTC)
	store := &memStore{
		tasks: []domain.Task{
			{ID: "task-1", Title: "a", Status: domain.StatusDone},
			{ID: "task-2", Title: "b", Status: domain.StatusDone},
			{ID: "task-3", Title: "c", Status: domain.StatusInProgress},
		},
		entries: []domain.TimeEntry{
			closedEntry("task-1", time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC), 3600),  // Monday
			closedEntry("task-3", time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC), 1800),  // Tuesday
			closedEntry("task-2", time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC), 36000), // Friday before: not this week
		},
	}

	r, err := newReportUC(store).Build(context.Background(), "user-1", now, time.UTC)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if r.CompletedTasks != 2 || r.PendingTasks != 1 {
		t.Errorf("done/pending = %d/%d, want 2/1", r.CompletedTasks, r.PendingTasks)
	}
	if r.ProductivityScore != 67 {
		t.Errorf("ProductivityScore = %d, want 67", r.ProductivityScore)
	}
	if r.HoursThisWeek != 1.5 {
		t.Errorf("HoursThisWeek = %v, want 1.5", r.HoursThisWeek)
	}

	byID := map[string]int64{}
	for _, tt := range r.TaskTotals {
		byID[tt.Task.ID] = tt.TotalSeconds
	}
	if byID["task-2"] != 36000 {
		t.Errorf("task-2 total = %d, want 36000 (all-time, not weekly)", byID["task-2"])
	}
}

func TestBuildEmptyStore(t *testing.T) {
	r, err := newReportUC(&memStore{}).Build(context.Background(), "user-1", time.Now(), time.UTC)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.ProductivityScore != 0 || r.HoursThisWeek != 0 || len(r.TaskTotals) != 0 {
		t.Errorf("expected zero report, got %+v", r)
	}
}
