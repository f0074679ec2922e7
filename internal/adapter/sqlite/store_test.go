package sqlite_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Marki500/taskery-v2/internal/adapter/sqlite"
	"github.com/Marki500/taskery-v2/internal/domain"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "taskery.db"), log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedTask creates a project and one task so entry rows satisfy the schema's
// foreign keys.
func seedTask(t *testing.T, s *sqlite.Store) domain.Task {
	t.Helper()
	ctx := context.Background()
	p, err := s.CreateProject(ctx, domain.Project{Name: "Website"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	task, err := s.CreateTask(ctx, domain.Task{ProjectID: p.ID, Title: "Fix login"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func TestEntryLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	task := seedTask(t, s)

	entry, err := s.CreateOpenEntry(ctx, task.ID, "user-1")
	if err != nil {
		t.Fatalf("CreateOpenEntry: %v", err)
	}
	if entry.ID == "" || !entry.Open() {
		t.Fatalf("expected an open entry with an id, got %+v", entry)
	}

	open, err := s.FindOpenEntryForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindOpenEntryForUser: %v", err)
	}
	if open == nil || open.ID != entry.ID {
		t.Fatalf("open entry = %+v, want id %s", open, entry.ID)
	}
	if !open.StartedAt.Equal(entry.StartedAt) {
		t.Errorf("StartedAt round-trip: got %v, want %v", open.StartedAt, entry.StartedAt)
	}

	ended := entry.StartedAt.Add(90 * time.Second)
	if err := s.CloseEntry(ctx, entry.ID, ended, 90); err != nil {
		t.Fatalf("CloseEntry: %v", err)
	}
	open, err = s.FindOpenEntryForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindOpenEntryForUser after close: %v", err)
	}
	if open != nil {
		t.Fatalf("expected no open entry after close, got %+v", open)
	}

	total, err := s.SumDurationsForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("SumDurationsForTask: %v", err)
	}
	if total != 90 {
		t.Errorf("total = %d, want 90", total)
	}
}

func TestFindOpenEntryPicksMostRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	task := seedTask(t, s)

	first, err := s.CreateOpenEntry(ctx, task.ID, "user-1")
	if err != nil {
		t.Fatalf("CreateOpenEntry: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // distinct started_at at ms precision
	second, err := s.CreateOpenEntry(ctx, task.ID, "user-1")
	if err != nil {
		t.Fatalf("CreateOpenEntry: %v", err)
	}

	open, err := s.FindOpenEntryForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindOpenEntryForUser: %v", err)
	}
	if open == nil || open.ID != second.ID {
		t.Fatalf("open entry = %+v, want most recent %s (not %s)", open, second.ID, first.ID)
	}
}

func TestOpenEntryScopedToUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	task := seedTask(t, s)

	if _, err := s.CreateOpenEntry(ctx, task.ID, "alice"); err != nil {
		t.Fatalf("CreateOpenEntry: %v", err)
	}
	open, err := s.FindOpenEntryForUser(ctx, "bob")
	if err != nil {
		t.Fatalf("FindOpenEntryForUser: %v", err)
	}
	if open != nil {
		t.Fatalf("bob should have no open entry, got %+v", open)
	}
}

func TestCloseEntryNotFound(t *testing.T) {
	s := openTestStore(t)
	err := s.CloseEntry(context.Background(), "missing", time.Now(), 10)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEntryDuration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	task := seedTask(t, s)

	now := time.Now().UTC()
	entry, err := s.InsertClosedEntry(ctx, task.ID, "user-1", now.Add(-time.Minute), now, 60)
	if err != nil {
		t.Fatalf("InsertClosedEntry: %v", err)
	}
	if err := s.UpdateEntryDuration(ctx, entry.ID, 45); err != nil {
		t.Fatalf("UpdateEntryDuration: %v", err)
	}
	entries, err := s.ListEntriesForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListEntriesForTask: %v", err)
	}
	if len(entries) != 1 || entries[0].Duration == nil || *entries[0].Duration != 45 {
		t.Fatalf("entries = %+v, want one with duration 45", entries)
	}

	err = s.UpdateEntryDuration(ctx, "missing", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSumDurationsSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	task := seedTask(t, s)

	cutoff := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		started  time.Time
		duration int64
	}{
		{cutoff.Add(-48 * time.Hour), 1000}, // before the window
		{cutoff, 300},                       // exactly at the cutoff counts
		{cutoff.Add(6 * time.Hour), 600},
	}
	for _, c := range cases {
		if _, err := s.InsertClosedEntry(ctx, task.ID, "user-1", c.started, c.started.Add(time.Duration(c.duration)*time.Second), c.duration); err != nil {
			t.Fatalf("InsertClosedEntry: %v", err)
		}
	}

	total, err := s.SumDurationsSince(ctx, "user-1", cutoff)
	if err != nil {
		t.Fatalf("SumDurationsSince: %v", err)
	}
	if total != 900 {
		t.Errorf("total = %d, want 900", total)
	}
}

func TestListEntriesForUserOrdered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	task := seedTask(t, s)

	base := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	for i := 2; i >= 0; i-- { // insert out of order
		started := base.Add(time.Duration(i) * time.Hour)
		if _, err := s.InsertClosedEntry(ctx, task.ID, "user-1", started, started.Add(time.Minute), 60); err != nil {
			t.Fatalf("InsertClosedEntry: %v", err)
		}
	}

	entries, err := s.ListEntriesForUser(ctx, "user-1", base)
	if err != nil {
		t.Fatalf("ListEntriesForUser: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].StartedAt.Before(entries[i-1].StartedAt) {
			t.Fatalf("entries not in ascending order: %v before %v", entries[i].StartedAt, entries[i-1].StartedAt)
		}
	}
}

func TestTaskDirectoryRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, domain.Project{Name: "Internal"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	deadline := time.Date(2025, 9, 15, 17, 0, 0, 0, time.UTC)
	created, err := s.CreateTask(ctx, domain.Task{
		ProjectID: p.ID,
		Title:     "Ship release",
		Status:    domain.StatusInProgress,
		Deadline:  &deadline,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := s.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Ship release" || got.Status != domain.StatusInProgress || got.ProjectID != p.ID {
		t.Errorf("task round-trip mismatch: %+v", got)
	}
	if got.Deadline == nil || !got.Deadline.Equal(deadline) {
		t.Errorf("deadline = %v, want %v", got.Deadline, deadline)
	}

	if _, err := s.GetTask(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetTask(missing) = %v, want ErrNotFound", err)
	}
	if _, err := s.GetProject(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetProject(missing) = %v, want ErrNotFound", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("ListTasks len = %d, want 1", len(tasks))
	}
	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("ListProjects len = %d, want 1", len(projects))
	}
}

func TestReopeningDatabaseKeepsData(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "taskery.db")
	ctx := context.Background()

	s, err := sqlite.Open(ctx, path, log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	task := seedTask(t, s)
	if _, err := s.CreateOpenEntry(ctx, task.ID, "user-1"); err != nil {
		t.Fatalf("CreateOpenEntry: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Migrations must be idempotent and the open entry must survive, since
	// crash recovery depends on it.
	s2, err := sqlite.Open(ctx, path, log)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	open, err := s2.FindOpenEntryForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindOpenEntryForUser: %v", err)
	}
	if open == nil || open.TaskID != task.ID {
		t.Fatalf("open entry after reopen = %+v, want one for %s", open, task.ID)
	}
}
