// Package sqlite implements the time entry store and task directory over a
// local SQLite file. This is the default backend for standalone use.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Marki500/taskery-v2/internal/domain"
	"github.com/Marki500/taskery-v2/internal/migrate"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Store implements ports.TimeEntryStore and ports.TaskDirectory.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// bundled migrations.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: path is required")
	}
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent callers.
	db.SetMaxOpenConns(1)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate.Run(ctx, db, migrationsFS, "sql", log); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migrations: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func (s *Store) CreateOpenEntry(ctx context.Context, taskID, userID string) (domain.TimeEntry, error) {
	entry := domain.TimeEntry{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    userID,
		StartedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_entries (id, task_id, user_id, started_at) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.TaskID, entry.UserID, toMillis(entry.StartedAt),
	)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("insert open entry: %w", err)
	}
	return entry, nil
}

func (s *Store) CloseEntry(ctx context.Context, id string, endedAt time.Time, duration int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_entries SET ended_at = ?, duration = ? WHERE id = ?`,
		toMillis(endedAt), duration, id,
	)
	if err != nil {
		return fmt.Errorf("close entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) FindOpenEntryForUser(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, user_id, started_at, ended_at, duration
         FROM time_entries WHERE user_id = ? AND ended_at IS NULL
         ORDER BY started_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query open entry: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if len(entries) > 1 {
		// At most one open entry per user is an application invariant;
		// more than one means a past session leaked.
		s.log.Warn("multiple open time entries for user",
			slog.String("user_id", userID),
			slog.Int("count", len(entries)),
		)
	}
	return &entries[0], nil
}

func (s *Store) SumDurationsForTask(ctx context.Context, taskID string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration), 0) FROM time_entries WHERE task_id = ? AND duration IS NOT NULL`,
		taskID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum durations: %w", err)
	}
	return total, nil
}

func (s *Store) SumDurationsSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration), 0) FROM time_entries
         WHERE user_id = ? AND duration IS NOT NULL AND started_at >= ?`,
		userID, toMillis(since),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum durations since: %w", err)
	}
	return total, nil
}

func (s *Store) InsertClosedEntry(ctx context.Context, taskID, userID string, startedAt, endedAt time.Time, duration int64) (domain.TimeEntry, error) {
	ended := endedAt.UTC().Truncate(time.Millisecond)
	entry := domain.TimeEntry{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    userID,
		StartedAt: startedAt.UTC().Truncate(time.Millisecond),
		EndedAt:   &ended,
		Duration:  &duration,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_entries (id, task_id, user_id, started_at, ended_at, duration)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TaskID, entry.UserID, toMillis(entry.StartedAt), toMillis(ended), duration,
	)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("insert closed entry: %w", err)
	}
	return entry, nil
}

func (s *Store) ListEntriesForTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, user_id, started_at, ended_at, duration
         FROM time_entries WHERE task_id = ? ORDER BY started_at DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (s *Store) ListEntriesForUser(ctx context.Context, userID string, since time.Time) ([]domain.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, user_id, started_at, ended_at, duration
         FROM time_entries WHERE user_id = ? AND started_at >= ? ORDER BY started_at ASC`,
		userID, toMillis(since),
	)
	if err != nil {
		return nil, fmt.Errorf("list user entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (s *Store) UpdateEntryDuration(ctx context.Context, id string, duration int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_entries SET duration = ? WHERE id = ?`, duration, id)
	if err != nil {
		return fmt.Errorf("update duration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var (
		t        domain.Task
		deadline sql.NullInt64
		created  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, status, deadline, created_at FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.ProjectID, &t.Title, &t.Status, &deadline, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	t.CreatedAt = fromMillis(created)
	if deadline.Valid {
		d := fromMillis(deadline.Int64)
		t.Deadline = &d
	}
	return t, nil
}

func (s *Store) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.StatusTodo
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	var deadline any
	if t.Deadline != nil {
		deadline = toMillis(*t.Deadline)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, status, deadline, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Status, deadline, toMillis(t.CreatedAt),
	)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, title, status, deadline, created_at FROM tasks ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		var (
			t        domain.Task
			deadline sql.NullInt64
			created  int64
		)
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Status, &deadline, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = fromMillis(created)
		if deadline.Valid {
			d := fromMillis(deadline.Int64)
			t.Deadline = &d
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var (
		p       domain.Project
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	p.CreatedAt = fromMillis(created)
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, toMillis(p.CreatedAt),
	)
	if err != nil {
		return domain.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM projects ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		var (
			p       domain.Project
			created int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &created); err != nil {
			return nil, err
		}
		p.CreatedAt = fromMillis(created)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the underlying DB.
func (s *Store) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (domain.TimeEntry, error) {
	var (
		e        domain.TimeEntry
		started  int64
		ended    sql.NullInt64
		duration sql.NullInt64
	)
	if err := r.Scan(&e.ID, &e.TaskID, &e.UserID, &started, &ended, &duration); err != nil {
		return domain.TimeEntry{}, err
	}
	e.StartedAt = fromMillis(started)
	if ended.Valid {
		t := fromMillis(ended.Int64)
		e.EndedAt = &t
	}
	if duration.Valid {
		d := duration.Int64
		e.Duration = &d
	}
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
