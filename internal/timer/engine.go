// Package timer implements the single-active-timer engine: a wall-clock
// anchored stopwatch that persists one time entry per start/stop cycle and
// resumes an open entry left behind by a previous process.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Marki500/taskery-v2/internal/domain"
	"github.com/Marki500/taskery-v2/internal/ports"
)

// ErrRestoring is returned by Start while the initial reconciliation has not
// finished, so a user-initiated timer cannot race a resumed one.
var ErrRestoring = errors.New("timer state is still being restored")

// ActiveTask describes the task being timed. TotalTime is the previously
// accumulated baseline in seconds, supplied by the caller at start time.
type ActiveTask struct {
	ID        string
	Title     string
	ProjectID string
	TotalTime int64
}

// Snapshot is the engine's reactive state, recomputed on demand.
type Snapshot struct {
	Task           *ActiveTask
	EntryID        string
	ElapsedSeconds int64
	TotalElapsed   int64
	Running        bool
	Restoring      bool
}

// StopResult reports a finished session so callers can update cached totals
// without reloading.
type StopResult struct {
	TaskID       string
	Duration     int64
	NewTotalTime int64
}

// Engine is the process-wide timer state machine. Construct it with New and
// call Reconcile before trusting Start/Stop. All mutations go through the
// exported operations; the mutex covers concurrent HTTP and tick callers.
type Engine struct {
	Log    *slog.Logger
	Store  ports.TimeEntryStore
	Tasks  ports.TaskDirectory
	UserID string
	Now    func() time.Time

	mu          sync.Mutex
	task        *ActiveTask
	entryID     string
	anchor      time.Time // start of the current running segment; zero while paused
	accumulated int64     // seconds from earlier segments of this cycle
	baseline    int64
	running     bool
	restoring   bool
	reconciled  bool

	tickStop chan struct{} // non-nil exactly while a tick goroutine runs
	updates  chan Snapshot
}

// New returns an idle engine in the restoring state.
func New(log *slog.Logger, store ports.TimeEntryStore, tasks ports.TaskDirectory, userID string) *Engine {
	return &Engine{
		Log:       log,
		Store:     store,
		Tasks:     tasks,
		UserID:    userID,
		Now:       time.Now,
		restoring: true,
		updates:   make(chan Snapshot, 8),
	}
}

// Reconcile resumes an open entry left by a previous session, if any. It runs
// at most once per engine; later calls are no-ops. The elapsed display is
// anchored to the persisted start timestamp, so time while the process was
// down still counts.
func (e *Engine) Reconcile(ctx context.Context) error {
	e.mu.Lock()
	if e.reconciled {
		e.mu.Unlock()
		return nil
	}
	e.reconciled = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.restoring = false
		e.mu.Unlock()
	}()

	if e.UserID == "" {
		return domain.ErrUnauthenticated
	}

	entry, err := e.Store.FindOpenEntryForUser(ctx, e.UserID)
	if err != nil {
		e.Log.Error("restoring timer failed", slog.String("error", err.Error()))
		return fmt.Errorf("find open entry: %w", err)
	}
	if entry == nil {
		e.Log.Debug("no open entry to restore")
		return nil
	}

	task, err := e.Tasks.GetTask(ctx, entry.TaskID)
	if err != nil {
		e.Log.Error("restoring timer failed", slog.String("task_id", entry.TaskID), slog.String("error", err.Error()))
		return fmt.Errorf("load task %s: %w", entry.TaskID, err)
	}
	baseline, err := e.Store.SumDurationsForTask(ctx, entry.TaskID)
	if err != nil {
		return fmt.Errorf("sum durations for %s: %w", entry.TaskID, err)
	}

	e.mu.Lock()
	e.task = &ActiveTask{ID: task.ID, Title: task.Title, ProjectID: task.ProjectID, TotalTime: baseline}
	e.entryID = entry.ID
	e.baseline = baseline
	e.anchor = entry.StartedAt
	e.accumulated = 0
	e.running = true
	e.startTickLocked()
	elapsed := e.elapsedLocked(e.Now())
	e.mu.Unlock()

	e.Log.Info("timer restored",
		slog.String("task", task.Title),
		slog.String("entry_id", entry.ID),
		slog.Int64("elapsed_sec", elapsed),
	)
	return nil
}

// Start opens a new time entry for task and begins tracking. If a session is
// already active its entry is closed first, so an open entry is never
// orphaned by a double start.
func (e *Engine) Start(ctx context.Context, task ActiveTask) error {
	e.mu.Lock()
	if e.restoring {
		e.mu.Unlock()
		return ErrRestoring
	}
	active := e.task != nil
	e.mu.Unlock()

	if active {
		if _, err := e.Stop(ctx); err != nil {
			e.Log.Warn("closing previous session failed", slog.String("error", err.Error()))
		}
	}

	if e.UserID == "" {
		return domain.ErrUnauthenticated
	}
	entry, err := e.Store.CreateOpenEntry(ctx, task.ID, e.UserID)
	if err != nil {
		e.Log.Error("starting timer failed", slog.String("task_id", task.ID), slog.String("error", err.Error()))
		return fmt.Errorf("create time entry: %w", err)
	}

	e.mu.Lock()
	t := task
	e.task = &t
	e.entryID = entry.ID
	e.baseline = task.TotalTime
	e.anchor = e.Now()
	e.accumulated = 0
	e.running = true
	e.startTickLocked()
	e.mu.Unlock()

	e.Log.Info("timer started", slog.String("task", task.Title), slog.String("entry_id", entry.ID))
	return nil
}

// Stop ends the active session and persists its duration. The engine returns
// to idle regardless of the store outcome: a failed save loses that session's
// time rather than leaving the UI stuck in running. Calling Stop while idle
// is a no-op returning (nil, nil), as is stopping with zero elapsed seconds.
func (e *Engine) Stop(ctx context.Context) (*StopResult, error) {
	e.mu.Lock()
	if e.task == nil {
		e.mu.Unlock()
		return nil, nil
	}
	now := e.Now()
	elapsed := e.elapsedLocked(now)
	taskID := e.task.ID
	entryID := e.entryID
	baseline := e.baseline
	e.resetLocked()
	e.mu.Unlock()

	if elapsed <= 0 || entryID == "" {
		return nil, nil
	}
	if err := e.Store.CloseEntry(ctx, entryID, now, elapsed); err != nil {
		e.Log.Error("saving tracked time failed",
			slog.String("entry_id", entryID),
			slog.Int64("elapsed_sec", elapsed),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("close time entry: %w", err)
	}
	e.Log.Info("tracked time saved", slog.String("task_id", taskID), slog.Int64("seconds", elapsed))
	return &StopResult{TaskID: taskID, Duration: elapsed, NewTotalTime: baseline + elapsed}, nil
}

// Pause freezes the elapsed display without touching the store; the open
// entry stays open server-side. Only meaningful while running.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.accumulated += e.segmentLocked(e.Now())
	e.anchor = time.Time{}
	e.running = false
	e.stopTickLocked()
}

// Resume continues a paused session from a fresh anchor. No new store entry
// is created. Only meaningful while a task is active and not running.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.task == nil || e.running {
		return
	}
	e.anchor = e.Now()
	e.running = true
	e.startTickLocked()
}

// ApplyManualDelta records a user correction to a task's total as a synthetic
// closed entry. Positive deltas are backdated so they appear to have happened
// in the past; non-positive deltas collapse to a zero-length entry at now.
func (e *Engine) ApplyManualDelta(ctx context.Context, taskID string, deltaSeconds int64) (domain.TimeEntry, error) {
	if e.UserID == "" {
		return domain.TimeEntry{}, domain.ErrUnauthenticated
	}
	now := e.Now()
	startedAt := now
	if deltaSeconds > 0 {
		startedAt = now.Add(-time.Duration(deltaSeconds) * time.Second)
	}
	entry, err := e.Store.InsertClosedEntry(ctx, taskID, e.UserID, startedAt, now, deltaSeconds)
	if err != nil {
		e.Log.Error("manual time correction failed", slog.String("task_id", taskID), slog.String("error", err.Error()))
		return domain.TimeEntry{}, fmt.Errorf("insert manual entry: %w", err)
	}
	e.Log.Info("manual time correction applied", slog.String("task_id", taskID), slog.Int64("delta_sec", deltaSeconds))
	return entry, nil
}

// Snapshot returns the current reactive state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Updates delivers a Snapshot roughly once per second while the timer runs.
// Values are dropped when no one is receiving.
func (e *Engine) Updates() <-chan Snapshot {
	return e.updates
}

// Close tears the engine down, cancelling any tick goroutine.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		EntryID:   e.entryID,
		Running:   e.running,
		Restoring: e.restoring,
	}
	if e.task != nil {
		t := *e.task
		s.Task = &t
	}
	s.ElapsedSeconds = e.elapsedLocked(e.Now())
	s.TotalElapsed = e.baseline + s.ElapsedSeconds
	return s
}

// elapsedLocked is accumulated paused seconds plus the live segment.
func (e *Engine) elapsedLocked(now time.Time) int64 {
	if !e.running {
		return e.accumulated
	}
	return e.accumulated + e.segmentLocked(now)
}

func (e *Engine) segmentLocked(now time.Time) int64 {
	return int64(now.Sub(e.anchor) / time.Second)
}

func (e *Engine) resetLocked() {
	e.task = nil
	e.entryID = ""
	e.anchor = time.Time{}
	e.accumulated = 0
	e.baseline = 0
	e.running = false
	e.stopTickLocked()
}

// startTickLocked replaces any existing tick goroutine so there is exactly
// one source regardless of how many start/stop cycles ran.
func (e *Engine) startTickLocked() {
	e.stopTickLocked()
	stop := make(chan struct{})
	e.tickStop = stop
	go e.tickLoop(stop)
}

func (e *Engine) stopTickLocked() {
	if e.tickStop != nil {
		close(e.tickStop)
		e.tickStop = nil
	}
}

func (e *Engine) tickLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			snap := e.Snapshot()
			select {
			case e.updates <- snap:
			default:
			}
		}
	}
}
