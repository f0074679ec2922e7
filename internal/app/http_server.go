package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Marki500/taskery-v2/internal/domain"
	"github.com/Marki500/taskery-v2/internal/timer"
)

// HTTPServer returns a configured http.Server exposing the timer and report
// endpoints. Call ListenAndServe on the returned server in a goroutine and
// Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /timer/start", a.handleTimerStart)
	mux.HandleFunc("POST /timer/stop", a.handleTimerStop)
	mux.HandleFunc("POST /timer/pause", func(w http.ResponseWriter, r *http.Request) {
		a.Engine.Pause()
		writeJSON(w, http.StatusOK, snapshotPayload(a.Engine.Snapshot()))
	})
	mux.HandleFunc("POST /timer/resume", func(w http.ResponseWriter, r *http.Request) {
		a.Engine.Resume()
		writeJSON(w, http.StatusOK, snapshotPayload(a.Engine.Snapshot()))
	})
	mux.HandleFunc("GET /timer/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, snapshotPayload(a.Engine.Snapshot()))
	})

	mux.HandleFunc("GET /tasks", a.handleListTasks)
	mux.HandleFunc("POST /tasks", a.handleCreateTask)
	mux.HandleFunc("GET /tasks/{id}/time", a.handleTaskTime)
	mux.HandleFunc("POST /tasks/{id}/time", a.handleManualDelta)
	mux.HandleFunc("GET /report", a.handleReport)

	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.Log, mux)}
	a.Log.Info("http server configured", slog.String("addr", addr))
	return srv
}

func (a *App) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == "" {
		writeError(w, http.StatusBadRequest, "task_id is required")
		return
	}

	task, err := a.Tasks.GetTask(r.Context(), req.TaskID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	baseline, err := a.Store.SumDurationsForTask(r.Context(), task.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	err = a.Engine.Start(r.Context(), timer.ActiveTask{
		ID:        task.ID,
		Title:     task.Title,
		ProjectID: task.ProjectID,
		TotalTime: baseline,
	})
	if err != nil {
		if errors.Is(err, timer.ErrRestoring) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotPayload(a.Engine.Snapshot()))
}

func (a *App) handleTimerStop(w http.ResponseWriter, r *http.Request) {
	res, err := a.Engine.Stop(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if res == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "idle"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "stopped",
		"task_id":        res.TaskID,
		"duration_sec":   res.Duration,
		"new_total_time": res.NewTotalTime,
	})
}

func (a *App) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.Tasks.ListTasks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (a *App) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"project_id"`
		Title     string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id and title are required")
		return
	}
	task, err := a.Tasks.CreateTask(r.Context(), domain.Task{ProjectID: req.ProjectID, Title: req.Title})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (a *App) handleTaskTime(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	total, err := a.Store.SumDurationsForTask(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	entries, err := a.Store.ListEntriesForTask(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id":   id,
		"total_sec": total,
		"entries":   entries,
	})
}

func (a *App) handleManualDelta(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		DeltaSeconds int64 `json:"delta_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeltaSeconds == 0 {
		writeError(w, http.StatusBadRequest, "delta_seconds is required")
		return
	}
	entry, err := a.Engine.ApplyManualDelta(r.Context(), id, req.DeltaSeconds)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	report, err := a.Report.Build(r.Context(), a.UserID, time.Now(), loc)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

func snapshotPayload(s timer.Snapshot) map[string]any {
	payload := map[string]any{
		"running":         s.Running,
		"restoring":       s.Restoring,
		"elapsed_seconds": s.ElapsedSeconds,
		"total_elapsed":   s.TotalElapsed,
		"elapsed_display": timer.FormatClock(s.ElapsedSeconds),
	}
	if s.Task != nil {
		payload["task"] = map[string]any{
			"id":         s.Task.ID,
			"title":      s.Task.Title,
			"project_id": s.Task.ProjectID,
		}
		payload["entry_id"] = s.EntryID
	}
	return payload
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"status": "error", "error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	}
	writeError(w, status, err.Error())
}

// Shutdown gracefully stops srv, bounded by a five second deadline.
func Shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
