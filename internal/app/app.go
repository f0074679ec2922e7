package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Marki500/taskery-v2/internal/adapter/mysql"
	"github.com/Marki500/taskery-v2/internal/adapter/sqlite"
	"github.com/Marki500/taskery-v2/internal/config"
	"github.com/Marki500/taskery-v2/internal/ports"
	"github.com/Marki500/taskery-v2/internal/timer"
	"github.com/Marki500/taskery-v2/internal/usecase"
)

// App wires the store adapter, timer engine, and use cases.
type App struct {
	Log    *slog.Logger
	Engine *timer.Engine
	Report *usecase.ReportUseCase
	Store  ports.TimeEntryStore
	Tasks  ports.TaskDirectory
	UserID string

	closer io.Closer
}

// New opens the configured store backend and builds the engine around it.
// The engine is returned in the restoring state; call Engine.Reconcile before
// trusting timer operations.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	var (
		store  ports.TimeEntryStore
		tasks  ports.TaskDirectory
		closer io.Closer
	)
	switch cfg.Store.Backend {
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.Store.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		store, tasks, closer = s, s, s
	case "mysql":
		s, err := mysql.Open(ctx, cfg.Store.MySQLDSN, log)
		if err != nil {
			return nil, fmt.Errorf("open mysql store: %w", err)
		}
		store, tasks, closer = s, s, s
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	engine := timer.New(log, store, tasks, cfg.User.ID)
	report := &usecase.ReportUseCase{Log: log, Entries: store, Tasks: tasks}

	return &App{
		Log:    log,
		Engine: engine,
		Report: report,
		Store:  store,
		Tasks:  tasks,
		UserID: cfg.User.ID,
		closer: closer,
	}, nil
}

// Close tears down the engine's tick loop and the store connection.
func (a *App) Close() error {
	a.Engine.Close()
	return a.closer.Close()
}
