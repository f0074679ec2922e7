// Package usecase holds application services built on the ports.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Marki500/taskery-v2/internal/domain"
	"github.com/Marki500/taskery-v2/internal/ports"
)

// ReportUseCase aggregates tracked time and task state into dashboard-style
// figures.
type ReportUseCase struct {
	Log     *slog.Logger
	Entries ports.TimeEntryStore
	Tasks   ports.TaskDirectory
}

// TaskTotal pairs a task with its accumulated tracked seconds.
type TaskTotal struct {
	Task         domain.Task
	TotalSeconds int64
}

// DayBucket is one day of the trailing week.
type DayBucket struct {
	Date    time.Time // midnight, in the report location
	Seconds int64
}

// Report is a snapshot of the user's recent activity.
type Report struct {
	TaskTotals        []TaskTotal
	PendingTasks      int
	CompletedTasks    int
	ProductivityScore int // round(100 * done / (done+pending))
	HoursThisWeek     float64
	WeeklyActivity    [7]DayBucket // oldest day first, today last
}

// Build computes the report as of now in loc. Week boundaries follow the
// original app: the week starts Monday 00:00 local time, and the activity
// buckets cover today and the six days before it.
func (uc *ReportUseCase) Build(ctx context.Context, userID string, now time.Time, loc *time.Location) (Report, error) {
	var r Report
	if uc.Entries == nil || uc.Tasks == nil {
		return r, fmt.Errorf("report usecase not initialized: missing dependencies")
	}

	tasks, err := uc.Tasks.ListTasks(ctx)
	if err != nil {
		return r, fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range tasks {
		total, err := uc.Entries.SumDurationsForTask(ctx, t.ID)
		if err != nil {
			return r, fmt.Errorf("sum durations for %s: %w", t.ID, err)
		}
		r.TaskTotals = append(r.TaskTotals, TaskTotal{Task: t, TotalSeconds: total})
		if t.Status == domain.StatusDone {
			r.CompletedTasks++
		} else {
			r.PendingTasks++
		}
	}
	if r.CompletedTasks+r.PendingTasks > 0 {
		r.ProductivityScore = int(math.Round(100 * float64(r.CompletedTasks) / float64(r.CompletedTasks+r.PendingTasks)))
	}

	local := now.In(loc)
	weekStart := StartOfWeek(local)
	weekSeconds, err := uc.Entries.SumDurationsSince(ctx, userID, weekStart)
	if err != nil {
		return r, fmt.Errorf("sum durations this week: %w", err)
	}
	r.HoursThisWeek = math.Round(float64(weekSeconds)/3600*10) / 10

	today := midnight(local)
	windowStart := today.AddDate(0, 0, -6)
	entries, err := uc.Entries.ListEntriesForUser(ctx, userID, windowStart)
	if err != nil {
		return r, fmt.Errorf("list entries: %w", err)
	}
	for i := range r.WeeklyActivity {
		r.WeeklyActivity[i].Date = windowStart.AddDate(0, 0, i)
	}
	for _, e := range entries {
		if e.Duration == nil {
			continue
		}
		day := midnight(e.StartedAt.In(loc))
		for i := range r.WeeklyActivity {
			if day.Equal(r.WeeklyActivity[i].Date) {
				r.WeeklyActivity[i].Seconds += *e.Duration
				break
			}
		}
	}

	uc.Log.Debug("report built",
		slog.Int("tasks", len(tasks)),
		slog.Float64("hours_this_week", r.HoursThisWeek),
	)
	return r, nil
}

// StartOfWeek returns Monday 00:00 of t's week, in t's location.
func StartOfWeek(t time.Time) time.Time {
	day := midnight(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday rolls back to the previous Monday
	}
	return day.AddDate(0, 0, -offset)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
