package timer_test

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/Marki500/taskery-v2/internal/domain"
	"github.com/Marki500/taskery-v2/internal/timer"
)

// TestElapsedMatchesRunningSegments drives the engine through random
// advance/pause/resume interleavings and checks the elapsed display against
// an independently tracked sum of running segment lengths.
func TestElapsedMatchesRunningSegments(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clk := newFakeClock(time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC))
		store := &fakeStore{now: clk.Now}
		dir := &fakeDirectory{tasks: map[string]domain.Task{}}
		e := timer.New(testLogger(), store, dir, "user-1")
		e.Now = clk.Now
		defer e.Close()

		ctx := context.Background()
		if err := e.Reconcile(ctx); err != nil {
			t.Fatalf("Reconcile: %v", err)
		}
		if err := e.Start(ctx, timer.ActiveTask{ID: "task-1", Title: "t"}); err != nil {
			t.Fatalf("Start: %v", err)
		}

		running := true
		var want int64

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				secs := rapid.Int64Range(0, 3600).Draw(t, "advance")
				clk.Advance(time.Duration(secs) * time.Second)
				if running {
					want += secs
				}
			case 1:
				e.Pause()
				running = false
			case 2:
				e.Resume()
				running = true
			}
			if got := e.Snapshot().ElapsedSeconds; got != want {
				t.Fatalf("step %d: elapsed = %d, want %d", i, got, want)
			}
		}

		res, err := e.Stop(ctx)
		if err != nil {
			t.Fatalf("Stop: %v", err)
		}
		if want <= 0 {
			if res != nil {
				t.Fatalf("expected no result for elapsed %d, got %+v", want, res)
			}
			return
		}
		if res == nil || res.Duration != want {
			t.Fatalf("stop result = %+v, want duration %d", res, want)
		}
		if store.closeCalls != 1 {
			t.Fatalf("closeCalls = %d, want 1", store.closeCalls)
		}
	})
}
