package cli

import (
	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/timer"
)

var startCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Start the timer on a task",
	Long: `Start opens a new time entry and begins tracking. If another timer is
already running, its session is saved first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine.Reconcile(ctx); err != nil {
			return err
		}

		task, err := a.Tasks.GetTask(ctx, args[0])
		if err != nil {
			return err
		}
		baseline, err := a.Store.SumDurationsForTask(ctx, task.ID)
		if err != nil {
			return err
		}

		prev := a.Engine.Snapshot()
		if err := a.Engine.Start(ctx, timer.ActiveTask{
			ID:        task.ID,
			Title:     task.Title,
			ProjectID: task.ProjectID,
			TotalTime: baseline,
		}); err != nil {
			return err
		}

		if prev.Task != nil {
			cmd.Printf("Saved %s on %q.\n", timer.FormatClock(prev.ElapsedSeconds), prev.Task.Title)
		}
		cmd.Printf("Timer started on %q.\n", task.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
