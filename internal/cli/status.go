package cli

import (
	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/timer"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current timer state",
	Args:  cobra.NoArgs,
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

		snap := a.Engine.Snapshot()
		if snap.Task == nil {
			cmd.Println("No active timer.")
			return nil
		}
		state := "paused"
		if snap.Running {
			state = "running"
		}
		cmd.Printf("Task:    %s\n", snap.Task.Title)
		cmd.Printf("State:   %s\n", state)
		cmd.Printf("Elapsed: %s\n", timer.FormatClock(snap.ElapsedSeconds))
		cmd.Printf("Total:   %s\n", timer.FormatClock(snap.TotalElapsed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
