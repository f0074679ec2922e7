package cli

import (
	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/timer"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running timer and save the tracked time",
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

		res, err := a.Engine.Stop(ctx)
		if err != nil {
			return err
		}
		if res == nil {
			cmd.Println("No running timer.")
			return nil
		}
		cmd.Printf("Saved %s. Task total is now %s.\n",
			timer.FormatClock(res.Duration), timer.FormatClock(res.NewTotalTime))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
