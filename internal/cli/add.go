package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/timer"
)

var addCmd = &cobra.Command{
	Use:   "add <task-id> <delta>",
	Short: "Manually correct a task's tracked time",
	Long: `Add records a manual correction as a synthetic closed time entry.
The delta accepts plain seconds ("90") or a duration ("1h30m"); negative
values subtract time ("-10m").`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := parseDelta(args[1])
		if err != nil {
			return err
		}
		if delta == 0 {
			return fmt.Errorf("delta must be non-zero")
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Tasks.GetTask(ctx, args[0]); err != nil {
			return err
		}
		if _, err := a.Engine.ApplyManualDelta(ctx, args[0], delta); err != nil {
			return err
		}
		total, err := a.Store.SumDurationsForTask(ctx, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Recorded %s. Task total is now %s.\n",
			timer.FormatClock(delta), timer.FormatClock(total))
		return nil
	},
}

// parseDelta accepts plain seconds or a Go duration string.
func parseDelta(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid delta %q: want seconds or a duration like 1h30m", s)
	}
	return int64(d / time.Second), nil
}

func init() {
	rootCmd.AddCommand(addCmd)
}
