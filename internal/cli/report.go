package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/timer"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show tracked time and task activity for the trailing week",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Report.Build(ctx, cfg.User.ID, time.Now(), loc)
		if err != nil {
			return err
		}

		cmd.Printf("Hours this week:    %.1f\n", r.HoursThisWeek)
		cmd.Printf("Productivity score: %d%% (%d done, %d pending)\n",
			r.ProductivityScore, r.CompletedTasks, r.PendingTasks)
		cmd.Println()
		cmd.Println("Last 7 days:")
		for _, day := range r.WeeklyActivity {
			bar := strings.Repeat("#", int(day.Seconds/1800)) // one mark per half hour
			cmd.Printf("  %s  %-9s %s\n", day.Date.Format("Mon 02"), timer.FormatClock(day.Seconds), bar)
		}
		if len(r.TaskTotals) > 0 {
			cmd.Println()
			cmd.Println("Per task:")
			for _, tt := range r.TaskTotals {
				cmd.Printf("  %-10s %-12s %s\n", timer.FormatClock(tt.TotalSeconds), tt.Task.Status, tt.Task.Title)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
