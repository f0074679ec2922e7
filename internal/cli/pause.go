package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Pause is local state by contract: the open entry stays open in the store
// and the frozen elapsed count lives only in the resident engine. One-shot
// commands have no resident engine to freeze, so these point at the modes
// that do.

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the timer display (watch/serve modes only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("pause is only available while the timer is resident: use 'taskery watch' or the /timer/pause endpoint of 'taskery serve'")
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused timer (watch/serve modes only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("resume is only available while the timer is resident: use 'taskery watch' or the /timer/resume endpoint of 'taskery serve'")
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}
