package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the live timer in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("watch needs an interactive terminal; use 'taskery status' instead")
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		// Reconcile in the background so the view can show the restoring
		// spinner instead of blocking on the store round-trip.
		go func() {
			if err := a.Engine.Reconcile(ctx); err != nil {
				logger.Warn("timer reconciliation failed", slog.String("error", err.Error()))
			}
		}()

		return tui.Run(a.Engine)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
