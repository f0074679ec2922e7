// Package cli implements the taskery command tree.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/app"
	"github.com/Marki500/taskery-v2/internal/config"
)

var (
	verbose bool
	cfg     config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "taskery",
	Short: "Track time against project tasks",
	Long: `Taskery tracks time against project tasks with a single active timer.
A timer left running survives restarts: the open time entry is restored
from the store and keeps counting from its original start timestamp.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		logger = slog.New(handler)
		slog.SetDefault(logger)

		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp wires the configured store and engine for a subcommand.
func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, logger, cfg)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
