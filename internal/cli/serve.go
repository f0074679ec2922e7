package cli

import (
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/app"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP timer server",
	Long: `Serve keeps the timer engine resident and exposes it over HTTP:
/timer/start, /timer/stop, /timer/pause, /timer/resume, /timer/status,
/tasks, /tasks/{id}/time and /report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine.Reconcile(ctx); err != nil {
			logger.Warn("timer reconciliation failed", slog.String("error", err.Error()))
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.HTTP.Addr
		}
		srv := a.HTTPServer(addr)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return app.Shutdown(srv)
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides TASKERY_HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
