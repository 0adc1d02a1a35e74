package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hance08/paycore/internal/api"
	"github.com/hance08/paycore/internal/app"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type serveFlags struct {
	Addr          string
	WithScheduler bool
}

type serveRunner struct {
	app   *app.App
	flags *serveFlags
}

func NewServeCmd(provide app.Provider) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transfer and sweep API over HTTP",
		Long: `Start the JSON API.

	POST /v1/transfers                       execute a transfer (Idempotency-Key header)
	POST /v1/sweeps                          run a sweep
	POST /v1/instructions/{id}/{action}      pause, resume or cancel (X-User-ID header)
	GET  /v1/accounts/{number}               account balance and status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &serveRunner{
				app:   provide(),
				flags: flags,
			}
			return runner.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&flags.Addr, "addr", "", "Listen address overriding server.addr")
	cmd.Flags().BoolVar(&flags.WithScheduler, "with-scheduler", false, "Also run the cron sweep in this process")

	return cmd
}

func (r *serveRunner) Run(ctx context.Context) error {
	addr := r.flags.Addr
	if addr == "" {
		addr = r.app.Config.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(r.app.Service, r.app.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if r.flags.WithScheduler {
		c, err := startScheduler(ctx, r.app, r.app.Config.Scheduler.Cron, 30*time.Minute)
		if err != nil {
			return err
		}
		defer func() { <-c.Stop().Done() }()
	}

	errCh := make(chan error, 1)
	go func() {
		r.app.Logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	pterm.Info.Printf("Listening on %s. Press Ctrl+C to stop.\n", addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	r.app.Logger.Info("http server stopped")
	return nil
}
