package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hance08/paycore/internal/app"
	"github.com/pterm/pterm"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type scheduleFlags struct {
	Cron    string
	RunNow  bool
	Timeout time.Duration
}

type scheduleRunner struct {
	app   *app.App
	flags *scheduleFlags
}

func NewScheduleCmd(provide app.Provider) *cobra.Command {
	flags := &scheduleFlags{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the standing instruction sweep on a cron schedule",
		Long: `Keep running and sweep due standing instructions on the configured
	cron schedule (scheduler.cron, default "0 6 * * *"). Stop with Ctrl+C;
	a sweep in progress finishes its current instructions first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &scheduleRunner{
				app:   provide(),
				flags: flags,
			}
			return runner.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&flags.Cron, "cron", "", "Cron spec overriding scheduler.cron")
	cmd.Flags().BoolVar(&flags.RunNow, "run-now", false, "Sweep once immediately before waiting for the schedule")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 30*time.Minute, "Upper bound for a single sweep")

	return cmd
}

func (r *scheduleRunner) Run(ctx context.Context) error {
	spec := r.flags.Cron
	if spec == "" {
		spec = r.app.Config.Scheduler.Cron
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := startScheduler(ctx, r.app, spec, r.flags.Timeout)
	if err != nil {
		return err
	}

	if r.flags.RunNow {
		(&sweepJob{app: r.app, timeout: r.flags.Timeout, ctx: ctx}).Run()
	}

	pterm.Info.Printf("Sweeping on %q, next run at %s. Press Ctrl+C to stop.\n",
		spec, c.Entries()[0].Next.Format("2006-01-02 15:04:05"))

	<-ctx.Done()
	pterm.Info.Println("Stopping scheduler...")
	<-c.Stop().Done()
	return nil
}

// startScheduler registers the sweep job. Overlapping ticks are skipped
// while a sweep is still running.
func startScheduler(ctx context.Context, a *app.App, spec string, timeout time.Duration) (*cron.Cron, error) {
	logger := cronLogger{logger: a.Logger.Named("cron").Sugar()}

	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddJob(spec, &sweepJob{app: a, timeout: timeout, ctx: ctx}); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	c.Start()
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
