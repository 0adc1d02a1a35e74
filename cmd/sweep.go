package cmd

import (
	"context"
	"time"

	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/ui/views"
	"github.com/hance08/paycore/internal/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type sweepFlags struct {
	AsOf   string
	UserID int64
}

type sweepRunner struct {
	app   *app.App
	flags *sweepFlags
	cmd   *cobra.Command
}

func NewSweepCmd(provide app.Provider) *cobra.Command {
	flags := &sweepFlags{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Execute every standing instruction that is due",
		Long: `Run one sweep over the standing instructions due on a date.

	Each due instruction moves its amount over the INTERNAL rail. Instructions
	that cannot be paid are marked FAILED; the others keep running.

	Examples:
	paycore sweep
	paycore sweep --as-of 2026-03-01 --user 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &sweepRunner{
				app:   provide(),
				flags: flags,
				cmd:   cmd,
			}
			return runner.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&flags.AsOf, "as-of", "", "Sweep date (YYYY-MM-DD), default is today")
	cmd.Flags().Int64VarP(&flags.UserID, "user", "u", 0, "Only sweep this user's instructions")

	return cmd
}

func (r *sweepRunner) Run(ctx context.Context) error {
	req := service.SweepRequest{}

	if r.flags.AsOf != "" {
		asOf, err := utils.ParseDate(r.flags.AsOf)
		if err != nil {
			return err
		}
		req.AsOf = asOf
	}
	if r.cmd.Flags().Changed("user") {
		req.UserID = &r.flags.UserID
	}

	report, err := r.app.Service.Scheduler.RunDueInstructionSweep(ctx, req)
	if report != nil {
		if renderErr := views.RenderSweepReport(report); renderErr != nil {
			return renderErr
		}
	}
	return err
}

// sweepJob runs a sweep as of the current date on every cron tick.
type sweepJob struct {
	app     *app.App
	timeout time.Duration
	ctx     context.Context
}

func (j *sweepJob) Run() {
	ctx := j.ctx
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	report, err := j.app.Service.Scheduler.RunDueInstructionSweep(ctx, service.SweepRequest{})
	if err != nil {
		pterm.Warning.Printf("Sweep ended early: %v\n", err)
	}
	if report != nil && report.Executed+report.Failed > 0 {
		pterm.Info.Printf("Sweep %s: %d executed, %d failed, %d skipped\n",
			utils.FormatDate(report.AsOf), report.Executed, report.Failed, report.Skipped)
	}
}
