package instruction

import (
	"time"

	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/ui/views"
	"github.com/spf13/cobra"
)

func NewListCmd(provide app.Provider, user *userFlag) *cobra.Command {
	var (
		status string
		due    bool
		failed bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List standing instructions",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := provide().Service.Instruction
			ctx := cmd.Context()

			var (
				list []*model.StandingInstruction
				err  error
			)
			switch {
			case due:
				list, err = svc.Due(ctx, user.ID, model.Date(time.Now()))
			case failed:
				list, err = svc.Failed(ctx, user.ID)
			default:
				var st model.InstructionStatus
				if status != "" {
					if st, err = model.ParseInstructionStatus(status); err != nil {
						return err
					}
				}
				list, err = svc.List(ctx, user.ID, st)
			}
			if err != nil {
				return err
			}

			return views.RenderInstructionList(list)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only show this status (ACTIVE, PAUSED, COMPLETED, CANCELLED, FAILED)")
	cmd.Flags().BoolVar(&due, "due", false, "Only show instructions due today")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only show failed instructions")
	cmd.MarkFlagsMutuallyExclusive("status", "due", "failed")

	return cmd
}

func NewShowCmd(provide app.Provider, user *userFlag) *cobra.Command {
	return &cobra.Command{
		Use:   "show <instruction-id>",
		Short: "Show a standing instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			si, err := provide().Service.Instruction.Get(cmd.Context(), user.ID, args[0])
			if err != nil {
				return err
			}
			return views.RenderInstructionDetail(si)
		},
	}
}

func NewStatsCmd(provide app.Provider, user *userFlag) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show standing instruction counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := provide().Service.Instruction.Statistics(cmd.Context(), user.ID, model.Date(time.Now()))
			if err != nil {
				return err
			}
			return views.RenderInstructionStatistics(stats)
		},
	}
}
