package instruction

import (
	"context"
	"fmt"

	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/ui/prompts"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type lifecycleAction struct {
	use     string
	short   string
	confirm string
	done    string
	run     func(svc *service.InstructionService, ctx context.Context, userID int64, id string) (*model.StandingInstruction, error)
}

var lifecycleActions = []lifecycleAction{
	{
		use:   "pause",
		short: "Pause an active instruction",
		done:  "paused",
		run:   (*service.InstructionService).Pause,
	},
	{
		use:   "resume",
		short: "Resume a paused instruction",
		done:  "resumed",
		run:   (*service.InstructionService).Resume,
	},
	{
		use:     "cancel",
		short:   "Cancel an instruction for good",
		confirm: "Cancel standing instruction %s? This cannot be undone.",
		done:    "cancelled",
		run:     (*service.InstructionService).Cancel,
	},
}

func newLifecycleCmd(provide app.Provider, user *userFlag, action lifecycleAction) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   action.use + " <instruction-id>",
		Short: action.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if action.confirm != "" && !yes {
				ok, err := prompts.PromptConfirm(fmt.Sprintf(action.confirm, id), false)
				if err != nil {
					return err
				}
				if !ok {
					pterm.Info.Println("Nothing changed")
					return nil
				}
			}

			si, err := action.run(provide().Service.Instruction, cmd.Context(), user.ID, id)
			if err != nil {
				return err
			}

			pterm.Success.Printf("Standing instruction %s %s\n", si.InstructionID, action.done)
			return nil
		},
	}
	if action.confirm != "" {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation")
	}

	return cmd
}
