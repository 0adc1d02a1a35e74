package instruction

import (
	"github.com/hance08/paycore/internal/app"
	"github.com/spf13/cobra"
)

// userFlag is the owner every instruction subcommand acts for.
type userFlag struct {
	ID int64
}

func NewInstructionCmd(provide app.Provider) *cobra.Command {
	user := &userFlag{}

	instructionCmd := &cobra.Command{
		Use:     "instruction",
		Aliases: []string{"si"},
		Short:   "Manage standing instructions",
		Long: `Create, inspect and control standing instructions, the recurring
transfers executed by "paycore sweep" and "paycore schedule".`,
	}

	instructionCmd.PersistentFlags().Int64VarP(&user.ID, "user", "u", 0, "User id owning the instructions")
	_ = instructionCmd.MarkPersistentFlagRequired("user")

	instructionCmd.AddCommand(NewCreateCmd(provide, user))
	instructionCmd.AddCommand(NewListCmd(provide, user))
	instructionCmd.AddCommand(NewShowCmd(provide, user))
	instructionCmd.AddCommand(NewStatsCmd(provide, user))
	for _, action := range lifecycleActions {
		instructionCmd.AddCommand(newLifecycleCmd(provide, user, action))
	}

	return instructionCmd
}
