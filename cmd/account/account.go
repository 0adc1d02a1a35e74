package account

import (
	"github.com/hance08/paycore/internal/app"
	"github.com/spf13/cobra"
)

func NewAccountCmd(provide app.Provider) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Open accounts, change their status and show balances and statements.",
		Long:  `Open accounts, change their status and show balances and statements.`,
	}

	accountCmd.AddCommand(NewOpenCmd(provide))
	accountCmd.AddCommand(NewListCmd(provide))
	accountCmd.AddCommand(NewStatusCmd(provide))
	accountCmd.AddCommand(NewStatementCmd(provide))

	return accountCmd
}
