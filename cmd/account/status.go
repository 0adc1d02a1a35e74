package account

import (
	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func NewStatusCmd(provide app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "status <number> <status>",
		Short: "Change an account's status",
		Long: `Change an account's status. Only ACTIVE accounts can send or receive
transfers; standing instructions from a non active account fail.

Statuses: PENDING, ACTIVE, FROZEN, CLOSED, REJECTED

Example: paycore account status ACC-001 FROZEN`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseAccountStatus(args[1])
			if err != nil {
				return err
			}

			acc, err := provide().Service.Account.SetStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}

			pterm.Success.Printf("Account %s is now %s\n", acc.Number, acc.Status)
			return nil
		},
	}
}
