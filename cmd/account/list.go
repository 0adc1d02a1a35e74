package account

import (
	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/ui/views"
	"github.com/spf13/cobra"
)

func NewListCmd(provide app.Provider) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List accounts with their balance and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *int64
			if cmd.Flags().Changed("user") {
				filter = &userID
			}

			accounts, err := provide().Service.Account.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return views.NewAccountListView().Render(accounts)
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "Only list this user's accounts")

	return cmd
}
