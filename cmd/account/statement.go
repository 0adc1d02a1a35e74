package account

import (
	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/constants"
	"github.com/hance08/paycore/internal/ui/views"
	"github.com/spf13/cobra"
)

func NewStatementCmd(provide app.Provider) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "statement <number>",
		Short: "Show the latest ledger entries of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := provide().Service.Account

			acc, err := svc.GetByNumber(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			entries, err := svc.Statement(cmd.Context(), acc.ID, limit)
			if err != nil {
				return err
			}

			return views.RenderStatement(acc, entries, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", constants.DefaultStatementLimit, "Number of entries to show")

	return cmd
}
