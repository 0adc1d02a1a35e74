package views

import (
	"fmt"

	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/utils"
	"github.com/pterm/pterm"
)

type AccountListView struct{}

func NewAccountListView() *AccountListView {
	return &AccountListView{}
}

func (v *AccountListView) Render(accounts []*model.Account) error {
	if len(accounts) == 0 {
		pterm.Warning.Println("No accounts found")
		return nil
	}

	headers := []string{"Number", "User", "Type", "Status", "Balance"}
	tableData := pterm.TableData{headers}

	for _, acc := range accounts {
		balance := utils.FormatAmount(acc.Balance)

		var coloredNumber, coloredStatus string
		switch acc.Status {
		case model.AccountActive:
			coloredNumber = pterm.Green(acc.Number)
			coloredStatus = pterm.Green(string(acc.Status))
		case model.AccountFrozen, model.AccountClosed, model.AccountRejected:
			coloredNumber = pterm.Red(acc.Number)
			coloredStatus = pterm.Red(string(acc.Status))
		default:
			coloredNumber = pterm.Gray(acc.Number)
			coloredStatus = pterm.Gray(string(acc.Status))
		}
		tableData = append(tableData, []string{
			coloredNumber,
			fmt.Sprintf("%d", acc.UserID),
			acc.Type,
			coloredStatus,
			balance,
		})
	}

	pterm.DefaultSection.Printf("Account List")
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return err
	}

	pterm.Info.Printf("Total: %d accounts\n", len(accounts))

	return nil
}

func RenderAccountSuccess(acc *model.Account) error {
	tableData := pterm.TableData{
		{pterm.Blue("Account ID"), fmt.Sprintf("%d", acc.ID)},
		{pterm.Blue("Number"), acc.Number},
		{pterm.Blue("Type"), acc.Type},
		{pterm.Blue("Status"), string(acc.Status)},
		{pterm.Blue("Balance"), utils.FormatAmount(acc.Balance)},
	}

	if err := pterm.DefaultTable.WithData(tableData).Render(); err != nil {
		return err
	}

	pterm.Success.Print("Account opened successfully!\n")

	return nil
}
