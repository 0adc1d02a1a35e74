package views

import (
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/ui"
	"github.com/hance08/paycore/internal/utils"
	"github.com/pterm/pterm"
)

func RenderStatement(acc *model.Account, entries []*model.LedgerEntry, limit int) error {
	ui.PrintL1Title("Statement %s", acc.Number)
	pterm.Printf("Balance: %s   Status: %s\n\n", utils.FormatAmount(acc.Balance), acc.Status)

	if len(entries) == 0 {
		pterm.Warning.Println("No ledger entries found")
		return nil
	}

	tableData := pterm.TableData{
		{"Date", "Transaction", "Type", "Note", "Amount", "Status"},
	}
	for _, e := range entries {
		tableData = append(tableData, []string{
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.TransactionID,
			string(e.Type),
			e.Note,
			ui.ColorAmount(utils.FormatSigned(e.Amount), e.IsDebit()),
			string(e.Status),
		})
	}

	pterm.DefaultSection.Printf("Showing recent entries (limit: %d)", limit)
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("Total: %d entries\n", len(entries))
	return nil
}
