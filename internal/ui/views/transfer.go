package views

import (
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/ui"
	"github.com/hance08/paycore/internal/utils"
	"github.com/pterm/pterm"
)

type TransferSummaryItem struct {
	From        string
	Destination string
	Rail        string
	Amount      string
	Note        string
	Key         string
}

func RenderTransferSummary(item TransferSummaryItem) error {
	pterm.DefaultSection.Println("Transfer Summary")

	note := item.Note
	if note == "" {
		note = "-"
	}

	tableData := pterm.TableData{
		{"Field", "Value"},
		{"From", item.From},
		{"To", item.Destination},
		{"Rail", item.Rail},
		{"Amount", item.Amount},
		{"Note", note},
		{"Idempotency Key", item.Key},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func RenderTransferResult(res *service.TransferResult) error {
	ui.Separator()

	tableData := pterm.TableData{
		{pterm.Blue("Transaction"), res.TransactionID},
		{pterm.Blue("Rail"), string(res.Rail)},
		{pterm.Blue("To"), res.Destination},
		{pterm.Blue("Amount"), utils.FormatAmount(res.Amount)},
		{pterm.Blue("Remaining Balance"), utils.FormatAmount(res.RemainingBalance)},
		{pterm.Blue("Completed At"), res.CompletedAt.Format("2006-01-02 15:04:05")},
	}
	if err := pterm.DefaultTable.WithData(tableData).Render(); err != nil {
		return err
	}

	if res.Replayed {
		pterm.Info.Printf("Transfer %s was already completed, nothing was charged again\n", res.TransactionID)
		return nil
	}
	pterm.Success.Println("Transfer completed successfully!")
	return nil
}
