package views

import (
	"fmt"

	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/ui"
	"github.com/hance08/paycore/internal/utils"
	"github.com/pterm/pterm"
)

func colorStatus(status model.InstructionStatus) string {
	switch status {
	case model.InstructionActive:
		return pterm.Green(string(status))
	case model.InstructionPaused:
		return pterm.Yellow(string(status))
	case model.InstructionFailed:
		return pterm.Red(string(status))
	default:
		return pterm.Gray(string(status))
	}
}

func RenderInstructionList(list []*model.StandingInstruction) error {
	if len(list) == 0 {
		pterm.Warning.Println("No standing instructions found")
		return nil
	}

	tableData := pterm.TableData{
		{"ID", "Name", "From", "To", "Amount", "Frequency", "Next", "Runs", "Status"},
	}
	for _, si := range list {
		runs := fmt.Sprintf("%d", si.ExecutionCount)
		if si.MaxExecutions != nil {
			runs = fmt.Sprintf("%d/%d", si.ExecutionCount, *si.MaxExecutions)
		}
		tableData = append(tableData, []string{
			si.InstructionID,
			si.Name,
			si.FromAccount,
			si.ToAccount,
			utils.FormatAmount(si.Amount),
			string(si.Frequency),
			utils.FormatDate(si.NextExecutionDate),
			runs,
			colorStatus(si.Status),
		})
	}

	pterm.DefaultSection.Printf("Standing Instructions")
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("Total: %d instructions\n", len(list))
	return nil
}

func RenderInstructionDetail(si *model.StandingInstruction) error {
	pterm.Println()
	ui.PrintL2Title("Standing Instruction %s", si.InstructionID)

	maxExec := "unlimited"
	if si.MaxExecutions != nil {
		maxExec = fmt.Sprintf("%d", *si.MaxExecutions)
	}
	lastExecuted := "-"
	if si.LastExecuted != nil {
		lastExecuted = si.LastExecuted.Format("2006-01-02 15:04")
	}
	reason := si.FailureReason
	if reason == "" {
		reason = "-"
	}

	infoData := pterm.TableData{
		{"Field", "Value"},
		{"Name", si.Name},
		{"Description", si.Description},
		{"Type", string(si.Type)},
		{"From", si.FromAccount},
		{"To", si.ToAccount},
		{"Beneficiary", si.BeneficiaryName},
		{"Amount", utils.FormatAmount(si.Amount)},
		{"Frequency", string(si.Frequency)},
		{"Start Date", utils.FormatDate(si.StartDate)},
		{"End Date", utils.FormatOptionalDate(si.EndDate)},
		{"Next Execution", utils.FormatDate(si.NextExecutionDate)},
		{"Last Executed", lastExecuted},
		{"Executions", fmt.Sprintf("%d of %s", si.ExecutionCount, maxExec)},
		{"Status", colorStatus(si.Status)},
		{"Reason", reason},
	}
	return pterm.DefaultTable.
		WithHasHeader().
		WithHeaderStyle(pterm.NewStyle(pterm.FgGray)).
		WithData(infoData).
		Render()
}

func RenderInstructionStatistics(stats *service.InstructionStatistics) error {
	pterm.DefaultSection.Println("Standing Instruction Statistics")

	tableData := pterm.TableData{
		{"Total", fmt.Sprintf("%d", stats.Total)},
		{"Active", pterm.Green(fmt.Sprintf("%d", stats.Active))},
		{"Paused", pterm.Yellow(fmt.Sprintf("%d", stats.Paused))},
		{"Completed", fmt.Sprintf("%d", stats.Completed)},
		{"Cancelled", fmt.Sprintf("%d", stats.Cancelled)},
		{"Failed", pterm.Red(fmt.Sprintf("%d", stats.Failed))},
		{"Due Today", fmt.Sprintf("%d", stats.DueToday)},
		{"Expiring Soon", fmt.Sprintf("%d", stats.ExpiringSoon)},
	}
	return pterm.DefaultTable.WithData(tableData).Render()
}
