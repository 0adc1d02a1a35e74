package views

import (
	"fmt"

	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/utils"
	"github.com/pterm/pterm"
)

func RenderSweepReport(report *service.SweepReport) error {
	pterm.DefaultSection.Printf("Sweep as of %s", utils.FormatDate(report.AsOf))

	tableData := pterm.TableData{
		{"Executed", pterm.Green(fmt.Sprintf("%d", report.Executed))},
		{"Failed", pterm.Red(fmt.Sprintf("%d", report.Failed))},
		{"Skipped", fmt.Sprintf("%d", report.Skipped)},
	}
	if err := pterm.DefaultTable.WithData(tableData).Render(); err != nil {
		return err
	}

	if len(report.Failures) == 0 {
		return nil
	}

	failures := pterm.TableData{{"Instruction", "Reason"}}
	for _, f := range report.Failures {
		failures = append(failures, []string{f.InstructionID, service.UserMessage(f.Cause)})
	}
	pterm.Warning.Println("Some instructions could not be executed")
	return pterm.DefaultTable.WithHasHeader().WithData(failures).Render()
}
