package prompts

import (
	"github.com/charmbracelet/huh"
	"github.com/hance08/paycore/internal/model"
)

// PromptRail prompts for the payment rail
func PromptRail() (model.Rail, error) {
	rail := model.RailInternal

	err := huh.NewSelect[model.Rail]().
		Title("Transfer via:").
		Description("RTGS requires at least 2,00,000. NEFT requires at least 1.").
		Options(
			huh.NewOption("INTERNAL - Another account in this bank", model.RailInternal),
			huh.NewOption("UPI - Virtual payment address", model.RailUPI),
			huh.NewOption("NEFT - Account number and IFSC", model.RailNEFT),
			huh.NewOption("RTGS - High value, account number and IFSC", model.RailRTGS),
		).
		Value(&rail).
		Run()

	return rail, err
}

// PromptDestination prompts for the rail specific destination identifier
func PromptDestination(rail model.Rail, validator func(string) error) (string, error) {
	message := "Destination account number:"
	switch rail {
	case model.RailUPI:
		message = "Destination VPA (name@bank):"
	case model.RailNEFT, model.RailRTGS:
		message = "Destination account@IFSC:"
	}
	return PromptInput(message, "", validator)
}
