package prompts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/hance08/paycore/internal/model"
)

// PromptFrequency prompts for how often a standing instruction runs
func PromptFrequency() (model.Frequency, error) {
	freq := model.Monthly

	var opts []huh.Option[model.Frequency]
	for _, f := range model.Frequencies {
		label := strings.ReplaceAll(string(f), "_", " ")
		opts = append(opts, huh.NewOption(label, f))
	}

	err := huh.NewSelect[model.Frequency]().
		Title("Frequency:").
		Options(opts...).
		Value(&freq).
		Run()
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	return freq, nil
}

// PromptInstructionType prompts for the purpose of the instruction
func PromptInstructionType() (model.InstructionType, error) {
	t := model.FundTransfer

	var opts []huh.Option[model.InstructionType]
	for _, it := range model.InstructionTypes {
		label := strings.ReplaceAll(string(it), "_", " ")
		opts = append(opts, huh.NewOption(label, it))
	}

	err := huh.NewSelect[model.InstructionType]().
		Title("Instruction type:").
		Options(opts...).
		Value(&t).
		Height(10).
		Run()
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	return t, nil
}
