package prompts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/utils"
)

// PromptAccountType prompts for account type selection
func PromptAccountType() (string, error) {
	options := []string{
		"SAVINGS - Savings Account",
		"CURRENT - Current Account",
	}

	selected, err := PromptSelect("Account Type:", options, "SAVINGS")
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}

	return strings.Split(selected, " ")[0], nil
}

// PromptAccountNumber prompts for an account number with validation
func PromptAccountNumber(message string, validator func(string) error) (string, error) {
	number, err := PromptInput(message, "", validator)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(number), nil
}

// PromptOpeningBalance prompts for opening balance with validation
func PromptOpeningBalance(validator func(string) error) (string, error) {
	return PromptInput("Opening Balance (press Enter for 0):", "0", validator)
}

// PromptAccountSelection lets the user pick one of the active accounts,
// showing each balance.
func PromptAccountSelection(accounts []*model.Account, message string) (*model.Account, error) {
	var opts []huh.Option[int64]
	byID := make(map[int64]*model.Account)

	for _, acc := range accounts {
		if !acc.IsActive() {
			continue
		}
		display := fmt.Sprintf("%s (Balance: %s)", acc.Number, utils.FormatAmount(acc.Balance))
		opts = append(opts, huh.NewOption(display, acc.ID))
		byID[acc.ID] = acc
	}

	if len(opts) == 0 {
		return nil, fmt.Errorf("no active accounts available")
	}

	var selected int64
	err := huh.NewSelect[int64]().
		Title(message).
		Options(opts...).
		Value(&selected).
		Height(15).
		Run()
	if err != nil {
		return nil, err
	}

	return byID[selected], nil
}
