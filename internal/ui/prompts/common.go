package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/huh"
	"github.com/hance08/paycore/internal/ui"
	"github.com/hance08/paycore/internal/utils"
	"github.com/shopspring/decimal"
)

// PromptNote prompts for a free text note
func PromptNote(message string, required bool) (string, error) {
	var note string

	input := huh.NewInput().
		Title(message).
		Value(&note)

	if required {
		input.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", strings.TrimSuffix(strings.ToLower(message), ":"))
			}
			return nil
		})
	}

	err := input.Run()
	return strings.TrimSpace(note), err
}

// PromptAmount prompts for a money amount and parses it
func PromptAmount(message string, helpText string, validator func(string) error) (decimal.Decimal, error) {
	var raw string

	input := huh.NewInput().
		Title(message).
		Description(helpText).
		Value(&raw)

	if validator != nil {
		input.Validate(validator)
	}

	if err := input.Run(); err != nil {
		return decimal.Zero, err
	}
	return utils.ParseAmount(raw)
}

// PromptConfirm asks a yes/no question
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	confirm := defaultValue

	err := survey.AskOne(&survey.Confirm{
		Message: message,
		Default: defaultValue,
	}, &confirm, ui.IconOption())

	return confirm, err
}

// PromptDate prompts for a date in YYYY-MM-DD format. Empty input picks
// defaultDate; a zero defaultDate makes the date optional.
func PromptDate(message string, defaultDate time.Time, helpText string, validator func(string) error) (*time.Time, error) {
	var raw string

	placeholder := ""
	if !defaultDate.IsZero() {
		placeholder = utils.FormatDate(defaultDate)
	}

	input := huh.NewInput().
		Title(message).
		Description(helpText).
		Placeholder(placeholder).
		Value(&raw)
	if validator != nil {
		input.Validate(validator)
	}
	if err := input.Run(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(raw) == "" {
		if defaultDate.IsZero() {
			return nil, nil
		}
		return &defaultDate, nil
	}

	date, err := utils.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

// PromptInput prompts for a generic text input with optional default and validator
func PromptInput(message string, defaultValue string, validator func(string) error) (string, error) {
	var inputVal string

	input := huh.NewInput().
		Title(message).
		Value(&inputVal)

	if defaultValue != "" {
		input.Placeholder(defaultValue)
	}

	if validator != nil {
		input.Validate(func(s string) error {
			if s == "" && defaultValue != "" {
				s = defaultValue
			}
			return validator(s)
		})
	}

	err := input.Run()
	if err != nil {
		return "", err
	}

	if inputVal == "" && defaultValue != "" {
		return defaultValue, nil
	}

	return inputVal, nil
}

// PromptSelect prompts for a selection from a list of options
func PromptSelect(message string, options []string, defaultOption string) (string, error) {
	selected := ""
	for _, o := range options {
		if o == defaultOption || strings.HasPrefix(o, defaultOption+" ") {
			selected = o
			break
		}
	}

	var opts []huh.Option[string]
	for _, o := range options {
		opts = append(opts, huh.NewOption(o, o))
	}

	err := huh.NewSelect[string]().
		Title(message).
		Options(opts...).
		Value(&selected).
		Run()
	return selected, err
}
