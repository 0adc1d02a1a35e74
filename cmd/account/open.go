package account

import (
	"context"
	"fmt"

	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/ui"
	"github.com/hance08/paycore/internal/ui/prompts"
	"github.com/hance08/paycore/internal/ui/views"
	"github.com/hance08/paycore/internal/utils"
	"github.com/hance08/paycore/internal/validation"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type openFlags struct {
	Number  string
	UserID  int64
	Type    string
	Balance string
	Status  string
}

// AccountOpener collects the details of a new account from flags or prompts
type AccountOpener struct {
	input service.OpenAccountInput

	app       *app.App
	validator *validation.AccountValidator
}

func NewAccountOpener(a *app.App) *AccountOpener {
	return &AccountOpener{
		app:       a,
		validator: validation.NewAccountValidator(a.Store),
	}
}

func NewOpenCmd(provide app.Provider) *cobra.Command {
	flags := &openFlags{}

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new account.",
		Long: `Open a new SAVINGS or CURRENT account for a user. A positive opening
balance is recorded as a DEPOSIT entry.

Example: paycore account open -n ACC-001 -u 7 -b 10000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opener := NewAccountOpener(provide())

			if cmd.Flags().Changed("number") {
				return opener.FlagsMode(cmd.Context(), flags)
			}
			return opener.InteractiveMode(cmd.Context(), flags.UserID)
		},
	}

	cmd.Flags().StringVarP(&flags.Number, "number", "n", "", "Account number")
	cmd.Flags().Int64VarP(&flags.UserID, "user", "u", 0, "Owning user id")
	cmd.Flags().StringVarP(&flags.Type, "type", "t", model.AccountTypeSavings, "Account type: SAVINGS or CURRENT")
	cmd.Flags().StringVarP(&flags.Balance, "balance", "b", "", "Opening balance (e.g., 1000 or 1000.50)")
	cmd.Flags().StringVarP(&flags.Status, "status", "s", string(model.AccountActive), "Initial status")

	return cmd
}

// FlagsMode opens an account from command-line flags
func (o *AccountOpener) FlagsMode(ctx context.Context, flags *openFlags) error {
	if err := o.validator.ValidateNewAccountNumber(flags.Number); err != nil {
		return err
	}

	status, err := model.ParseAccountStatus(flags.Status)
	if err != nil {
		return err
	}

	o.input = service.OpenAccountInput{
		Number: flags.Number,
		UserID: flags.UserID,
		Type:   flags.Type,
		Status: status,
	}

	if flags.Balance != "" {
		if err := validation.ValidateOpeningBalance(flags.Balance); err != nil {
			return fmt.Errorf("invalid opening balance: %w", err)
		}
		balance, err := utils.ParseAmount(flags.Balance)
		if err != nil {
			return err
		}
		o.input.OpeningBalance = balance
	}

	return o.Save(ctx)
}

// InteractiveMode opens an account through prompts
func (o *AccountOpener) InteractiveMode(ctx context.Context, userID int64) error {
	// Step 1: Account number
	number, err := prompts.PromptAccountNumber("Account Number:", o.validator.ValidateNewAccountNumber)
	if err != nil {
		return err
	}

	// Step 2: Type
	accType, err := prompts.PromptAccountType()
	if err != nil {
		return err
	}

	// Step 3: Opening balance
	balanceInput, err := prompts.PromptOpeningBalance(validation.ValidateOpeningBalance)
	if err != nil {
		return err
	}
	balance, err := utils.ParseAmount(balanceInput)
	if err != nil {
		return err
	}

	o.input = service.OpenAccountInput{
		Number:         number,
		UserID:         userID,
		Type:           accType,
		OpeningBalance: balance,
	}
	o.displaySummary()

	confirm, err := prompts.PromptConfirm("Proceed with opening the account?", true)
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("account opening cancelled")
	}

	return o.Save(ctx)
}

func (o *AccountOpener) displaySummary() {
	ui.Separator()

	tableData := pterm.TableData{
		{pterm.Blue("Number"), o.input.Number},
		{pterm.Blue("User"), fmt.Sprintf("%d", o.input.UserID)},
		{pterm.Blue("Type"), o.input.Type},
		{pterm.Blue("Opening Balance"), utils.FormatAmount(o.input.OpeningBalance)},
	}

	_ = pterm.DefaultTable.WithData(tableData).Render()
}

// Save opens the account and prints the result
func (o *AccountOpener) Save(ctx context.Context) error {
	acc, err := o.app.Service.Account.Open(ctx, o.input)
	if err != nil {
		return err
	}

	ui.Separator()
	return views.RenderAccountSuccess(acc)
}
