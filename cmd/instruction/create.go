package instruction

import (
	"context"
	"fmt"
	"time"

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

type createFlags struct {
	Name          string
	Description   string
	Type          string
	From          string
	To            string
	Beneficiary   string
	Amount        string
	Frequency     string
	Start         string
	End           string
	MaxExecutions int
}

type createRunner struct {
	app       *app.App
	user      *userFlag
	flags     *createFlags
	cmd       *cobra.Command
	validator *validation.AccountValidator
}

func NewCreateCmd(provide app.Provider, user *userFlag) *cobra.Command {
	flags := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a standing instruction",
		Long: `Create a recurring transfer from one of the user's accounts.

The first execution is one period after the start date.

Examples:
	# Interactive mode
	paycore instruction create -u 7

	# Quick mode with flags
	paycore instruction create -u 7 --name Rent --from ACC-001 --to ACC-002 \
		--amount 15000 --frequency MONTHLY --start 2026-03-01 --max 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := provide()
			runner := &createRunner{
				app:       a,
				user:      user,
				flags:     flags,
				cmd:       cmd,
				validator: validation.NewAccountValidator(a.Store),
			}
			return runner.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&flags.Name, "name", "", "Instruction name")
	cmd.Flags().StringVar(&flags.Description, "desc", "", "Description (optional)")
	cmd.Flags().StringVar(&flags.Type, "type", string(model.FundTransfer), "Instruction type, e.g. FUND_TRANSFER, BILL_PAYMENT, EMI_PAYMENT")
	cmd.Flags().StringVar(&flags.From, "from", "", "Source account number")
	cmd.Flags().StringVar(&flags.To, "to", "", "Destination account number")
	cmd.Flags().StringVar(&flags.Beneficiary, "beneficiary", "", "Beneficiary name")
	cmd.Flags().StringVar(&flags.Amount, "amount", "", "Amount per execution")
	cmd.Flags().StringVar(&flags.Frequency, "frequency", string(model.Monthly), "DAILY, WEEKLY, MONTHLY, QUARTERLY or YEARLY")
	cmd.Flags().StringVar(&flags.Start, "start", "", "Start date (YYYY-MM-DD), default is today")
	cmd.Flags().StringVar(&flags.End, "end", "", "End date (YYYY-MM-DD, optional)")
	cmd.Flags().IntVar(&flags.MaxExecutions, "max", 0, "Stop after this many executions (optional)")

	return cmd
}

func (r *createRunner) Run(ctx context.Context) error {
	var (
		in  service.CreateInstructionInput
		err error
	)

	if r.cmd.Flags().Changed("name") || r.cmd.Flags().Changed("from") || r.cmd.Flags().Changed("amount") {
		in, err = r.flagsMode()
	} else {
		in, err = r.interactiveMode()
	}
	if err != nil {
		return err
	}
	in.UserID = r.user.ID

	si, err := r.app.Service.Instruction.Create(ctx, in)
	if err != nil {
		return err
	}

	ui.Separator()
	if err := views.RenderInstructionDetail(si); err != nil {
		return err
	}
	pterm.Success.Printf("Standing instruction %s created!\n", si.InstructionID)
	return nil
}

func (r *createRunner) flagsMode() (service.CreateInstructionInput, error) {
	if r.flags.Name == "" || r.flags.From == "" || r.flags.To == "" || r.flags.Amount == "" {
		return service.CreateInstructionInput{}, fmt.Errorf("when using flags, --name, --from, --to and --amount are all required")
	}

	instType, err := model.ParseInstructionType(r.flags.Type)
	if err != nil {
		return service.CreateInstructionInput{}, err
	}
	freq, err := model.ParseFrequency(r.flags.Frequency)
	if err != nil {
		return service.CreateInstructionInput{}, err
	}
	amount, err := utils.ParseAmount(r.flags.Amount)
	if err != nil {
		return service.CreateInstructionInput{}, fmt.Errorf("invalid amount: %w", err)
	}

	start := model.Date(time.Now())
	if r.flags.Start != "" {
		if start, err = utils.ParseDate(r.flags.Start); err != nil {
			return service.CreateInstructionInput{}, err
		}
	}

	in := service.CreateInstructionInput{
		Name:            r.flags.Name,
		Description:     r.flags.Description,
		Type:            instType,
		FromAccount:     r.flags.From,
		ToAccount:       r.flags.To,
		BeneficiaryName: r.flags.Beneficiary,
		Amount:          amount,
		Frequency:       freq,
		StartDate:       start,
	}

	if r.flags.End != "" {
		end, err := utils.ParseDate(r.flags.End)
		if err != nil {
			return service.CreateInstructionInput{}, err
		}
		in.EndDate = &end
	}
	if r.cmd.Flags().Changed("max") {
		in.MaxExecutions = &r.flags.MaxExecutions
	}

	return in, nil
}

func (r *createRunner) interactiveMode() (service.CreateInstructionInput, error) {
	var in service.CreateInstructionInput
	var err error

	// Step 1: What it is
	if in.Name, err = prompts.PromptInput("Name:", "", validation.ValidateName); err != nil {
		return in, err
	}
	if in.Type, err = prompts.PromptInstructionType(); err != nil {
		return in, err
	}
	if in.Description, err = prompts.PromptNote("Description (optional):", false); err != nil {
		return in, err
	}

	// Step 2: Accounts
	if in.FromAccount, err = prompts.PromptAccountNumber("From Account:", r.validator.ValidateOwnedAccount(r.user.ID)); err != nil {
		return in, err
	}
	if in.ToAccount, err = prompts.PromptAccountNumber("To Account:", validation.ValidateAccountNumber); err != nil {
		return in, err
	}
	if in.BeneficiaryName, err = prompts.PromptNote("Beneficiary name (optional):", false); err != nil {
		return in, err
	}

	// Step 3: Amount and schedule
	if in.Amount, err = prompts.PromptAmount("Amount:", "Charged on every execution", validation.ValidateAmount); err != nil {
		return in, err
	}
	if in.Frequency, err = prompts.PromptFrequency(); err != nil {
		return in, err
	}

	start, err := prompts.PromptDate("Start Date:", model.Date(time.Now()), "YYYY-MM-DD, press Enter for today", validation.ValidateOptionalDate)
	if err != nil {
		return in, err
	}
	in.StartDate = *start

	if in.EndDate, err = prompts.PromptDate("End Date (optional):", time.Time{}, "YYYY-MM-DD, leave empty to run until cancelled", validation.ValidateOptionalDate); err != nil {
		return in, err
	}

	confirm, err := prompts.PromptConfirm("Create this standing instruction?", true)
	if err != nil {
		return in, err
	}
	if !confirm {
		return in, fmt.Errorf("instruction creation cancelled")
	}

	return in, nil
}
