package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/ui/prompts"
	"github.com/hance08/paycore/internal/ui/views"
	"github.com/hance08/paycore/internal/utils"
	"github.com/hance08/paycore/internal/validation"
	"github.com/spf13/cobra"
)

type transferFlags struct {
	From         string
	To           string
	Amount       string
	Rail         string
	Counterparty string
	Note         string
	Key          string
	Yes          bool
}

type transferRunner struct {
	app   *app.App
	flags *transferFlags
	cmd   *cobra.Command
}

func NewTransferCmd(provide app.Provider) *cobra.Command {
	flags := &transferFlags{}

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money from an account over a payment rail",
		Long: `Move money from one of your accounts.

	INTERNAL transfers credit another account in this bank. UPI, NEFT and RTGS
	debit the source only; the external leg settles outside paycore.

	Examples:
	# Interactive mode
	paycore transfer

	# Quick mode with flags
	paycore transfer --from ACC-001 --to ACC-002 --amount 1500 --key pay-acc002-0001
	paycore transfer --from ACC-001 --rail UPI --to landlord@okbank --amount 25000 --key rent-2026-03`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &transferRunner{
				app:   provide(),
				flags: flags,
				cmd:   cmd,
			}
			return runner.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&flags.From, "from", "f", "", "Source account number")
	cmd.Flags().StringVarP(&flags.To, "to", "t", "", "Destination: account number, VPA (UPI) or account@IFSC (NEFT/RTGS)")
	cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", "Amount (e.g., 150 or 150.50)")
	cmd.Flags().StringVarP(&flags.Rail, "rail", "r", string(model.RailInternal), "Rail: INTERNAL, UPI, NEFT or RTGS")
	cmd.Flags().StringVarP(&flags.Counterparty, "name", "n", "", "Beneficiary name")
	cmd.Flags().StringVarP(&flags.Note, "note", "d", "", "Transfer note")
	cmd.Flags().StringVarP(&flags.Key, "key", "k", "", "Idempotency key (required with flags); repeating a transfer with the same key does not charge twice")
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Skip the confirmation in interactive mode")

	return cmd
}

func (r *transferRunner) Run(ctx context.Context) error {
	hasFlags := r.cmd.Flags().Changed("from") || r.cmd.Flags().Changed("to") ||
		r.cmd.Flags().Changed("amount")

	var (
		req service.TransferRequest
		err error
	)
	if hasFlags {
		req, err = r.flagsMode(ctx)
	} else {
		req, err = r.interactiveMode(ctx)
	}
	if err != nil {
		return err
	}

	res, err := r.app.Service.Transfer.Execute(ctx, req)
	if err != nil {
		return err
	}

	return views.RenderTransferResult(res)
}

func (r *transferRunner) flagsMode(ctx context.Context) (service.TransferRequest, error) {
	if r.flags.From == "" || r.flags.To == "" || r.flags.Amount == "" {
		return service.TransferRequest{}, fmt.Errorf("when using flags, --from, --to and --amount are all required")
	}
	key := strings.TrimSpace(r.flags.Key)
	if key == "" {
		return service.TransferRequest{}, fmt.Errorf("when using flags, --key is required; reuse the same key when retrying")
	}

	rail, err := model.ParseRail(r.flags.Rail)
	if err != nil {
		return service.TransferRequest{}, err
	}

	amount, err := utils.ParseAmount(r.flags.Amount)
	if err != nil {
		return service.TransferRequest{}, fmt.Errorf("invalid amount: %w", err)
	}

	source, err := r.app.Service.Account.GetByNumber(ctx, r.flags.From)
	if err != nil {
		return service.TransferRequest{}, err
	}

	return service.TransferRequest{
		SourceAccountID:  source.ID,
		Amount:           amount,
		Rail:             rail,
		Destination:      strings.TrimSpace(r.flags.To),
		CounterpartyName: r.flags.Counterparty,
		Note:             r.flags.Note,
		IdempotencyKey:   key,
	}, nil
}

func (r *transferRunner) interactiveMode(ctx context.Context) (service.TransferRequest, error) {
	accounts, err := r.app.Service.Account.List(ctx, nil)
	if err != nil {
		return service.TransferRequest{}, fmt.Errorf("failed to load accounts: %w", err)
	}

	// Step 1: Source account
	source, err := prompts.PromptAccountSelection(accounts, "From Account:")
	if err != nil {
		return service.TransferRequest{}, err
	}

	// Step 2: Rail and destination
	rail, err := prompts.PromptRail()
	if err != nil {
		return service.TransferRequest{}, err
	}

	destination, err := prompts.PromptDestination(rail, validation.ValidateDestination(rail))
	if err != nil {
		return service.TransferRequest{}, err
	}

	var counterparty string
	if rail != model.RailInternal {
		counterparty, err = prompts.PromptNote("Beneficiary name:", true)
		if err != nil {
			return service.TransferRequest{}, err
		}
	}

	// Step 3: Amount
	amount, err := prompts.PromptAmount(
		"Amount:",
		fmt.Sprintf("Available: %s", utils.FormatAmount(source.Balance)),
		validation.ValidateAmount,
	)
	if err != nil {
		return service.TransferRequest{}, err
	}

	// Step 4: Note (optional)
	note, err := prompts.PromptNote("Note (optional):", false)
	if err != nil {
		return service.TransferRequest{}, err
	}

	// One key per confirmed transfer; pass --key to reuse it across runs.
	key := strings.TrimSpace(r.flags.Key)
	if key == "" {
		key = "CLI-" + uuid.NewString()
	}

	if err := views.RenderTransferSummary(views.TransferSummaryItem{
		From:        source.Number,
		Destination: destination,
		Rail:        string(rail),
		Amount:      utils.FormatAmount(amount),
		Note:        note,
		Key:         key,
	}); err != nil {
		return service.TransferRequest{}, err
	}

	if !r.flags.Yes {
		confirm, err := prompts.PromptConfirm("Proceed with the transfer?", true)
		if err != nil {
			return service.TransferRequest{}, err
		}
		if !confirm {
			return service.TransferRequest{}, fmt.Errorf("transfer cancelled")
		}
	}

	return service.TransferRequest{
		SourceAccountID:  source.ID,
		Amount:           amount,
		Rail:             rail,
		Destination:      strings.TrimSpace(destination),
		CounterpartyName: counterparty,
		Note:             note,
		IdempotencyKey:   key,
	}, nil
}
