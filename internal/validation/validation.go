package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/hance08/paycore/internal/constants"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/store"
	"github.com/hance08/paycore/internal/utils"
)

// AccountLookup is the read access the validators need.
type AccountLookup interface {
	GetAccountByNumber(ctx context.Context, number string) (*model.Account, error)
}

// AccountValidator checks prompt input against stored accounts
type AccountValidator struct {
	accounts AccountLookup
}

func NewAccountValidator(accounts AccountLookup) *AccountValidator {
	return &AccountValidator{accounts: accounts}
}

// ValidateAccountNumber validates the format of an account number without
// checking whether it exists
func ValidateAccountNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return fmt.Errorf("account number can't be empty")
	}
	if len(number) > constants.MaxNameLen {
		return fmt.Errorf("account number too long (max %d characters)", constants.MaxNameLen)
	}
	for _, r := range number {
		if unicode.IsSpace(r) {
			return fmt.Errorf("account number cannot contain spaces")
		}
	}
	return nil
}

// ValidateNewAccountNumber rejects numbers that are malformed or already taken.
func (v *AccountValidator) ValidateNewAccountNumber(number string) error {
	if err := ValidateAccountNumber(number); err != nil {
		return err
	}

	_, err := v.accounts.GetAccountByNumber(context.Background(), strings.TrimSpace(number))
	switch {
	case err == nil:
		return fmt.Errorf("account '%s' already exists", strings.TrimSpace(number))
	case errors.Is(err, store.ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check account: %w", err)
	}
}

// ValidateOwnedAccount returns a validator accepting only accounts held by userID.
func (v *AccountValidator) ValidateOwnedAccount(userID int64) func(string) error {
	return func(number string) error {
		if err := ValidateAccountNumber(number); err != nil {
			return err
		}

		acc, err := v.accounts.GetAccountByNumber(context.Background(), strings.TrimSpace(number))
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return fmt.Errorf("account '%s' not found", strings.TrimSpace(number))
			}
			return fmt.Errorf("failed to check account: %w", err)
		}
		if acc.UserID != userID {
			return fmt.Errorf("account '%s' does not belong to user %d", acc.Number, userID)
		}
		return nil
	}
}

// ValidateAmount accepts positive amounts with at most two decimals.
func ValidateAmount(input string) error {
	amount, err := utils.ParseAmount(input)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be greater than 0")
	}
	if amount.GreaterThan(constants.MaxTransferAmount) {
		return fmt.Errorf("amount exceeds the per-transfer limit of %s", utils.FormatAmount(constants.MaxTransferAmount))
	}
	return nil
}

// ValidateOpeningBalance allows empty input, meaning zero.
func ValidateOpeningBalance(input string) error {
	input = strings.TrimSpace(input)
	if input == "" || input == "0" {
		return nil
	}

	amount, err := utils.ParseAmount(input)
	if err != nil {
		return err
	}
	if amount.IsNegative() {
		return fmt.Errorf("opening balance can't be negative")
	}
	return nil
}

func ValidateDate(input string) error {
	_, err := utils.ParseDate(input)
	return err
}

// ValidateOptionalDate allows empty input.
func ValidateOptionalDate(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	return ValidateDate(input)
}

func ValidateName(input string) error {
	name := strings.TrimSpace(input)
	if name == "" {
		return fmt.Errorf("name can't be empty")
	}
	if len(name) > constants.MaxNameLen {
		return fmt.Errorf("name too long (max %d characters)", constants.MaxNameLen)
	}
	return nil
}

func ValidateDestination(rail model.Rail) func(string) error {
	return func(input string) error {
		dest := strings.TrimSpace(input)
		if dest == "" {
			return fmt.Errorf("destination can't be empty")
		}
		if rail == model.RailUPI && !strings.Contains(dest, "@") {
			return fmt.Errorf("UPI destination must be a VPA like name@bank")
		}
		return nil
	}
}
