package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/hance08/paycore/internal/constants"
	"github.com/hance08/paycore/internal/model"
	"github.com/shopspring/decimal"
)

func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(constants.MoneyScale)
}

// FormatSigned renders credits with a leading '+'.
func FormatSigned(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + FormatAmount(amount)
	}
	return FormatAmount(amount)
}

// ParseAmount accepts "150", "150.5" and "150.50". Grouping commas are
// ignored; more than two decimals is an error rather than a silent
// truncation.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(amountStr), ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("amount can't be empty")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %s", amountStr)
	}
	if !model.HasMoneyScale(amount) {
		return decimal.Zero, fmt.Errorf("invalid amount: %s has more than %d decimals", amountStr, constants.MoneyScale)
	}
	return amount, nil
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s', expected format YYYY-MM-DD", s)
	}
	return model.Date(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// FormatOptionalDate renders nil as "-".
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatDate(*t)
}
