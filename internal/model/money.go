package model

import (
	"github.com/hance08/paycore/internal/constants"
	"github.com/shopspring/decimal"
)

// HasMoneyScale reports whether d carries at most two fractional digits.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(constants.MoneyScale))
}

// ToMinorUnits converts an amount to paise for storage.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(constants.MoneyScale).Round(0).IntPart()
}

func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -constants.MoneyScale)
}
