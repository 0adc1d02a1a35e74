package model_test

import (
	"testing"

	"github.com/hance08/paycore/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(19999999), model.ToMinorUnits(decimal.RequireFromString("199999.99")))
	assert.Equal(t, int64(100), model.ToMinorUnits(decimal.NewFromInt(1)))
	assert.True(t, decimal.RequireFromString("1000.5").Equal(model.FromMinorUnits(100050)))
}

func TestHasMoneyScale(t *testing.T) {
	t.Parallel()

	assert.True(t, model.HasMoneyScale(decimal.RequireFromString("10")))
	assert.True(t, model.HasMoneyScale(decimal.RequireFromString("10.25")))
	assert.True(t, model.HasMoneyScale(decimal.RequireFromString("10.250")))
	assert.False(t, model.HasMoneyScale(decimal.RequireFromString("10.255")))
}

func TestParseRail(t *testing.T) {
	t.Parallel()

	r, err := model.ParseRail("rtgs")
	assert.NoError(t, err)
	assert.Equal(t, model.RailRTGS, r)
	assert.Equal(t, "INT", model.RailInternal.TransactionPrefix())
	assert.Equal(t, model.EntryTransfer, model.RailInternal.EntryType())
	assert.Equal(t, model.EntryUPI, model.RailUPI.EntryType())

	_, err = model.ParseRail("SWIFT")
	assert.ErrorIs(t, err, model.ErrUnknownRail)
}
