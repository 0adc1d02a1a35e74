package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// IdempotencyRecord is the stored outcome of a keyed transfer.
type IdempotencyRecord struct {
	Key              string
	RequestHash      string
	TransactionID    string
	Rail             string
	SourceAccountID  int64
	Destination      string
	Amount           decimal.Decimal
	RemainingBalance decimal.Decimal
	CreatedAt        time.Time
}
