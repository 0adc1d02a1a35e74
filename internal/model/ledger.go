package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryDeposit    EntryType = "DEPOSIT"
	EntryWithdrawal EntryType = "WITHDRAWAL"
	EntryTransfer   EntryType = "TRANSFER"
	EntryUPI        EntryType = "UPI"
	EntryNEFT       EntryType = "NEFT"
	EntryRTGS       EntryType = "RTGS"
	EntryPayment    EntryType = "PAYMENT"
)

type EntryStatus string

const (
	EntryPending   EntryStatus = "PENDING"
	EntryCompleted EntryStatus = "COMPLETED"
	EntryFlagged   EntryStatus = "FLAGGED"
	EntryFailed    EntryStatus = "FAILED"
)

// LedgerEntry is one leg of a money movement. Amount is negative for
// debits and positive for credits. COMPLETED entries are never modified.
type LedgerEntry struct {
	ID                  int64
	TransactionID       string
	AccountID           int64
	Type                EntryType
	Status              EntryStatus
	Amount              decimal.Decimal
	Note                string
	CounterpartyAccount string
	CounterpartyName    string
	CreatedAt           time.Time
}

func (e *LedgerEntry) IsDebit() bool {
	return e.Amount.IsNegative()
}
