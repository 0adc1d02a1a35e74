package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	BalanceChanged      EventType = "balance.changed"
	TransferCompleted   EventType = "transfer.completed"
	InstructionExecuted EventType = "instruction.executed"
	InstructionFailed   EventType = "instruction.failed"
)

type Event struct {
	Type          EventType        `json:"type"`
	OccurredAt    time.Time        `json:"occurred_at"`
	TransactionID string           `json:"transaction_id,omitempty"`
	InstructionID string           `json:"instruction_id,omitempty"`
	AccountID     int64            `json:"account_id,omitempty"`
	Rail          string           `json:"rail,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	Message       string           `json:"message,omitempty"`
}

// Publisher hands events off for delivery. Publish never blocks and never
// reports delivery failures to the caller.
type Publisher interface {
	Publish(ev Event)
}

type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
