package store

import (
	"context"
	"time"

	"github.com/hance08/paycore/internal/model"
	"github.com/shopspring/decimal"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, acc *model.Account) (int64, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*model.Account, error)
	ListAccounts(ctx context.Context, userID *int64) ([]*model.Account, error)
	UpdateAccountStatus(ctx context.Context, id int64, status model.AccountStatus) error

	// CompareAndSwapBalance sets the balance of an ACTIVE account to updated
	// only if it still equals expected. It reports false when the swap lost.
	CompareAndSwapBalance(ctx context.Context, id int64, expected, updated decimal.Decimal) (bool, error)
}

type LedgerRepository interface {
	AppendEntry(ctx context.Context, entry *model.LedgerEntry) (int64, error)
	GetEntriesByTransactionID(ctx context.Context, transactionID string) ([]*model.LedgerEntry, error)
	GetEntriesByAccount(ctx context.Context, accountID int64, limit int) ([]*model.LedgerEntry, error)
}

type InstructionRepository interface {
	CreateInstruction(ctx context.Context, si *model.StandingInstruction) (int64, error)
	SaveInstruction(ctx context.Context, si *model.StandingInstruction) error
	GetInstruction(ctx context.Context, instructionID string) (*model.StandingInstruction, error)
	ListInstructions(ctx context.Context, userID int64, status model.InstructionStatus) ([]*model.StandingInstruction, error)

	// FindDueInstructions returns ACTIVE instructions whose next execution
	// date is on or before asOf, oldest first, at most limit of them.
	FindDueInstructions(ctx context.Context, asOf time.Time, userID *int64, limit int) ([]*model.StandingInstruction, error)
}

type IdempotencyRepository interface {
	GetIdempotencyRecord(ctx context.Context, key string) (*IdempotencyRecord, error)
	SaveIdempotencyRecord(ctx context.Context, rec *IdempotencyRecord) error
}

type Repository interface {
	AccountRepository
	LedgerRepository
	InstructionRepository
	IdempotencyRepository

	// ExecTx runs fn as one atomic unit. Either every write made through the
	// Repository handed to fn is committed, or none is.
	ExecTx(ctx context.Context, fn func(Repository) error) error
	Close() error
}
