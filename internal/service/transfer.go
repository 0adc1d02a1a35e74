package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hance08/paycore/internal/constants"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/notify"
	"github.com/hance08/paycore/internal/platform"
	"github.com/hance08/paycore/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransferRequest struct {
	SourceAccountID  int64
	Amount           decimal.Decimal
	Rail             model.Rail
	Destination      string
	CounterpartyName string
	Note             string
	IdempotencyKey   string
}

type TransferResult struct {
	TransactionID    string
	Rail             model.Rail
	Amount           decimal.Decimal
	SourceAccountID  int64
	Destination      string
	RemainingBalance decimal.Decimal
	CompletedAt      time.Time
	// Replayed is set when the result was answered from a stored
	// idempotency record instead of moving money again.
	Replayed bool

	creditedAccountID int64
	creditedBalance   decimal.Decimal
}

type TransferService struct {
	repo     store.Repository
	rails    map[model.Rail]RailPolicy
	notifier notify.Publisher
	clock    platform.Clock
	ids      platform.IDGenerator
	logger   *zap.Logger
	cfg      TransferConfig
}

func NewTransferService(deps Deps, cfg TransferConfig) *TransferService {
	deps = deps.withDefaults()
	return &TransferService{
		repo:     deps.Repo,
		rails:    DefaultRailPolicies(cfg),
		notifier: deps.Notifier,
		clock:    deps.Clock,
		ids:      deps.IDs,
		logger:   deps.Logger.Named("transfer"),
		cfg:      cfg,
	}
}

// Execute validates and performs a transfer as one atomic unit. Units that
// lose a balance race are retried; after cfg.MaxRetries the call fails with
// ErrStoreConflict. Notifications are published only after commit.
func (ts *TransferService) Execute(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	var result *TransferResult
	err := ts.retry(ctx, "transfer", func() error {
		return ts.repo.ExecTx(ctx, func(tx store.Repository) error {
			var err error
			result, err = ts.ExecuteWithin(ctx, tx, req)
			return err
		})
	})
	if err != nil {
		ts.logger.Info("transfer rejected",
			zap.Int64("source_account_id", req.SourceAccountID),
			zap.String("rail", string(req.Rail)),
			zap.String("amount", req.Amount.String()),
			zap.String("kind", string(Kind(err))),
			zap.Error(err),
		)
		return nil, err
	}

	ts.publish(result)
	ts.logger.Info("transfer completed",
		zap.String("transaction_id", result.TransactionID),
		zap.String("rail", string(result.Rail)),
		zap.String("amount", result.Amount.StringFixed(2)),
		zap.Bool("replayed", result.Replayed),
	)
	return result, nil
}

// ExecuteWithin runs the transfer inside a unit of work owned by the
// caller. It publishes nothing; the caller does that once the unit commits.
func (ts *TransferService) ExecuteWithin(ctx context.Context, repo store.Repository, req TransferRequest) (*TransferResult, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	var fingerprint string
	if req.IdempotencyKey != "" {
		fingerprint = FingerprintTransfer(req)
		rec, err := repo.GetIdempotencyRecord(ctx, req.IdempotencyKey)
		switch {
		case err == nil:
			if rec.RequestHash != fingerprint {
				return nil, ErrIdempotencyConflict
			}
			return resultFromRecord(rec), nil
		case !errors.Is(err, store.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
		}
	}

	source, err := repo.GetAccountByID(ctx, req.SourceAccountID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load source account: %w", err)
	}
	if !source.IsActive() {
		return nil, ErrAccountNotActive
	}

	policy, ok := ts.rails[req.Rail]
	if !ok {
		return nil, &RailViolation{Rail: req.Rail, Reason: "unsupported rail"}
	}
	dest, err := policy.Validate(ctx, repo, source, req.Amount, req.Destination)
	if err != nil {
		return nil, err
	}

	if source.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}

	now := ts.clock.Now()
	txID := fmt.Sprintf("%s-%s", req.Rail.TransactionPrefix(), ts.ids.NewUUID())
	destination := strings.TrimSpace(req.Destination)
	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = constants.DefaultTransferNote
	}

	remaining := source.Balance.Sub(req.Amount)
	if err := ts.swapBalance(ctx, repo, source, remaining); err != nil {
		return nil, err
	}

	debitNote := fmt.Sprintf("Transfer to %s - %s", destination, note)
	if req.Rail != model.RailInternal {
		debitNote = fmt.Sprintf("%s Transfer to %s - %s", req.Rail, destination, note)
	}
	_, err = repo.AppendEntry(ctx, &model.LedgerEntry{
		TransactionID:       txID,
		AccountID:           source.ID,
		Type:                req.Rail.EntryType(),
		Status:              model.EntryCompleted,
		Amount:              req.Amount.Neg(),
		Note:                debitNote,
		CounterpartyAccount: destination,
		CounterpartyName:    req.CounterpartyName,
		CreatedAt:           now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record debit: %w", err)
	}

	result := &TransferResult{
		TransactionID:    txID,
		Rail:             req.Rail,
		Amount:           req.Amount,
		SourceAccountID:  source.ID,
		Destination:      destination,
		RemainingBalance: remaining,
		CompletedAt:      now,
	}

	if dest != nil {
		credited := dest.Balance.Add(req.Amount)
		if err := ts.swapBalance(ctx, repo, dest, credited); err != nil {
			return nil, err
		}
		_, err = repo.AppendEntry(ctx, &model.LedgerEntry{
			TransactionID:       txID,
			AccountID:           dest.ID,
			Type:                req.Rail.EntryType(),
			Status:              model.EntryCompleted,
			Amount:              req.Amount,
			Note:                fmt.Sprintf("Transfer from %s - %s", source.Number, note),
			CounterpartyAccount: source.Number,
			CreatedAt:           now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record credit: %w", err)
		}
		result.creditedAccountID = dest.ID
		result.creditedBalance = credited
	}

	if req.IdempotencyKey != "" {
		err := repo.SaveIdempotencyRecord(ctx, &store.IdempotencyRecord{
			Key:              req.IdempotencyKey,
			RequestHash:      fingerprint,
			TransactionID:    txID,
			Rail:             string(req.Rail),
			SourceAccountID:  source.ID,
			Destination:      destination,
			Amount:           req.Amount,
			RemainingBalance: remaining,
			CreatedAt:        now,
		})
		if errors.Is(err, store.ErrDuplicateKey) {
			// Another unit claimed the key first; the retry will replay it.
			return nil, fmt.Errorf("%w: %v", store.ErrConflict, err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save idempotency record: %w", err)
		}
	}

	return result, nil
}

func (ts *TransferService) swapBalance(ctx context.Context, repo store.Repository, acc *model.Account, updated decimal.Decimal) error {
	ok, err := repo.CompareAndSwapBalance(ctx, acc.ID, acc.Balance, updated)
	if err != nil {
		return fmt.Errorf("failed to update balance of account %d: %w", acc.ID, err)
	}
	if !ok {
		return errBalanceChanged
	}
	return nil
}

func (ts *TransferService) retry(ctx context.Context, op string, fn func() error) error {
	return withRetry(ctx, ts.logger, ts.cfg.MaxRetries, ts.cfg.RetryBase, op, fn)
}

func (ts *TransferService) publish(result *TransferResult) {
	if result == nil || result.Replayed {
		return
	}

	remaining := result.RemainingBalance
	ts.notifier.Publish(notify.Event{
		Type:          notify.BalanceChanged,
		OccurredAt:    result.CompletedAt,
		TransactionID: result.TransactionID,
		AccountID:     result.SourceAccountID,
		Rail:          string(result.Rail),
		Amount:        result.Amount.Neg(),
		Balance:       &remaining,
	})
	if result.creditedAccountID != 0 {
		credited := result.creditedBalance
		ts.notifier.Publish(notify.Event{
			Type:          notify.BalanceChanged,
			OccurredAt:    result.CompletedAt,
			TransactionID: result.TransactionID,
			AccountID:     result.creditedAccountID,
			Rail:          string(result.Rail),
			Amount:        result.Amount,
			Balance:       &credited,
		})
	}
	ts.notifier.Publish(notify.Event{
		Type:          notify.TransferCompleted,
		OccurredAt:    result.CompletedAt,
		TransactionID: result.TransactionID,
		AccountID:     result.SourceAccountID,
		Rail:          string(result.Rail),
		Amount:        result.Amount,
		Message:       "Transfer to " + result.Destination,
	})
}

func resultFromRecord(rec *store.IdempotencyRecord) *TransferResult {
	return &TransferResult{
		TransactionID:    rec.TransactionID,
		Rail:             model.Rail(rec.Rail),
		Amount:           rec.Amount,
		SourceAccountID:  rec.SourceAccountID,
		Destination:      rec.Destination,
		RemainingBalance: rec.RemainingBalance,
		CompletedAt:      rec.CreatedAt,
		Replayed:         true,
	}
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !model.HasMoneyScale(amount) {
		return ErrInvalidAmount
	}
	return nil
}
