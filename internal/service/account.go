package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hance08/paycore/internal/constants"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/platform"
	"github.com/hance08/paycore/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OpenAccountInput struct {
	Number         string
	UserID         int64
	Type           string
	OpeningBalance decimal.Decimal
	Status         model.AccountStatus
}

type AccountService struct {
	repo   store.Repository
	clock  platform.Clock
	ids    platform.IDGenerator
	logger *zap.Logger
}

func NewAccountService(deps Deps) *AccountService {
	deps = deps.withDefaults()
	return &AccountService{
		repo:   deps.Repo,
		clock:  deps.Clock,
		ids:    deps.IDs,
		logger: deps.Logger.Named("account"),
	}
}

// Open creates an account. A positive opening balance is recorded as a
// DEPOSIT entry in the same unit of work.
func (as *AccountService) Open(ctx context.Context, in OpenAccountInput) (*model.Account, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, errors.New("account number is required")
	}
	if in.OpeningBalance.IsNegative() || !model.HasMoneyScale(in.OpeningBalance) {
		return nil, ErrInvalidAmount
	}

	accType := strings.ToUpper(strings.TrimSpace(in.Type))
	if accType == "" {
		accType = model.AccountTypeSavings
	}
	if accType != model.AccountTypeSavings && accType != model.AccountTypeCurrent {
		return nil, fmt.Errorf("invalid account type '%s', must be %s or %s",
			in.Type, model.AccountTypeSavings, model.AccountTypeCurrent)
	}

	status := in.Status
	if status == "" {
		status = model.AccountActive
	}
	if _, err := model.ParseAccountStatus(string(status)); err != nil {
		return nil, err
	}

	now := as.clock.Now()
	acc := &model.Account{
		Number:    number,
		UserID:    in.UserID,
		Type:      accType,
		Balance:   in.OpeningBalance,
		Status:    status,
		CreatedAt: now,
	}

	err := as.repo.ExecTx(ctx, func(tx store.Repository) error {
		id, err := tx.CreateAccount(ctx, acc)
		if err != nil {
			return err
		}
		acc.ID = id

		if !in.OpeningBalance.IsPositive() {
			return nil
		}
		_, err = tx.AppendEntry(ctx, &model.LedgerEntry{
			TransactionID: fmt.Sprintf("DEP-%s", as.ids.NewUUID()),
			AccountID:     id,
			Type:          model.EntryDeposit,
			Status:        model.EntryCompleted,
			Amount:        in.OpeningBalance,
			Note:          "Opening balance",
			CreatedAt:     now,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open account: %w", err)
	}

	as.logger.Info("account opened",
		zap.Int64("account_id", acc.ID),
		zap.String("number", acc.Number),
		zap.Int64("user_id", acc.UserID),
	)
	return acc, nil
}

func (as *AccountService) SetStatus(ctx context.Context, number string, status model.AccountStatus) (*model.Account, error) {
	if _, err := model.ParseAccountStatus(string(status)); err != nil {
		return nil, err
	}

	acc, err := as.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := as.repo.UpdateAccountStatus(ctx, acc.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update status of account %s: %w", acc.Number, err)
	}
	acc.Status = status

	as.logger.Info("account status changed",
		zap.String("number", acc.Number),
		zap.String("status", string(status)),
	)
	return acc, nil
}

func (as *AccountService) GetByNumber(ctx context.Context, number string) (*model.Account, error) {
	acc, err := as.repo.GetAccountByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return acc, nil
}

// List returns every account, or only the user's when userID is set.
func (as *AccountService) List(ctx context.Context, userID *int64) ([]*model.Account, error) {
	accounts, err := as.repo.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Statement returns the latest ledger entries of an account, newest first.
func (as *AccountService) Statement(ctx context.Context, accountID int64, limit int) ([]*model.LedgerEntry, error) {
	if limit <= 0 {
		limit = constants.DefaultStatementLimit
	}
	if _, err := as.repo.GetAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	entries, err := as.repo.GetEntriesByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load statement: %w", err)
	}
	return entries, nil
}
