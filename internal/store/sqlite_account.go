package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hance08/paycore/internal/model"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, number, user_id, type, balance, status, created_at`

func (s *Store) CreateAccount(ctx context.Context, acc *model.Account) (int64, error) {
	var newID int64
	err := s.db.QueryRowContext(ctx, `
        INSERT INTO accounts (number, user_id, type, balance, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id;
    `, acc.Number, acc.UserID, acc.Type, model.ToMinorUnits(acc.Balance), string(acc.Status), toMillis(acc.CreatedAt)).Scan(&newID)
	if err != nil {
		err = translateErr("failed to executing SQL insertion", err)
		if errors.Is(err, ErrDuplicateKey) {
			return 0, fmt.Errorf("failed to create account '%s': %w", acc.Number, ErrAccountExists)
		}
		return 0, err
	}

	return newID, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)

	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with ID %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query account with ID %d: %w", id, err)
	}
	return acc, nil
}

func (s *Store) GetAccountByNumber(ctx context.Context, number string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE number = ?", number)

	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account '%s': %w", number, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query account '%s': %w", number, err)
	}
	return acc, nil
}

func (s *Store) ListAccounts(ctx context.Context, userID *int64) ([]*model.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts"
	var args []any
	if userID != nil {
		query += " WHERE user_id = ?"
		args = append(args, *userID)
	}
	query += " ORDER BY number"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var accounts []*model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (s *Store) UpdateAccountStatus(ctx context.Context, id int64, status model.AccountStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE accounts SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return translateErr("failed to update account status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account with ID %d: %w", id, ErrRecordNotFound)
	}
	return nil
}

func (s *Store) CompareAndSwapBalance(ctx context.Context, id int64, expected, updated decimal.Decimal) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
        UPDATE accounts
        SET balance = ?
        WHERE id = ? AND balance = ? AND status = 'ACTIVE'
    `, model.ToMinorUnits(updated), id, model.ToMinorUnits(expected))
	if err != nil {
		return false, translateErr("failed to update balance", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

func scanAccount(row rowScanner) (*model.Account, error) {
	acc := &model.Account{}
	var balance, createdAt int64
	var status string

	err := row.Scan(
		&acc.ID, &acc.Number, &acc.UserID, &acc.Type,
		&balance, &status, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	acc.Balance = model.FromMinorUnits(balance)
	acc.Status = model.AccountStatus(status)
	acc.CreatedAt = fromMillis(createdAt)
	return acc, nil
}
