package store

import (
	"context"
	"fmt"

	"github.com/hance08/paycore/internal/model"
)

const entryColumns = `id, transaction_id, account_id, type, status, amount, note,
        counterparty_account, counterparty_name, created_at`

func (s *Store) AppendEntry(ctx context.Context, entry *model.LedgerEntry) (int64, error) {
	var newID int64
	err := s.db.QueryRowContext(ctx, `
        INSERT INTO ledger_entries (transaction_id, account_id, type, status, amount, note,
            counterparty_account, counterparty_name, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id;
    `,
		entry.TransactionID, entry.AccountID, string(entry.Type), string(entry.Status),
		model.ToMinorUnits(entry.Amount), entry.Note,
		entry.CounterpartyAccount, entry.CounterpartyName, toMillis(entry.CreatedAt),
	).Scan(&newID)
	if err != nil {
		return 0, translateErr("failed to insert ledger entry", err)
	}
	return newID, nil
}

func (s *Store) GetEntriesByTransactionID(ctx context.Context, transactionID string) ([]*model.LedgerEntry, error) {
	return s.queryEntries(ctx, `
        SELECT `+entryColumns+`
        FROM ledger_entries
        WHERE transaction_id = ?
        ORDER BY id
    `, transactionID)
}

// GetEntriesByAccount returns the newest entries of an account first.
func (s *Store) GetEntriesByAccount(ctx context.Context, accountID int64, limit int) ([]*model.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryEntries(ctx, `
        SELECT `+entryColumns+`
        FROM ledger_entries
        WHERE account_id = ?
        ORDER BY id DESC
        LIMIT ?
    `, accountID, limit)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]*model.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*model.LedgerEntry
	for rows.Next() {
		e := &model.LedgerEntry{}
		var amount, createdAt int64
		var entryType, status string

		err := rows.Scan(
			&e.ID, &e.TransactionID, &e.AccountID, &entryType, &status, &amount, &e.Note,
			&e.CounterpartyAccount, &e.CounterpartyName, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		e.Type = model.EntryType(entryType)
		e.Status = model.EntryStatus(status)
		e.Amount = model.FromMinorUnits(amount)
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}
