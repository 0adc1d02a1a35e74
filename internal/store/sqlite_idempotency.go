package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hance08/paycore/internal/model"
)

func (s *Store) GetIdempotencyRecord(ctx context.Context, key string) (*IdempotencyRecord, error) {
	rec := &IdempotencyRecord{}
	var amount, remaining, createdAt int64

	err := s.db.QueryRowContext(ctx, `
        SELECT key, request_hash, transaction_id, rail, source_account_id, destination,
            amount, remaining_balance, created_at
        FROM idempotency_keys
        WHERE key = ?
    `, key).Scan(
		&rec.Key, &rec.RequestHash, &rec.TransactionID, &rec.Rail, &rec.SourceAccountID, &rec.Destination,
		&amount, &remaining, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("idempotency key %q: %w", key, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query idempotency key %q: %w", key, err)
	}

	rec.Amount = model.FromMinorUnits(amount)
	rec.RemainingBalance = model.FromMinorUnits(remaining)
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}

func (s *Store) SaveIdempotencyRecord(ctx context.Context, rec *IdempotencyRecord) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO idempotency_keys (key, request_hash, transaction_id, rail, source_account_id,
            destination, amount, remaining_balance, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		rec.Key, rec.RequestHash, rec.TransactionID, rec.Rail, rec.SourceAccountID,
		rec.Destination, model.ToMinorUnits(rec.Amount), model.ToMinorUnits(rec.RemainingBalance),
		toMillis(rec.CreatedAt),
	)
	if err != nil {
		return translateErr("failed to save idempotency key", err)
	}
	return nil
}
