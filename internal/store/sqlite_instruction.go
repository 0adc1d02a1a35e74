package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hance08/paycore/internal/model"
)

const instructionColumns = `id, instruction_id, user_id, name, description, type,
        from_account, to_account, beneficiary_name, amount, frequency,
        start_date, end_date, next_execution_date, last_executed, status,
        execution_count, max_executions, failure_reason, created_at, updated_at`

func (s *Store) CreateInstruction(ctx context.Context, si *model.StandingInstruction) (int64, error) {
	var newID int64
	err := s.db.QueryRowContext(ctx, `
        INSERT INTO standing_instructions (instruction_id, user_id, name, description, type,
            from_account, to_account, beneficiary_name, amount, frequency,
            start_date, end_date, next_execution_date, last_executed, status,
            execution_count, max_executions, failure_reason, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id;
    `,
		si.InstructionID, si.UserID, si.Name, si.Description, string(si.Type),
		si.FromAccount, si.ToAccount, si.BeneficiaryName, model.ToMinorUnits(si.Amount), string(si.Frequency),
		si.StartDate.Format(dateLayout), nullDate(si.EndDate), si.NextExecutionDate.Format(dateLayout),
		nullMillis(si.LastExecuted), string(si.Status),
		si.ExecutionCount, nullInt(si.MaxExecutions), si.FailureReason,
		toMillis(si.CreatedAt), toMillis(si.UpdatedAt),
	).Scan(&newID)
	if err != nil {
		return 0, translateErr("failed to insert standing instruction", err)
	}
	return newID, nil
}

// SaveInstruction overwrites the mutable fields of an existing instruction.
func (s *Store) SaveInstruction(ctx context.Context, si *model.StandingInstruction) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE standing_instructions
        SET name = ?, description = ?, beneficiary_name = ?, amount = ?, frequency = ?,
            end_date = ?, next_execution_date = ?, last_executed = ?, status = ?,
            execution_count = ?, max_executions = ?, failure_reason = ?, updated_at = ?
        WHERE instruction_id = ?
    `,
		si.Name, si.Description, si.BeneficiaryName, model.ToMinorUnits(si.Amount), string(si.Frequency),
		nullDate(si.EndDate), si.NextExecutionDate.Format(dateLayout), nullMillis(si.LastExecuted),
		string(si.Status), si.ExecutionCount, nullInt(si.MaxExecutions), si.FailureReason,
		toMillis(si.UpdatedAt), si.InstructionID,
	)
	if err != nil {
		return translateErr("failed to update standing instruction", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("instruction %s: %w", si.InstructionID, ErrRecordNotFound)
	}
	return nil
}

func (s *Store) GetInstruction(ctx context.Context, instructionID string) (*model.StandingInstruction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+instructionColumns+" FROM standing_instructions WHERE instruction_id = ?", instructionID)

	si, err := scanInstruction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instruction %s: %w", instructionID, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query instruction %s: %w", instructionID, err)
	}
	return si, nil
}

func (s *Store) ListInstructions(ctx context.Context, userID int64, status model.InstructionStatus) ([]*model.StandingInstruction, error) {
	query := "SELECT " + instructionColumns + " FROM standing_instructions WHERE user_id = ?"
	args := []any{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC, id DESC"

	return s.queryInstructions(ctx, query, args...)
}

func (s *Store) FindDueInstructions(ctx context.Context, asOf time.Time, userID *int64, limit int) ([]*model.StandingInstruction, error) {
	query := "SELECT " + instructionColumns + `
        FROM standing_instructions
        WHERE status = 'ACTIVE' AND next_execution_date <= ?`
	args := []any{model.Date(asOf).Format(dateLayout)}
	if userID != nil {
		query += " AND user_id = ?"
		args = append(args, *userID)
	}
	query += " ORDER BY next_execution_date, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryInstructions(ctx, query, args...)
}

func (s *Store) queryInstructions(ctx context.Context, query string, args ...any) ([]*model.StandingInstruction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query standing instructions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var list []*model.StandingInstruction
	for rows.Next() {
		si, err := scanInstruction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standing instruction: %w", err)
		}
		list = append(list, si)
	}
	return list, rows.Err()
}

func scanInstruction(row rowScanner) (*model.StandingInstruction, error) {
	si := &model.StandingInstruction{}
	var (
		siType, frequency, status    string
		startDate, nextExecution     string
		endDate                      sql.NullString
		lastExecuted, maxExecutions  sql.NullInt64
		amount, createdAt, updatedAt int64
	)

	err := row.Scan(
		&si.ID, &si.InstructionID, &si.UserID, &si.Name, &si.Description, &siType,
		&si.FromAccount, &si.ToAccount, &si.BeneficiaryName, &amount, &frequency,
		&startDate, &endDate, &nextExecution, &lastExecuted, &status,
		&si.ExecutionCount, &maxExecutions, &si.FailureReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	si.Type = model.InstructionType(siType)
	si.Frequency = model.Frequency(frequency)
	si.Status = model.InstructionStatus(status)
	si.Amount = model.FromMinorUnits(amount)
	si.CreatedAt = fromMillis(createdAt)
	si.UpdatedAt = fromMillis(updatedAt)

	if si.StartDate, err = parseDate(startDate); err != nil {
		return nil, err
	}
	if si.NextExecutionDate, err = parseDate(nextExecution); err != nil {
		return nil, err
	}
	if endDate.Valid {
		end, err := parseDate(endDate.String)
		if err != nil {
			return nil, err
		}
		si.EndDate = &end
	}
	if lastExecuted.Valid {
		last := fromMillis(lastExecuted.Int64)
		si.LastExecuted = &last
	}
	if maxExecutions.Valid {
		maxExec := int(maxExecutions.Int64)
		si.MaxExecutions = &maxExec
	}
	return si, nil
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
