package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hance08/paycore/internal/model"
	"github.com/shopspring/decimal"
)

type balanceWrite struct {
	expected decimal.Decimal
	updated  decimal.Decimal
}

// memTx is a unit of work over a MemoryStore. Reads see committed state
// overlaid with the unit's own staged writes.
type memTx struct {
	s *MemoryStore

	newAccounts         map[int64]*model.Account
	balances            map[int64]*balanceWrite
	statuses            map[int64]model.AccountStatus
	entries             []*model.LedgerEntry
	newInstructions     map[string]*model.StandingInstruction
	savedInstructions   map[string]*model.StandingInstruction
	instructionVersions map[string]int64
	idempotency         map[string]*IdempotencyRecord
}

var _ Repository = (*memTx)(nil)

func newMemTx(s *MemoryStore) *memTx {
	return &memTx{
		s:                   s,
		newAccounts:         make(map[int64]*model.Account),
		balances:            make(map[int64]*balanceWrite),
		statuses:            make(map[int64]model.AccountStatus),
		newInstructions:     make(map[string]*model.StandingInstruction),
		savedInstructions:   make(map[string]*model.StandingInstruction),
		instructionVersions: make(map[string]int64),
		idempotency:         make(map[string]*IdempotencyRecord),
	}
}

func (t *memTx) ExecTx(context.Context, func(Repository) error) error {
	return ErrNestedTx
}

func (t *memTx) Close() error {
	return nil
}

func (t *memTx) overlay(acc *model.Account) *model.Account {
	if w, ok := t.balances[acc.ID]; ok {
		acc.Balance = w.updated
	}
	if st, ok := t.statuses[acc.ID]; ok {
		acc.Status = st
	}
	return acc
}

func (t *memTx) CreateAccount(ctx context.Context, acc *model.Account) (int64, error) {
	if _, err := t.GetAccountByNumber(ctx, acc.Number); err == nil {
		return 0, fmt.Errorf("failed to create account '%s': %w", acc.Number, ErrAccountExists)
	}
	if acc.Balance.IsNegative() {
		return 0, fmt.Errorf("failed to create account '%s': %w", acc.Number, ErrConstraintViolation)
	}

	staged := *acc
	staged.ID = t.s.nextID(&t.s.nextAccountID)
	t.newAccounts[staged.ID] = &staged
	return staged.ID, nil
}

func (t *memTx) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	if acc, ok := t.newAccounts[id]; ok {
		c := *acc
		return &c, nil
	}
	acc, err := t.s.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.overlay(acc), nil
}

func (t *memTx) GetAccountByNumber(ctx context.Context, number string) (*model.Account, error) {
	for _, acc := range t.newAccounts {
		if acc.Number == number {
			c := *acc
			return &c, nil
		}
	}
	acc, err := t.s.GetAccountByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return t.overlay(acc), nil
}

func (t *memTx) ListAccounts(ctx context.Context, userID *int64) ([]*model.Account, error) {
	committed, err := t.s.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts := make([]*model.Account, 0, len(committed)+len(t.newAccounts))
	for _, acc := range committed {
		accounts = append(accounts, t.overlay(acc))
	}
	for _, acc := range t.newAccounts {
		if userID != nil && acc.UserID != *userID {
			continue
		}
		c := *acc
		accounts = append(accounts, &c)
	}
	sortAccounts(accounts)
	return accounts, nil
}

func (t *memTx) UpdateAccountStatus(ctx context.Context, id int64, status model.AccountStatus) error {
	if acc, ok := t.newAccounts[id]; ok {
		acc.Status = status
		return nil
	}
	if _, err := t.s.GetAccountByID(ctx, id); err != nil {
		return err
	}
	t.statuses[id] = status
	return nil
}

func (t *memTx) CompareAndSwapBalance(ctx context.Context, id int64, expected, updated decimal.Decimal) (bool, error) {
	if updated.IsNegative() {
		return false, fmt.Errorf("failed to update balance of account %d: %w", id, ErrConstraintViolation)
	}

	if acc, ok := t.newAccounts[id]; ok {
		if acc.Status != model.AccountActive || !acc.Balance.Equal(expected) {
			return false, nil
		}
		acc.Balance = updated
		return true, nil
	}

	acc, err := t.GetAccountByID(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if acc.Status != model.AccountActive || !acc.Balance.Equal(expected) {
		return false, nil
	}

	if w, ok := t.balances[id]; ok {
		w.updated = updated
		return true, nil
	}
	t.balances[id] = &balanceWrite{expected: expected, updated: updated}
	return true, nil
}

func (t *memTx) AppendEntry(_ context.Context, entry *model.LedgerEntry) (int64, error) {
	staged := *entry
	staged.ID = t.s.nextID(&t.s.nextEntryID)
	t.entries = append(t.entries, &staged)
	return staged.ID, nil
}

func (t *memTx) GetEntriesByTransactionID(ctx context.Context, transactionID string) ([]*model.LedgerEntry, error) {
	out, err := t.s.GetEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	for _, e := range t.entries {
		if e.TransactionID == transactionID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (t *memTx) GetEntriesByAccount(ctx context.Context, accountID int64, limit int) ([]*model.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var staged []*model.LedgerEntry
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].AccountID == accountID {
			c := *t.entries[i]
			staged = append(staged, &c)
		}
	}
	committed, err := t.s.GetEntriesByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, err
	}
	out := append(staged, committed...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) CreateInstruction(ctx context.Context, si *model.StandingInstruction) (int64, error) {
	if _, err := t.GetInstruction(ctx, si.InstructionID); err == nil {
		return 0, fmt.Errorf("instruction %s: %w", si.InstructionID, ErrDuplicateKey)
	}
	if !si.Amount.IsPositive() {
		return 0, fmt.Errorf("instruction %s: %w", si.InstructionID, ErrConstraintViolation)
	}

	staged := si.Clone()
	staged.ID = t.s.nextID(&t.s.nextInstructionID)
	t.newInstructions[staged.InstructionID] = staged
	return staged.ID, nil
}

func (t *memTx) SaveInstruction(_ context.Context, si *model.StandingInstruction) error {
	if pending, ok := t.newInstructions[si.InstructionID]; ok {
		staged := si.Clone()
		staged.ID = pending.ID
		t.newInstructions[si.InstructionID] = staged
		return nil
	}

	committed, version, ok := t.s.instruction(si.InstructionID)
	if !ok {
		return fmt.Errorf("instruction %s: %w", si.InstructionID, ErrRecordNotFound)
	}
	if _, read := t.instructionVersions[si.InstructionID]; !read {
		t.instructionVersions[si.InstructionID] = version
	}

	staged := si.Clone()
	staged.ID = committed.ID
	t.savedInstructions[si.InstructionID] = staged
	return nil
}

func (t *memTx) GetInstruction(_ context.Context, instructionID string) (*model.StandingInstruction, error) {
	if si, ok := t.newInstructions[instructionID]; ok {
		return si.Clone(), nil
	}
	if si, ok := t.savedInstructions[instructionID]; ok {
		return si.Clone(), nil
	}

	si, version, ok := t.s.instruction(instructionID)
	if !ok {
		return nil, fmt.Errorf("instruction %s: %w", instructionID, ErrRecordNotFound)
	}
	if _, read := t.instructionVersions[instructionID]; !read {
		t.instructionVersions[instructionID] = version
	}
	return si, nil
}

func (t *memTx) mergedInstructions() []*model.StandingInstruction {
	all := t.s.allInstructions()
	for i, si := range all {
		if saved, ok := t.savedInstructions[si.InstructionID]; ok {
			all[i] = saved.Clone()
		}
	}
	for _, si := range t.newInstructions {
		all = append(all, si.Clone())
	}
	return all
}

func (t *memTx) ListInstructions(_ context.Context, userID int64, status model.InstructionStatus) ([]*model.StandingInstruction, error) {
	return filterInstructions(t.mergedInstructions(), userID, status), nil
}

func (t *memTx) FindDueInstructions(_ context.Context, asOf time.Time, userID *int64, limit int) ([]*model.StandingInstruction, error) {
	return filterDue(t.mergedInstructions(), asOf, userID, limit), nil
}

func (t *memTx) GetIdempotencyRecord(ctx context.Context, key string) (*IdempotencyRecord, error) {
	if rec, ok := t.idempotency[key]; ok {
		c := *rec
		return &c, nil
	}
	return t.s.GetIdempotencyRecord(ctx, key)
}

func (t *memTx) SaveIdempotencyRecord(ctx context.Context, rec *IdempotencyRecord) error {
	if _, err := t.GetIdempotencyRecord(ctx, rec.Key); err == nil {
		return fmt.Errorf("idempotency key %q: %w", rec.Key, ErrDuplicateKey)
	}
	c := *rec
	t.idempotency[rec.Key] = &c
	return nil
}

// stagedAccountIDs lists every committed account the unit writes to.
func (t *memTx) stagedAccountIDs() []int64 {
	seen := make(map[int64]bool, len(t.balances)+len(t.statuses))
	ids := make([]int64, 0, len(t.balances)+len(t.statuses))
	for id := range t.balances {
		seen[id] = true
		ids = append(ids, id)
	}
	for id := range t.statuses {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
