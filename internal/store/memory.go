package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hance08/paycore/internal/model"
	"github.com/shopspring/decimal"
)

// MemoryStore is a Repository kept in process memory. Accounts live in
// cells with their own mutex; the store mutex only guards the indexes.
// Units of work stage writes and validate them at commit, locking the
// touched account cells in ascending id order.
type MemoryStore struct {
	mu           sync.RWMutex
	cells        map[int64]*accountCell
	byNumber     map[string]int64
	entries      []model.LedgerEntry
	instructions map[string]*instructionRecord
	idempotency  map[string]IdempotencyRecord

	nextAccountID     int64
	nextEntryID       int64
	nextInstructionID int64
}

type accountCell struct {
	mu  sync.Mutex
	acc model.Account
}

type instructionRecord struct {
	si      *model.StandingInstruction
	version int64
}

var _ Repository = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cells:        make(map[int64]*accountCell),
		byNumber:     make(map[string]int64),
		instructions: make(map[string]*instructionRecord),
		idempotency:  make(map[string]IdempotencyRecord),
	}
}

func (s *MemoryStore) ExecTx(ctx context.Context, fn func(Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newMemTx(s)
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) autocommit(ctx context.Context, fn func(Repository) error) error {
	return s.ExecTx(ctx, fn)
}

func (s *MemoryStore) cell(id int64) *accountCell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cells[id]
}

func (c *accountCell) snapshot() *model.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	acc := c.acc
	return &acc
}

func (s *MemoryStore) nextID(counter *int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	*counter++
	return *counter
}

// Account reads

func (s *MemoryStore) GetAccountByID(_ context.Context, id int64) (*model.Account, error) {
	c := s.cell(id)
	if c == nil {
		return nil, fmt.Errorf("account with ID %d: %w", id, ErrRecordNotFound)
	}
	return c.snapshot(), nil
}

func (s *MemoryStore) GetAccountByNumber(_ context.Context, number string) (*model.Account, error) {
	s.mu.RLock()
	id, ok := s.byNumber[number]
	c := s.cells[id]
	s.mu.RUnlock()
	if !ok || c == nil {
		return nil, fmt.Errorf("account '%s': %w", number, ErrRecordNotFound)
	}
	return c.snapshot(), nil
}

func (s *MemoryStore) ListAccounts(_ context.Context, userID *int64) ([]*model.Account, error) {
	s.mu.RLock()
	cells := make([]*accountCell, 0, len(s.cells))
	for _, c := range s.cells {
		cells = append(cells, c)
	}
	s.mu.RUnlock()

	var accounts []*model.Account
	for _, c := range cells {
		acc := c.snapshot()
		if userID != nil && acc.UserID != *userID {
			continue
		}
		accounts = append(accounts, acc)
	}
	sortAccounts(accounts)
	return accounts, nil
}

// Account writes

func (s *MemoryStore) CreateAccount(ctx context.Context, acc *model.Account) (int64, error) {
	var id int64
	err := s.autocommit(ctx, func(r Repository) error {
		var err error
		id, err = r.CreateAccount(ctx, acc)
		return err
	})
	return id, err
}

func (s *MemoryStore) UpdateAccountStatus(ctx context.Context, id int64, status model.AccountStatus) error {
	return s.autocommit(ctx, func(r Repository) error {
		return r.UpdateAccountStatus(ctx, id, status)
	})
}

func (s *MemoryStore) CompareAndSwapBalance(ctx context.Context, id int64, expected, updated decimal.Decimal) (bool, error) {
	var swapped bool
	err := s.autocommit(ctx, func(r Repository) error {
		var err error
		swapped, err = r.CompareAndSwapBalance(ctx, id, expected, updated)
		return err
	})
	if errors.Is(err, ErrConflict) {
		return false, nil
	}
	return swapped, err
}

// Ledger

func (s *MemoryStore) AppendEntry(ctx context.Context, entry *model.LedgerEntry) (int64, error) {
	var id int64
	err := s.autocommit(ctx, func(r Repository) error {
		var err error
		id, err = r.AppendEntry(ctx, entry)
		return err
	})
	return id, err
}

func (s *MemoryStore) GetEntriesByTransactionID(_ context.Context, transactionID string) ([]*model.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.LedgerEntry
	for i := range s.entries {
		if s.entries[i].TransactionID == transactionID {
			e := s.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetEntriesByAccount(_ context.Context, accountID int64, limit int) ([]*model.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.LedgerEntry
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].AccountID == accountID {
			e := s.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

// Standing instructions

func (s *MemoryStore) CreateInstruction(ctx context.Context, si *model.StandingInstruction) (int64, error) {
	var id int64
	err := s.autocommit(ctx, func(r Repository) error {
		var err error
		id, err = r.CreateInstruction(ctx, si)
		return err
	})
	return id, err
}

func (s *MemoryStore) SaveInstruction(ctx context.Context, si *model.StandingInstruction) error {
	return s.autocommit(ctx, func(r Repository) error {
		return r.SaveInstruction(ctx, si)
	})
}

func (s *MemoryStore) GetInstruction(_ context.Context, instructionID string) (*model.StandingInstruction, error) {
	si, _, ok := s.instruction(instructionID)
	if !ok {
		return nil, fmt.Errorf("instruction %s: %w", instructionID, ErrRecordNotFound)
	}
	return si, nil
}

func (s *MemoryStore) instruction(instructionID string) (*model.StandingInstruction, int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.instructions[instructionID]
	if !ok {
		return nil, 0, false
	}
	return rec.si.Clone(), rec.version, true
}

func (s *MemoryStore) allInstructions() []*model.StandingInstruction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.StandingInstruction, 0, len(s.instructions))
	for _, rec := range s.instructions {
		out = append(out, rec.si.Clone())
	}
	return out
}

func (s *MemoryStore) ListInstructions(_ context.Context, userID int64, status model.InstructionStatus) ([]*model.StandingInstruction, error) {
	return filterInstructions(s.allInstructions(), userID, status), nil
}

func (s *MemoryStore) FindDueInstructions(_ context.Context, asOf time.Time, userID *int64, limit int) ([]*model.StandingInstruction, error) {
	return filterDue(s.allInstructions(), asOf, userID, limit), nil
}

// Idempotency

func (s *MemoryStore) GetIdempotencyRecord(_ context.Context, key string) (*IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.idempotency[key]
	if !ok {
		return nil, fmt.Errorf("idempotency key %q: %w", key, ErrRecordNotFound)
	}
	return &rec, nil
}

func (s *MemoryStore) SaveIdempotencyRecord(ctx context.Context, rec *IdempotencyRecord) error {
	return s.autocommit(ctx, func(r Repository) error {
		return r.SaveIdempotencyRecord(ctx, rec)
	})
}

// commit validates the staged unit against committed state and applies it.
func (s *MemoryStore) commit(tx *memTx) error {
	ids := tx.stagedAccountIDs()

	cells := make(map[int64]*accountCell, len(ids))
	for _, id := range ids {
		c := s.cell(id)
		if c == nil {
			return fmt.Errorf("account with ID %d: %w", id, ErrRecordNotFound)
		}
		cells[id] = c
	}

	for _, id := range ids {
		cells[id].mu.Lock()
	}
	defer func() {
		for i := len(ids) - 1; i >= 0; i-- {
			cells[ids[i]].mu.Unlock()
		}
	}()

	for id, w := range tx.balances {
		acc := &cells[id].acc
		if !acc.Balance.Equal(w.expected) || acc.Status != model.AccountActive {
			return ErrConflict
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range tx.newAccounts {
		if _, exists := s.byNumber[acc.Number]; exists {
			return fmt.Errorf("failed to create account '%s': %w", acc.Number, ErrAccountExists)
		}
	}
	for _, si := range tx.newInstructions {
		if _, exists := s.instructions[si.InstructionID]; exists {
			return fmt.Errorf("instruction %s: %w", si.InstructionID, ErrDuplicateKey)
		}
	}
	for id, version := range tx.instructionVersions {
		rec, ok := s.instructions[id]
		if !ok || rec.version != version {
			return ErrConflict
		}
	}
	for key := range tx.idempotency {
		if _, exists := s.idempotency[key]; exists {
			return ErrConflict
		}
	}

	for _, acc := range tx.newAccounts {
		s.cells[acc.ID] = &accountCell{acc: *acc}
		s.byNumber[acc.Number] = acc.ID
	}
	for id, w := range tx.balances {
		cells[id].acc.Balance = w.updated
	}
	for id, status := range tx.statuses {
		cells[id].acc.Status = status
	}
	for _, e := range tx.entries {
		s.entries = append(s.entries, *e)
	}
	for _, si := range tx.newInstructions {
		s.instructions[si.InstructionID] = &instructionRecord{si: si.Clone(), version: 1}
	}
	for id, si := range tx.savedInstructions {
		if rec, ok := s.instructions[id]; ok {
			rec.si = si.Clone()
			rec.version++
		}
	}
	for key, rec := range tx.idempotency {
		s.idempotency[key] = *rec
	}
	return nil
}

func sortAccounts(accounts []*model.Account) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Number < accounts[j].Number })
}

func filterInstructions(all []*model.StandingInstruction, userID int64, status model.InstructionStatus) []*model.StandingInstruction {
	var out []*model.StandingInstruction
	for _, si := range all {
		if si.UserID != userID {
			continue
		}
		if status != "" && si.Status != status {
			continue
		}
		out = append(out, si)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func filterDue(all []*model.StandingInstruction, asOf time.Time, userID *int64, limit int) []*model.StandingInstruction {
	var out []*model.StandingInstruction
	for _, si := range all {
		if userID != nil && si.UserID != *userID {
			continue
		}
		if si.IsDue(asOf) {
			out = append(out, si)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextExecutionDate.Equal(out[j].NextExecutionDate) {
			return out[i].NextExecutionDate.Before(out[j].NextExecutionDate)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
