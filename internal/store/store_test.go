package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	errBoom = errors.New("boom")
)

func newSQLiteStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.NewStore(filepath.Join(t.TempDir(), "paycore.db"), os.DirFS("../.."), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func forEachStore(t *testing.T, fn func(t *testing.T, repo store.Repository)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		fn(t, store.NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		fn(t, newSQLiteStore(t))
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCreateAccount(t *testing.T, repo store.Repository, number string, balance string, status model.AccountStatus) *model.Account {
	t.Helper()

	acc := &model.Account{
		Number:    number,
		UserID:    7,
		Type:      model.AccountTypeSavings,
		Balance:   dec(balance),
		Status:    status,
		CreatedAt: testNow,
	}
	id, err := repo.CreateAccount(context.Background(), acc)
	require.NoError(t, err)
	acc.ID = id
	return acc
}

func TestAccounts(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, repo store.Repository) {
		ctx := context.Background()
		created := mustCreateAccount(t, repo, "ACC-1", "1000.50", model.AccountActive)

		byID, err := repo.GetAccountByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "ACC-1", byID.Number)
		assert.True(t, dec("1000.50").Equal(byID.Balance))
		assert.Equal(t, model.AccountActive, byID.Status)
		assert.True(t, testNow.Equal(byID.CreatedAt))

		byNumber, err := repo.GetAccountByNumber(ctx, "ACC-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byNumber.ID)

		_, err = repo.CreateAccount(ctx, &model.Account{Number: "ACC-1", Status: model.AccountActive, CreatedAt: testNow})
		require.ErrorIs(t, err, store.ErrAccountExists)

		_, err = repo.GetAccountByNumber(ctx, "missing")
		require.ErrorIs(t, err, store.ErrRecordNotFound)
		_, err = repo.GetAccountByID(ctx, 9999)
		require.ErrorIs(t, err, store.ErrRecordNotFound)

		require.NoError(t, repo.UpdateAccountStatus(ctx, created.ID, model.AccountFrozen))
		frozen, err := repo.GetAccountByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AccountFrozen, frozen.Status)
		require.ErrorIs(t, repo.UpdateAccountStatus(ctx, 9999, model.AccountActive), store.ErrRecordNotFound)

		mustCreateAccount(t, repo, "ACC-0", "0", model.AccountPending)
		list, err := repo.ListAccounts(ctx, nil)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "ACC-0", list[0].Number)

		other := int64(99)
		list, err = repo.ListAccounts(ctx, &other)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestCompareAndSwapBalance(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, repo store.Repository) {
		ctx := context.Background()
		acc := mustCreateAccount(t, repo, "CAS-1", "100", model.AccountActive)

		ok, err := repo.CompareAndSwapBalance(ctx, acc.ID, dec("100"), dec("40"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.CompareAndSwapBalance(ctx, acc.ID, dec("100"), dec("10"))
		require.NoError(t, err)
		assert.False(t, ok, "stale expectation must lose")

		_, err = repo.CompareAndSwapBalance(ctx, acc.ID, dec("40"), dec("-1"))
		require.ErrorIs(t, err, store.ErrConstraintViolation)

		require.NoError(t, repo.UpdateAccountStatus(ctx, acc.ID, model.AccountFrozen))
		ok, err = repo.CompareAndSwapBalance(ctx, acc.ID, dec("40"), dec("0"))
		require.NoError(t, err)
		assert.False(t, ok, "frozen accounts are never mutated")

		got, err := repo.GetAccountByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.True(t, dec("40").Equal(got.Balance))
	})
}

func TestExecTxRollsBack(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, repo store.Repository) {
		ctx := context.Background()
		acc := mustCreateAccount(t, repo, "TX-1", "500", model.AccountActive)

		err := repo.ExecTx(ctx, func(tx store.Repository) error {
			ok, err := tx.CompareAndSwapBalance(ctx, acc.ID, dec("500"), dec("300"))
			require.NoError(t, err)
			require.True(t, ok)

			inner, err := tx.GetAccountByID(ctx, acc.ID)
			require.NoError(t, err)
			assert.True(t, dec("300").Equal(inner.Balance), "unit sees its own writes")

			_, err = tx.AppendEntry(ctx, &model.LedgerEntry{
				TransactionID: "INT-rollback",
				AccountID:     acc.ID,
				Type:          model.EntryTransfer,
				Status:        model.EntryCompleted,
				Amount:        dec("-200"),
				CreatedAt:     testNow,
			})
			require.NoError(t, err)
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		got, err := repo.GetAccountByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.True(t, dec("500").Equal(got.Balance))

		entries, err := repo.GetEntriesByTransactionID(ctx, "INT-rollback")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestExecTxRejectsNesting(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, repo store.Repository) {
		ctx := context.Background()
		err := repo.ExecTx(ctx, func(tx store.Repository) error {
			return tx.ExecTx(ctx, func(store.Repository) error { return nil })
		})
		require.ErrorIs(t, err, store.ErrNestedTx)
	})
}

func TestLedgerEntries(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, repo store.Repository) {
		ctx := context.Background()
		a := mustCreateAccount(t, repo, "L-A", "0", model.AccountActive)
		b := mustCreateAccount(t, repo, "L-B", "0", model.AccountActive)

		err := repo.ExecTx(ctx, func(tx store.Repository) error {
			for i, txID := range []string{"INT-1", "INT-2"} {
				if _, err := tx.AppendEntry(ctx, &model.LedgerEntry{
					TransactionID:       txID,
					AccountID:           a.ID,
					Type:                model.EntryTransfer,
					Status:              model.EntryCompleted,
					Amount:              decimal.NewFromInt(int64(-10 * (i + 1))),
					Note:                "Transfer to L-B - rent",
					CounterpartyAccount: "L-B",
					CreatedAt:           testNow,
				}); err != nil {
					return err
				}
				if _, err := tx.AppendEntry(ctx, &model.LedgerEntry{
					TransactionID:       txID,
					AccountID:           b.ID,
					Type:                model.EntryTransfer,
					Status:              model.EntryCompleted,
					Amount:              decimal.NewFromInt(int64(10 * (i + 1))),
					CounterpartyAccount: "L-A",
					CreatedAt:           testNow,
				}); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)

		legs, err := repo.GetEntriesByTransactionID(ctx, "INT-2")
		require.NoError(t, err)
		require.Len(t, legs, 2)
		assert.True(t, legs[0].Amount.Add(legs[1].Amount).IsZero())

		statement, err := repo.GetEntriesByAccount(ctx, a.ID, 10)
		require.NoError(t, err)
		require.Len(t, statement, 2)
		assert.Equal(t, "INT-2", statement[0].TransactionID, "newest first")
		assert.Equal(t, "Transfer to L-B - rent", statement[1].Note)
		assert.True(t, statement[1].IsDebit())

		limited, err := repo.GetEntriesByAccount(ctx, a.ID, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}

func newInstruction(id string, userID int64, next time.Time) *model.StandingInstruction {
	maxExec := 3
	return &model.StandingInstruction{
		InstructionID:     id,
		UserID:            userID,
		Name:              "Rent",
		Type:              model.FundTransfer,
		FromAccount:       "ACC-A",
		ToAccount:         "ACC-B",
		BeneficiaryName:   "Landlord",
		Amount:            dec("150.25"),
		Frequency:         model.Monthly,
		StartDate:         model.Date(next).AddDate(0, -1, 0),
		NextExecutionDate: model.Date(next),
		Status:            model.InstructionActive,
		MaxExecutions:     &maxExec,
		CreatedAt:         testNow,
		UpdatedAt:         testNow,
	}
}

func TestInstructions(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, repo store.Repository) {
		ctx := context.Background()
		asOf := model.Date(testNow)

		for _, si := range []*model.StandingInstruction{
			newInstruction("SI-late", 1, asOf.AddDate(0, 0, -3)),
			newInstruction("SI-today", 1, asOf),
			newInstruction("SI-future", 1, asOf.AddDate(0, 0, 1)),
			newInstruction("SI-other-user", 2, asOf.AddDate(0, 0, -1)),
		} {
			_, err := repo.CreateInstruction(ctx, si)
			require.NoError(t, err)
		}

		_, err := repo.CreateInstruction(ctx, newInstruction("SI-today", 1, asOf))
		require.ErrorIs(t, err, store.ErrDuplicateKey)

		due, err := repo.FindDueInstructions(ctx, asOf, nil, 0)
		require.NoError(t, err)
		require.Len(t, due, 3)
		assert.Equal(t, "SI-late", due[0].InstructionID)
		assert.Equal(t, "SI-other-user", due[1].InstructionID)
		assert.Equal(t, "SI-today", due[2].InstructionID)

		user := int64(1)
		due, err = repo.FindDueInstructions(ctx, asOf, &user, 1)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "SI-late", due[0].InstructionID)

		si, err := repo.GetInstruction(ctx, "SI-late")
		require.NoError(t, err)
		assert.True(t, dec("150.25").Equal(si.Amount))
		require.NotNil(t, si.MaxExecutions)
		assert.Equal(t, 3, *si.MaxExecutions)
		assert.Nil(t, si.EndDate)

		require.NoError(t, si.MarkExecuted(asOf, testNow))
		require.NoError(t, repo.SaveInstruction(ctx, si))

		reloaded, err := repo.GetInstruction(ctx, "SI-late")
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.ExecutionCount)
		assert.Equal(t, asOf.AddDate(0, 1, 0), reloaded.NextExecutionDate)
		require.NotNil(t, reloaded.LastExecuted)
		assert.True(t, testNow.Equal(*reloaded.LastExecuted))

		require.NoError(t, reloaded.Pause(testNow))
		require.NoError(t, repo.SaveInstruction(ctx, reloaded))

		paused, err := repo.ListInstructions(ctx, 1, model.InstructionPaused)
		require.NoError(t, err)
		require.Len(t, paused, 1)
		assert.Equal(t, "SI-late", paused[0].InstructionID)

		all, err := repo.ListInstructions(ctx, 1, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)

		_, err = repo.GetInstruction(ctx, "SI-missing")
		require.ErrorIs(t, err, store.ErrRecordNotFound)
		require.ErrorIs(t, repo.SaveInstruction(ctx, newInstruction("SI-missing", 1, asOf)), store.ErrRecordNotFound)
	})
}

func TestIdempotencyRecords(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, repo store.Repository) {
		ctx := context.Background()
		rec := &store.IdempotencyRecord{
			Key:              "key-1",
			RequestHash:      "abc",
			TransactionID:    "UPI-1",
			Rail:             "UPI",
			SourceAccountID:  1,
			Destination:      "alice@upi",
			Amount:           dec("25.50"),
			RemainingBalance: dec("74.50"),
			CreatedAt:        testNow,
		}
		require.NoError(t, repo.SaveIdempotencyRecord(ctx, rec))
		require.ErrorIs(t, repo.SaveIdempotencyRecord(ctx, rec), store.ErrDuplicateKey)

		got, err := repo.GetIdempotencyRecord(ctx, "key-1")
		require.NoError(t, err)
		assert.Equal(t, "UPI-1", got.TransactionID)
		assert.True(t, dec("74.50").Equal(got.RemainingBalance))

		_, err = repo.GetIdempotencyRecord(ctx, "key-2")
		require.ErrorIs(t, err, store.ErrRecordNotFound)
	})
}

func TestMemoryStoreDetectsLostUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := store.NewMemoryStore()
	acc := mustCreateAccount(t, repo, "M-1", "100", model.AccountActive)

	err := repo.ExecTx(ctx, func(tx store.Repository) error {
		ok, err := tx.CompareAndSwapBalance(ctx, acc.ID, dec("100"), dec("50"))
		require.NoError(t, err)
		require.True(t, ok)

		// A concurrent unit commits first.
		ok, err = repo.CompareAndSwapBalance(ctx, acc.ID, dec("100"), dec("90"))
		require.NoError(t, err)
		require.True(t, ok)
		return nil
	})
	require.ErrorIs(t, err, store.ErrConflict)

	got, err := repo.GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, dec("90").Equal(got.Balance))
}

func TestMemoryStoreDetectsStaleInstruction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := store.NewMemoryStore()
	asOf := model.Date(testNow)
	_, err := repo.CreateInstruction(ctx, newInstruction("SI-1", 1, asOf))
	require.NoError(t, err)

	err = repo.ExecTx(ctx, func(tx store.Repository) error {
		si, err := tx.GetInstruction(ctx, "SI-1")
		require.NoError(t, err)

		other, err := repo.GetInstruction(ctx, "SI-1")
		require.NoError(t, err)
		require.NoError(t, other.Pause(testNow))
		require.NoError(t, repo.SaveInstruction(ctx, other))

		require.NoError(t, si.MarkExecuted(asOf, testNow))
		return tx.SaveInstruction(ctx, si)
	})
	require.ErrorIs(t, err, store.ErrConflict)

	got, err := repo.GetInstruction(ctx, "SI-1")
	require.NoError(t, err)
	assert.Equal(t, model.InstructionPaused, got.Status)
	assert.Equal(t, 0, got.ExecutionCount)
}
