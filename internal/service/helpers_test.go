package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/notify"
	"github.com/hance08/paycore/internal/platform"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testUserID int64 = 7

var testNow = time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

type fixture struct {
	repo store.Repository
	svc  *service.Service
}

type fixtureOption func(*service.Deps, *service.Config)

func withNotifier(p notify.Publisher) fixtureOption {
	return func(d *service.Deps, _ *service.Config) { d.Notifier = p }
}

func withRTGSMax(limit string) fixtureOption {
	return func(_ *service.Deps, c *service.Config) { c.Transfer.RTGSMax = dec(limit) }
}

func newFixture(t *testing.T, repo store.Repository, opts ...fixtureOption) *fixture {
	t.Helper()

	deps := service.Deps{
		Repo:   repo,
		Clock:  platform.FixedClock{At: testNow},
		Logger: zaptest.NewLogger(t),
	}
	cfg := service.Config{
		Transfer:  service.TransferConfig{MaxRetries: 50, RetryBase: time.Millisecond},
		Scheduler: service.SchedulerConfig{BatchSize: 100, Concurrency: 4},
	}
	for _, opt := range opts {
		opt(&deps, &cfg)
	}
	return &fixture{repo: repo, svc: service.NewService(deps, cfg)}
}

func newMemoryFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	return newFixture(t, store.NewMemoryStore(), opts...)
}

func newSQLiteFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	s, err := store.NewStore(filepath.Join(t.TempDir(), "paycore.db"), os.DirFS("../.."), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return newFixture(t, s, opts...)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) openAccount(t *testing.T, number, balance string) *model.Account {
	t.Helper()
	return f.openAccountWithStatus(t, number, balance, model.AccountActive)
}

func (f *fixture) openAccountWithStatus(t *testing.T, number, balance string, status model.AccountStatus) *model.Account {
	t.Helper()

	acc, err := f.svc.Account.Open(context.Background(), service.OpenAccountInput{
		Number:         number,
		UserID:         testUserID,
		OpeningBalance: dec(balance),
		Status:         status,
	})
	require.NoError(t, err)
	return acc
}

func (f *fixture) balance(t *testing.T, id int64) decimal.Decimal {
	t.Helper()

	acc, err := f.repo.GetAccountByID(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}

func (f *fixture) createInstruction(t *testing.T, from, to, amount string, freq model.Frequency, mutators ...func(*service.CreateInstructionInput)) *model.StandingInstruction {
	t.Helper()

	in := service.CreateInstructionInput{
		UserID:          testUserID,
		Name:            "Rent",
		Type:            model.FundTransfer,
		FromAccount:     from,
		ToAccount:       to,
		BeneficiaryName: "Landlord",
		Amount:          dec(amount),
		Frequency:       freq,
		StartDate:       model.Date(testNow),
	}
	for _, m := range mutators {
		m(&in)
	}
	si, err := f.svc.Instruction.Create(context.Background(), in)
	require.NoError(t, err)
	return si
}

// makeDue moves the instruction's next execution date back to the given day.
func (f *fixture) makeDue(t *testing.T, si *model.StandingInstruction, day time.Time) *model.StandingInstruction {
	t.Helper()

	ctx := context.Background()
	current, err := f.repo.GetInstruction(ctx, si.InstructionID)
	require.NoError(t, err)
	current.NextExecutionDate = model.Date(day)
	require.NoError(t, f.repo.SaveInstruction(ctx, current))
	return current
}

func (f *fixture) instruction(t *testing.T, instructionID string) *model.StandingInstruction {
	t.Helper()

	si, err := f.repo.GetInstruction(context.Background(), instructionID)
	require.NoError(t, err)
	return si
}
