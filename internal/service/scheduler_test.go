package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/hance08/paycore/internal/mocks"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/notify"
	"github.com/hance08/paycore/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSweepExecutesDueInstruction(t *testing.T) {
	t.Parallel()

	for name, newF := range map[string]func(*testing.T, ...fixtureOption) *fixture{
		"memory": newMemoryFixture,
		"sqlite": newSQLiteFixture,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newF(t)
			a := f.openAccount(t, "ACC-A", "1000")
			b := f.openAccount(t, "ACC-B", "0")
			si := f.createInstruction(t, "ACC-A", "ACC-B", "150", model.Monthly)

			today := model.Date(testNow)
			f.makeDue(t, si, today)

			report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: today})
			require.NoError(t, err)
			assert.Equal(t, 1, report.Executed)
			assert.Zero(t, report.Failed)
			assert.Zero(t, report.Skipped)

			assert.True(t, dec("850").Equal(f.balance(t, a.ID)))
			assert.True(t, dec("150").Equal(f.balance(t, b.ID)))

			got := f.instruction(t, si.InstructionID)
			assert.Equal(t, 1, got.ExecutionCount)
			assert.Equal(t, model.InstructionActive, got.Status)
			assert.True(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC).Equal(got.NextExecutionDate))
			require.NotNil(t, got.LastExecuted)

			entries, err := f.repo.GetEntriesByAccount(context.Background(), a.ID, 1)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "Transfer to ACC-B - Standing instruction: Rent", entries[0].Note)
			assert.Equal(t, "Landlord", entries[0].CounterpartyName)

			again, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: today})
			require.NoError(t, err)
			assert.Zero(t, again.Executed, "an executed instruction is not due again the same day")
		})
	}
}

func TestSweepCompletesAfterMaxExecutions(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t)
	a := f.openAccount(t, "ACC-A", "1000")
	f.openAccount(t, "ACC-B", "0")
	si := f.createInstruction(t, "ACC-A", "ACC-B", "100", model.Monthly, func(in *service.CreateInstructionInput) {
		maxExec := 3
		in.MaxExecutions = &maxExec
	})

	asOf := si.NextExecutionDate
	for i := 1; i <= 3; i++ {
		report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: asOf})
		require.NoError(t, err)
		require.Equal(t, 1, report.Executed, "sweep %d", i)

		got := f.instruction(t, si.InstructionID)
		assert.Equal(t, i, got.ExecutionCount)
		if i < 3 {
			assert.Equal(t, model.InstructionActive, got.Status)
		}
		asOf = got.NextExecutionDate
	}

	got := f.instruction(t, si.InstructionID)
	assert.Equal(t, model.InstructionCompleted, got.Status)
	assert.True(t, dec("700").Equal(f.balance(t, a.ID)))

	for _, later := range []time.Time{asOf, asOf.AddDate(1, 0, 0)} {
		report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: later})
		require.NoError(t, err)
		assert.Zero(t, report.Executed)
	}
	assert.Equal(t, 3, f.instruction(t, si.InstructionID).ExecutionCount)
}

func TestSweepEndDateDoesNotCompleteBeforeMax(t *testing.T) {
	t.Parallel()

	for name, newF := range map[string]func(*testing.T, ...fixtureOption) *fixture{
		"memory": newMemoryFixture,
		"sqlite": newSQLiteFixture,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newF(t)
			a := f.openAccount(t, "ACC-A", "1000")
			f.openAccount(t, "ACC-B", "0")
			end := model.Date(testNow).AddDate(0, 1, 0)
			si := f.createInstruction(t, "ACC-A", "ACC-B", "100", model.Monthly, func(in *service.CreateInstructionInput) {
				maxExec := 3
				in.MaxExecutions = &maxExec
				in.EndDate = &end
			})

			asOf := si.NextExecutionDate
			for i := 1; i <= 3; i++ {
				report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: asOf})
				require.NoError(t, err)
				require.Equal(t, 1, report.Executed, "sweep %d", i)

				got := f.instruction(t, si.InstructionID)
				require.Equal(t, i, got.ExecutionCount)
				if i < 3 {
					assert.Equal(t, model.InstructionActive, got.Status, "sweep %d", i)
				}
				asOf = got.NextExecutionDate
			}

			assert.Equal(t, model.InstructionCompleted, f.instruction(t, si.InstructionID).Status)
			assert.True(t, dec("700").Equal(f.balance(t, a.ID)))
		})
	}
}

func TestSweepHonoursMaxExecutionsChangedAfterRuns(t *testing.T) {
	t.Parallel()

	for name, newF := range map[string]func(*testing.T, ...fixtureOption) *fixture{
		"memory": newMemoryFixture,
		"sqlite": newSQLiteFixture,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newF(t)
			a := f.openAccount(t, "ACC-A", "1000")
			f.openAccount(t, "ACC-B", "0")
			si := f.createInstruction(t, "ACC-A", "ACC-B", "10", model.Daily)
			ctx := context.Background()

			asOf := si.NextExecutionDate
			for i := 0; i < 2; i++ {
				report, err := f.svc.Scheduler.RunDueInstructionSweep(ctx, service.SweepRequest{AsOf: asOf})
				require.NoError(t, err)
				require.Equal(t, 1, report.Executed)
				asOf = f.instruction(t, si.InstructionID).NextExecutionDate
			}

			for _, tooLow := range []int{1, 2} {
				maxExec := tooLow
				_, err := f.svc.Instruction.Update(ctx, testUserID, si.InstructionID, service.UpdateInstructionInput{MaxExecutions: &maxExec})
				require.ErrorIs(t, err, service.ErrInvalidInstruction, "max %d", tooLow)

				var fe *service.FieldError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "maxExecutions", fe.Field)
			}
			unchanged := f.instruction(t, si.InstructionID)
			assert.Nil(t, unchanged.MaxExecutions)
			assert.Equal(t, model.InstructionActive, unchanged.Status)

			maxExec := 3
			_, err := f.svc.Instruction.Update(ctx, testUserID, si.InstructionID, service.UpdateInstructionInput{MaxExecutions: &maxExec})
			require.NoError(t, err)

			report, err := f.svc.Scheduler.RunDueInstructionSweep(ctx, service.SweepRequest{AsOf: asOf})
			require.NoError(t, err)
			assert.Equal(t, 1, report.Executed)

			got := f.instruction(t, si.InstructionID)
			assert.Equal(t, 3, got.ExecutionCount)
			assert.Equal(t, model.InstructionCompleted, got.Status)

			report, err = f.svc.Scheduler.RunDueInstructionSweep(ctx, service.SweepRequest{AsOf: got.NextExecutionDate})
			require.NoError(t, err)
			assert.Zero(t, report.Executed)
			assert.True(t, dec("970").Equal(f.balance(t, a.ID)))
		})
	}
}

func TestSweepMarksInsufficientFundsAsFailed(t *testing.T) {
	t.Parallel()

	for name, newF := range map[string]func(*testing.T, ...fixtureOption) *fixture{
		"memory": newMemoryFixture,
		"sqlite": newSQLiteFixture,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newF(t)
			a := f.openAccount(t, "ACC-A", "100")
			b := f.openAccount(t, "ACC-B", "0")
			si := f.createInstruction(t, "ACC-A", "ACC-B", "150", model.Monthly)

			today := model.Date(testNow)
			before := f.makeDue(t, si, today)

			report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: today})
			require.NoError(t, err)
			assert.Zero(t, report.Executed)
			assert.Equal(t, 1, report.Failed)
			require.Len(t, report.Failures, 1)
			assert.Equal(t, si.InstructionID, report.Failures[0].InstructionID)
			assert.ErrorIs(t, report.Failures[0], service.ErrInsufficientFunds)

			got := f.instruction(t, si.InstructionID)
			assert.Equal(t, model.InstructionFailed, got.Status)
			assert.Equal(t, "Insufficient balance", got.FailureReason)
			assert.Equal(t, before.ExecutionCount, got.ExecutionCount)
			assert.True(t, before.NextExecutionDate.Equal(got.NextExecutionDate))

			assert.True(t, dec("100").Equal(f.balance(t, a.ID)))
			assert.True(t, f.balance(t, b.ID).IsZero())
		})
	}
}

func TestSweepFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t)
	f.openAccount(t, "ACC-A", "1000")
	f.openAccount(t, "ACC-B", "0")
	f.openAccountWithStatus(t, "ACC-X", "0", model.AccountClosed)

	today := model.Date(testNow)
	ok1 := f.makeDue(t, f.createInstruction(t, "ACC-A", "ACC-B", "100", model.Weekly), today)
	bad := f.makeDue(t, f.createInstruction(t, "ACC-A", "ACC-X", "100", model.Weekly), today)
	ok2 := f.makeDue(t, f.createInstruction(t, "ACC-A", "ACC-B", "200", model.Daily), today)

	report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: today})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Executed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad.InstructionID, report.Failures[0].InstructionID)
	assert.ErrorIs(t, report.Failures[0], service.ErrDestinationNotFound)

	assert.Equal(t, model.InstructionActive, f.instruction(t, ok1.InstructionID).Status)
	assert.Equal(t, model.InstructionActive, f.instruction(t, ok2.InstructionID).Status)
	assert.Equal(t, model.InstructionFailed, f.instruction(t, bad.InstructionID).Status)
}

func TestSweepSharedSourceAccountNeverOverdraws(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t)
	a := f.openAccount(t, "ACC-A", "500")
	f.openAccount(t, "ACC-B", "0")

	today := model.Date(testNow)
	for i := 0; i < 8; i++ {
		f.makeDue(t, f.createInstruction(t, "ACC-A", "ACC-B", "100", model.Monthly), today)
	}

	report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: today})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Executed)
	assert.Equal(t, 3, report.Failed)
	assert.True(t, f.balance(t, a.ID).IsZero())
}

func TestSweepScopedToUser(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t)
	f.openAccount(t, "ACC-A", "1000")
	f.openAccount(t, "ACC-B", "0")
	today := model.Date(testNow)
	f.makeDue(t, f.createInstruction(t, "ACC-A", "ACC-B", "10", model.Daily), today)

	other := testUserID + 1
	report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: today, UserID: &other})
	require.NoError(t, err)
	assert.Zero(t, report.Executed)

	mine := testUserID
	report, err = f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: today, UserID: &mine})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Executed)
}

func TestSweepCancelledReportsSkipped(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t)
	a := f.openAccount(t, "ACC-A", "1000")
	f.openAccount(t, "ACC-B", "0")
	today := model.Date(testNow)
	for i := 0; i < 3; i++ {
		f.makeDue(t, f.createInstruction(t, "ACC-A", "ACC-B", "10", model.Daily), today)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.Scheduler.RunDueInstructionSweep(ctx, service.SweepRequest{AsOf: today})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Executed)
	assert.Equal(t, 3, report.Skipped)
	assert.True(t, dec("1000").Equal(f.balance(t, a.ID)))
}

func TestSweepDefaultsToClockDate(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t)
	f.openAccount(t, "ACC-A", "1000")
	f.openAccount(t, "ACC-B", "0")
	f.makeDue(t, f.createInstruction(t, "ACC-A", "ACC-B", "10", model.Daily), model.Date(testNow))

	report, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{})
	require.NoError(t, err)
	assert.True(t, model.Date(testNow).Equal(report.AsOf))
	assert.Equal(t, 1, report.Executed)
}

func TestSweepPublishesInstructionEvents(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	f := newMemoryFixture(t, withNotifier(pub))
	f.openAccount(t, "ACC-A", "100")
	f.openAccount(t, "ACC-B", "0")
	today := model.Date(testNow)
	ok := f.makeDue(t, f.createInstruction(t, "ACC-A", "ACC-B", "60", model.Daily), today)

	var events []notify.Event
	pub.EXPECT().Publish(gomock.Any()).AnyTimes().Do(func(ev notify.Event) {
		events = append(events, ev)
	})

	_, err := f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: today})
	require.NoError(t, err)

	var types []notify.EventType
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []notify.EventType{
		notify.BalanceChanged, notify.BalanceChanged, notify.TransferCompleted, notify.InstructionExecuted,
	}, types)
	assert.Equal(t, ok.InstructionID, events[3].InstructionID)

	events = nil
	tomorrow := today.AddDate(0, 0, 1)
	_, err = f.svc.Scheduler.RunDueInstructionSweep(context.Background(), service.SweepRequest{AsOf: tomorrow})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, notify.InstructionFailed, events[0].Type)
	assert.Equal(t, "Insufficient balance", events[0].Message)
}

func TestInstructionIdempotencyKey(t *testing.T) {
	t.Parallel()

	si := &model.StandingInstruction{
		InstructionID:     "SI0123ABCD",
		NextExecutionDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "SI:SI0123ABCD:2026-05-01", service.InstructionIdempotencyKey(si))
}
