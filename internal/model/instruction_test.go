package model_test

import (
	"testing"
	"time"

	"github.com/hance08/paycore/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstruction(status model.InstructionStatus) *model.StandingInstruction {
	return &model.StandingInstruction{
		InstructionID:     "SI-TEST",
		Amount:            decimal.NewFromInt(150),
		Frequency:         model.Monthly,
		StartDate:         day(2026, 1, 1),
		NextExecutionDate: day(2026, 2, 1),
		Status:            status,
	}
}

func TestIsDue(t *testing.T) {
	t.Parallel()

	si := newInstruction(model.InstructionActive)

	assert.False(t, si.IsDue(day(2026, 1, 31)))
	assert.True(t, si.IsDue(day(2026, 2, 1)))
	assert.True(t, si.IsDue(time.Date(2026, 2, 1, 23, 59, 0, 0, time.UTC)))
	assert.True(t, si.IsDue(day(2026, 3, 1)))

	si.Status = model.InstructionPaused
	assert.False(t, si.IsDue(day(2026, 3, 1)))
}

func TestMarkExecutedAdvancesFromToday(t *testing.T) {
	t.Parallel()

	si := newInstruction(model.InstructionActive)
	at := time.Date(2026, 2, 10, 6, 0, 0, 0, time.UTC)

	require.NoError(t, si.MarkExecuted(day(2026, 2, 10), at))

	assert.Equal(t, 1, si.ExecutionCount)
	assert.Equal(t, day(2026, 3, 10), si.NextExecutionDate)
	require.NotNil(t, si.LastExecuted)
	assert.Equal(t, at, *si.LastExecuted)
	assert.Equal(t, model.InstructionActive, si.Status)
}

func TestMarkExecutedCompletesAtMax(t *testing.T) {
	t.Parallel()

	maxExec := 2
	si := newInstruction(model.InstructionActive)
	si.MaxExecutions = &maxExec

	require.NoError(t, si.MarkExecuted(day(2026, 2, 1), day(2026, 2, 1)))
	assert.Equal(t, model.InstructionActive, si.Status)

	require.NoError(t, si.MarkExecuted(day(2026, 3, 1), day(2026, 3, 1)))
	assert.Equal(t, model.InstructionCompleted, si.Status)
	assert.False(t, si.IsDue(day(2027, 1, 1)))

	err := si.MarkExecuted(day(2026, 4, 1), day(2026, 4, 1))
	require.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Equal(t, 2, si.ExecutionCount)
}

func TestEndDateNeverCompletesBeforeMax(t *testing.T) {
	t.Parallel()

	end := day(2026, 2, 15)
	maxExec := 3
	si := newInstruction(model.InstructionActive)
	si.EndDate = &end
	si.MaxExecutions = &maxExec

	require.NoError(t, si.MarkExecuted(day(2026, 2, 1), day(2026, 2, 1)))
	assert.Equal(t, model.InstructionActive, si.Status)
	assert.Equal(t, day(2026, 3, 1), si.NextExecutionDate)
	assert.True(t, si.IsDue(day(2026, 3, 1)), "a next date past the end date is still due")

	require.NoError(t, si.MarkExecuted(day(2026, 3, 1), day(2026, 3, 1)))
	assert.Equal(t, model.InstructionActive, si.Status)

	require.NoError(t, si.MarkExecuted(day(2026, 4, 1), day(2026, 4, 1)))
	assert.Equal(t, model.InstructionCompleted, si.Status)
	assert.Equal(t, 3, si.ExecutionCount)
}

func TestEndDateWithoutMaxKeepsRunning(t *testing.T) {
	t.Parallel()

	end := day(2026, 1, 31)
	si := newInstruction(model.InstructionActive)
	si.EndDate = &end

	assert.True(t, si.IsDue(day(2026, 2, 1)))
	require.NoError(t, si.MarkExecuted(day(2026, 2, 1), day(2026, 2, 1)))
	assert.Equal(t, model.InstructionActive, si.Status)
}

func TestMarkFailedKeepsSchedule(t *testing.T) {
	t.Parallel()

	si := newInstruction(model.InstructionActive)
	require.NoError(t, si.MarkFailed("insufficient funds", day(2026, 2, 1)))

	assert.Equal(t, model.InstructionFailed, si.Status)
	assert.Equal(t, "insufficient funds", si.FailureReason)
	assert.Equal(t, 0, si.ExecutionCount)
	assert.Equal(t, day(2026, 2, 1), si.NextExecutionDate)
}

func TestTransitions(t *testing.T) {
	t.Parallel()

	at := day(2026, 2, 1)
	statuses := []model.InstructionStatus{
		model.InstructionActive,
		model.InstructionPaused,
		model.InstructionCompleted,
		model.InstructionCancelled,
		model.InstructionFailed,
	}

	tests := []struct {
		name    string
		apply   func(*model.StandingInstruction) error
		allowed map[model.InstructionStatus]model.InstructionStatus
	}{
		{
			name:    "pause",
			apply:   func(si *model.StandingInstruction) error { return si.Pause(at) },
			allowed: map[model.InstructionStatus]model.InstructionStatus{model.InstructionActive: model.InstructionPaused},
		},
		{
			name:    "resume",
			apply:   func(si *model.StandingInstruction) error { return si.Resume(at) },
			allowed: map[model.InstructionStatus]model.InstructionStatus{model.InstructionPaused: model.InstructionActive},
		},
		{
			name:  "cancel",
			apply: func(si *model.StandingInstruction) error { return si.Cancel("Cancelled by user", at) },
			allowed: map[model.InstructionStatus]model.InstructionStatus{
				model.InstructionActive: model.InstructionCancelled,
				model.InstructionPaused: model.InstructionCancelled,
			},
		},
		{
			name:    "fail",
			apply:   func(si *model.StandingInstruction) error { return si.MarkFailed("boom", at) },
			allowed: map[model.InstructionStatus]model.InstructionStatus{model.InstructionActive: model.InstructionFailed},
		},
	}

	for _, tt := range tests {
		for _, from := range statuses {
			t.Run(tt.name+" from "+string(from), func(t *testing.T) {
				t.Parallel()

				si := newInstruction(from)
				err := tt.apply(si)

				want, ok := tt.allowed[from]
				if !ok {
					require.ErrorIs(t, err, model.ErrInvalidTransition)
					assert.Equal(t, from, si.Status)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, want, si.Status)
			})
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	t.Parallel()

	assert.False(t, model.InstructionActive.IsTerminal())
	assert.False(t, model.InstructionPaused.IsTerminal())
	assert.True(t, model.InstructionCompleted.IsTerminal())
	assert.True(t, model.InstructionCancelled.IsTerminal())
	assert.True(t, model.InstructionFailed.IsTerminal())
}

func TestClone(t *testing.T) {
	t.Parallel()

	maxExec := 3
	end := day(2026, 12, 31)
	si := newInstruction(model.InstructionActive)
	si.MaxExecutions = &maxExec
	si.EndDate = &end

	c := si.Clone()
	*c.MaxExecutions = 10
	*c.EndDate = day(2030, 1, 1)
	c.Status = model.InstructionPaused

	assert.Equal(t, 3, *si.MaxExecutions)
	assert.Equal(t, day(2026, 12, 31), *si.EndDate)
	assert.Equal(t, model.InstructionActive, si.Status)
}
