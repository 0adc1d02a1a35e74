package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransition      = errors.New("instruction: invalid state transition")
	ErrUnknownInstructionType = errors.New("instruction: unknown instruction type")
)

type InstructionStatus string

const (
	InstructionActive    InstructionStatus = "ACTIVE"
	InstructionPaused    InstructionStatus = "PAUSED"
	InstructionCompleted InstructionStatus = "COMPLETED"
	InstructionCancelled InstructionStatus = "CANCELLED"
	InstructionFailed    InstructionStatus = "FAILED"
)

// IsTerminal reports whether no further transition is possible.
func (s InstructionStatus) IsTerminal() bool {
	return s == InstructionCompleted || s == InstructionCancelled || s == InstructionFailed
}

func ParseInstructionStatus(s string) (InstructionStatus, error) {
	switch st := InstructionStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case InstructionActive, InstructionPaused, InstructionCompleted, InstructionCancelled, InstructionFailed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown instruction status %q", s)
	}
}

type InstructionType string

const (
	FundTransfer     InstructionType = "FUND_TRANSFER"
	BillPayment      InstructionType = "BILL_PAYMENT"
	EMIPayment       InstructionType = "EMI_PAYMENT"
	LoanRepayment    InstructionType = "LOAN_REPAYMENT"
	Investment       InstructionType = "INVESTMENT"
	InsurancePremium InstructionType = "INSURANCE_PREMIUM"
	UtilityBill      InstructionType = "UTILITY_BILL"
	RecurringDeposit InstructionType = "RECURRING_DEPOSIT"
)

var InstructionTypes = []InstructionType{
	FundTransfer, BillPayment, EMIPayment, LoanRepayment,
	Investment, InsurancePremium, UtilityBill, RecurringDeposit,
}

func ParseInstructionType(s string) (InstructionType, error) {
	t := InstructionType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range InstructionTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInstructionType, s)
}

// StandingInstruction is a recurring transfer order. Dates are calendar
// dates at UTC midnight.
type StandingInstruction struct {
	ID                int64
	InstructionID     string
	UserID            int64
	Name              string
	Description       string
	Type              InstructionType
	FromAccount       string
	ToAccount         string
	BeneficiaryName   string
	Amount            decimal.Decimal
	Frequency         Frequency
	StartDate         time.Time
	EndDate           *time.Time
	NextExecutionDate time.Time
	LastExecuted      *time.Time
	Status            InstructionStatus
	ExecutionCount    int
	MaxExecutions     *int
	FailureReason     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsDue reports whether the instruction should run on the given date.
// EndDate only feeds the expiring-soon statistic; it never stops a run.
func (si *StandingInstruction) IsDue(asOf time.Time) bool {
	if si.Status != InstructionActive {
		return false
	}
	return !Date(si.NextExecutionDate).After(Date(asOf))
}

// MarkExecuted records a successful run on today. The next execution date
// advances one frequency step from today, not from the previous due date.
func (si *StandingInstruction) MarkExecuted(today, at time.Time) error {
	if si.Status != InstructionActive {
		return fmt.Errorf("%w: cannot execute %s instruction", ErrInvalidTransition, si.Status)
	}

	executedAt := at
	si.LastExecuted = &executedAt
	si.ExecutionCount++
	si.NextExecutionDate = si.Frequency.Advance(today)
	si.UpdatedAt = at

	if si.MaxExecutions != nil && si.ExecutionCount >= *si.MaxExecutions {
		si.Status = InstructionCompleted
	}
	return nil
}

// MarkFailed leaves ExecutionCount and NextExecutionDate untouched.
func (si *StandingInstruction) MarkFailed(reason string, at time.Time) error {
	if si.Status != InstructionActive {
		return fmt.Errorf("%w: cannot fail %s instruction", ErrInvalidTransition, si.Status)
	}
	si.Status = InstructionFailed
	si.FailureReason = reason
	si.UpdatedAt = at
	return nil
}

func (si *StandingInstruction) Pause(at time.Time) error {
	if si.Status != InstructionActive {
		return fmt.Errorf("%w: only active instructions can be paused", ErrInvalidTransition)
	}
	si.Status = InstructionPaused
	si.UpdatedAt = at
	return nil
}

func (si *StandingInstruction) Resume(at time.Time) error {
	if si.Status != InstructionPaused {
		return fmt.Errorf("%w: only paused instructions can be resumed", ErrInvalidTransition)
	}
	si.Status = InstructionActive
	si.UpdatedAt = at
	return nil
}

func (si *StandingInstruction) Cancel(reason string, at time.Time) error {
	if si.Status != InstructionActive && si.Status != InstructionPaused {
		return fmt.Errorf("%w: cannot cancel %s instruction", ErrInvalidTransition, si.Status)
	}
	si.Status = InstructionCancelled
	si.FailureReason = reason
	si.UpdatedAt = at
	return nil
}

// Clone returns a deep copy safe to mutate independently.
func (si *StandingInstruction) Clone() *StandingInstruction {
	c := *si
	if si.EndDate != nil {
		end := *si.EndDate
		c.EndDate = &end
	}
	if si.LastExecuted != nil {
		last := *si.LastExecuted
		c.LastExecuted = &last
	}
	if si.MaxExecutions != nil {
		maxExec := *si.MaxExecutions
		c.MaxExecutions = &maxExec
	}
	return &c
}
