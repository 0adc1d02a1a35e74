package service

import (
	"errors"
	"fmt"

	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/store"
)

var (
	ErrInvalidAmount       = errors.New("transfer: amount must be positive with at most two decimals")
	ErrAccountNotFound     = errors.New("transfer: account not found")
	ErrAccountNotActive    = errors.New("transfer: account is not active")
	ErrRailPolicyViolation = errors.New("transfer: rail policy violation")
	ErrDestinationNotFound = errors.New("transfer: destination account not found")
	ErrInsufficientFunds   = errors.New("transfer: insufficient funds")
	ErrStoreConflict       = errors.New("transfer: concurrent update conflict")
	ErrIdempotencyConflict = errors.New("transfer: idempotency key reused with a different request")

	ErrInstructionNotFound = errors.New("instruction: not found")
	ErrInvalidInstruction  = errors.New("instruction: invalid input")
)

// RailViolation reports why a rail refused a transfer. It matches
// ErrRailPolicyViolation, and ErrDestinationNotFound when the internal
// destination could not be resolved.
type RailViolation struct {
	Rail   model.Rail
	Reason string

	destinationMissing bool
}

func (e *RailViolation) Error() string {
	if e.Rail == "" {
		return fmt.Sprintf("rail policy violation: %s", e.Reason)
	}
	return fmt.Sprintf("%s rail policy violation: %s", e.Rail, e.Reason)
}

func (e *RailViolation) Is(target error) bool {
	if target == ErrRailPolicyViolation {
		return true
	}
	return e.destinationMissing && target == ErrDestinationNotFound
}

// InstructionFailure is one instruction that could not be executed during
// a sweep.
type InstructionFailure struct {
	InstructionID string
	Cause         error
}

func (f InstructionFailure) Error() string {
	return fmt.Sprintf("instruction %s: %v", f.InstructionID, f.Cause)
}

func (f InstructionFailure) Unwrap() error {
	return f.Cause
}

type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindInvalidAmount       ErrorKind = "INVALID_AMOUNT"
	KindAccountNotFound     ErrorKind = "ACCOUNT_NOT_FOUND"
	KindAccountNotActive    ErrorKind = "ACCOUNT_NOT_ACTIVE"
	KindRailPolicy          ErrorKind = "RAIL_POLICY_VIOLATION"
	KindDestinationNotFound ErrorKind = "DESTINATION_NOT_FOUND"
	KindInsufficientFunds   ErrorKind = "INSUFFICIENT_FUNDS"
	KindStoreConflict       ErrorKind = "STORE_CONFLICT"
	KindIdempotencyConflict ErrorKind = "IDEMPOTENCY_CONFLICT"
	KindInstructionNotFound ErrorKind = "INSTRUCTION_NOT_FOUND"
	KindInvalidInstruction  ErrorKind = "INVALID_INSTRUCTION"
	KindInvalidTransition   ErrorKind = "INVALID_TRANSITION"
	KindInternal            ErrorKind = "INTERNAL"
)

// Kind classifies err. Destination lookups are checked before the broader
// rail policy kind they also match.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrAccountNotFound):
		return KindAccountNotFound
	case errors.Is(err, ErrAccountNotActive):
		return KindAccountNotActive
	case errors.Is(err, ErrDestinationNotFound):
		return KindDestinationNotFound
	case errors.Is(err, ErrRailPolicyViolation):
		return KindRailPolicy
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrStoreConflict):
		return KindStoreConflict
	case errors.Is(err, ErrIdempotencyConflict):
		return KindIdempotencyConflict
	case errors.Is(err, ErrInstructionNotFound):
		return KindInstructionNotFound
	case errors.Is(err, ErrInvalidInstruction):
		return KindInvalidInstruction
	case errors.Is(err, model.ErrInvalidTransition):
		return KindInvalidTransition
	default:
		return KindInternal
	}
}

// UserMessage returns a stable message for err that is safe to show to an
// end user. Rail violations carry their reason; internal errors never leak.
func UserMessage(err error) string {
	switch Kind(err) {
	case KindNone:
		return ""
	case KindInvalidAmount:
		return "Invalid amount"
	case KindAccountNotFound:
		return "Account not found"
	case KindAccountNotActive:
		return "Account is not active"
	case KindDestinationNotFound:
		return "Destination account not found or inactive"
	case KindRailPolicy:
		var rv *RailViolation
		if errors.As(err, &rv) {
			return "Transfer not allowed: " + rv.Reason
		}
		return "Transfer not allowed"
	case KindInsufficientFunds:
		return "Insufficient balance"
	case KindStoreConflict:
		return "The account is busy, please retry"
	case KindIdempotencyConflict:
		return "Idempotency key was already used for a different request"
	case KindInstructionNotFound:
		return "Standing instruction not found"
	case KindInvalidInstruction:
		var fe *FieldError
		if errors.As(err, &fe) {
			return fe.Message
		}
		return "Invalid standing instruction"
	case KindInvalidTransition:
		return "Operation not allowed in the instruction's current status"
	default:
		return "Transfer failed, please try again later"
	}
}

// FieldError is an input validation failure on a single field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidInstruction
}

func invalidField(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// retryable reports whether err came from losing a race against another
// unit of work.
func retryable(err error) bool {
	return errors.Is(err, errBalanceChanged) || errors.Is(err, store.ErrConflict)
}

var errBalanceChanged = errors.New("balance changed during transfer")
