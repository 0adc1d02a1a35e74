package store

import "errors"

var (
	ErrAccountExists       = errors.New("account already exists")
	ErrRecordNotFound      = errors.New("record not found")
	ErrConstraintViolation = errors.New("database constraint violation")
	ErrDuplicateKey        = errors.New("duplicate key")

	// ErrConflict means a concurrent unit of work won; the caller may retry.
	ErrConflict = errors.New("concurrent update conflict")
	ErrNestedTx = errors.New("store is already in a transaction")
)
