package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountPending  AccountStatus = "PENDING"
	AccountActive   AccountStatus = "ACTIVE"
	AccountFrozen   AccountStatus = "FROZEN"
	AccountClosed   AccountStatus = "CLOSED"
	AccountRejected AccountStatus = "REJECTED"
)

func ParseAccountStatus(s string) (AccountStatus, error) {
	switch st := AccountStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case AccountPending, AccountActive, AccountFrozen, AccountClosed, AccountRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown account status %q", s)
	}
}

const (
	AccountTypeSavings = "SAVINGS"
	AccountTypeCurrent = "CURRENT"
)

type Account struct {
	ID        int64
	Number    string
	UserID    int64
	Type      string
	Balance   decimal.Decimal
	Status    AccountStatus
	CreatedAt time.Time
}

func (a *Account) IsActive() bool {
	return a.Status == AccountActive
}
