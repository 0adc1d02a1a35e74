package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRail = errors.New("transfer: unknown rail")

type Rail string

const (
	RailInternal Rail = "INTERNAL"
	RailUPI      Rail = "UPI"
	RailNEFT     Rail = "NEFT"
	RailRTGS     Rail = "RTGS"
)

var Rails = []Rail{RailInternal, RailUPI, RailNEFT, RailRTGS}

func ParseRail(s string) (Rail, error) {
	r := Rail(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Rails {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRail, s)
}

// TransactionPrefix is the prefix of transaction ids minted on the rail.
func (r Rail) TransactionPrefix() string {
	if r == RailInternal {
		return "INT"
	}
	return string(r)
}

func (r Rail) EntryType() EntryType {
	switch r {
	case RailUPI:
		return EntryUPI
	case RailNEFT:
		return EntryNEFT
	case RailRTGS:
		return EntryRTGS
	default:
		return EntryTransfer
	}
}
