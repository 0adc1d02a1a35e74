package constants

import "github.com/shopspring/decimal"

var (
	// MaxTransferAmount is the per-transfer cap shared by every rail.
	MaxTransferAmount = decimal.NewFromInt(1_000_000)
	NEFTMinimum       = decimal.NewFromInt(1)
	RTGSMinimum       = decimal.NewFromInt(200_000)
)
