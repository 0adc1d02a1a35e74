package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hance08/paycore/internal/constants"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/store"
	"github.com/shopspring/decimal"
)

// AccountReader is the read side a rail needs to resolve destinations.
type AccountReader interface {
	GetAccountByNumber(ctx context.Context, number string) (*model.Account, error)
}

// RailPolicy validates a transfer for one rail. Validate never writes. For
// rails settling inside the bank it returns the resolved destination
// account; external rails return nil.
type RailPolicy interface {
	Rail() model.Rail
	Validate(ctx context.Context, accounts AccountReader, source *model.Account, amount decimal.Decimal, destination string) (*model.Account, error)
}

type amountLimits struct {
	min          decimal.Decimal
	minInclusive bool
	max          decimal.Decimal // zero means uncapped
}

func (l amountLimits) check(rail model.Rail, amount decimal.Decimal) error {
	if l.minInclusive && amount.LessThan(l.min) {
		return &RailViolation{Rail: rail, Reason: fmt.Sprintf("minimum amount for %s is %s", rail, l.min.StringFixed(2))}
	}
	if !l.minInclusive && !amount.GreaterThan(l.min) {
		return &RailViolation{Rail: rail, Reason: fmt.Sprintf("amount must be greater than %s", l.min.StringFixed(2))}
	}
	if l.max.IsPositive() && amount.GreaterThan(l.max) {
		return &RailViolation{Rail: rail, Reason: fmt.Sprintf("amount exceeds the per-transfer limit of %s", l.max.StringFixed(2))}
	}
	return nil
}

// InternalPolicy moves money between two accounts held by the bank.
type InternalPolicy struct {
	limits amountLimits
}

func NewInternalPolicy(maxAmount decimal.Decimal) *InternalPolicy {
	return &InternalPolicy{limits: amountLimits{min: decimal.Zero, max: maxAmount}}
}

func (p *InternalPolicy) Rail() model.Rail {
	return model.RailInternal
}

func (p *InternalPolicy) Validate(ctx context.Context, accounts AccountReader, source *model.Account, amount decimal.Decimal, destination string) (*model.Account, error) {
	if err := p.limits.check(model.RailInternal, amount); err != nil {
		return nil, err
	}

	number := strings.TrimSpace(destination)
	if number == "" {
		return nil, destinationMissing("destination account number is required")
	}
	if number == source.Number {
		return nil, &RailViolation{Rail: model.RailInternal, Reason: "cannot transfer to the same account"}
	}

	dest, err := accounts.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, destinationMissing(fmt.Sprintf("destination account %s not found", number))
		}
		return nil, fmt.Errorf("failed to resolve destination account: %w", err)
	}
	if !dest.IsActive() {
		return nil, destinationMissing(fmt.Sprintf("destination account %s is not active", number))
	}
	return dest, nil
}

func destinationMissing(reason string) error {
	return &RailViolation{Rail: model.RailInternal, Reason: reason, destinationMissing: true}
}

// ExternalPolicy covers rails whose destination is an opaque identifier
// handed to an outside network (VPA for UPI, account+IFSC for NEFT/RTGS).
type ExternalPolicy struct {
	rail   model.Rail
	limits amountLimits
}

func NewUPIPolicy(maxAmount decimal.Decimal) *ExternalPolicy {
	return &ExternalPolicy{rail: model.RailUPI, limits: amountLimits{min: decimal.Zero, max: maxAmount}}
}

func NewNEFTPolicy(maxAmount decimal.Decimal) *ExternalPolicy {
	return &ExternalPolicy{
		rail:   model.RailNEFT,
		limits: amountLimits{min: constants.NEFTMinimum, minInclusive: true, max: maxAmount},
	}
}

func NewRTGSPolicy(maxAmount decimal.Decimal) *ExternalPolicy {
	return &ExternalPolicy{
		rail:   model.RailRTGS,
		limits: amountLimits{min: constants.RTGSMinimum, minInclusive: true, max: maxAmount},
	}
}

func (p *ExternalPolicy) Rail() model.Rail {
	return p.rail
}

func (p *ExternalPolicy) Validate(_ context.Context, _ AccountReader, _ *model.Account, amount decimal.Decimal, destination string) (*model.Account, error) {
	if err := p.limits.check(p.rail, amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(destination) == "" {
		return nil, &RailViolation{Rail: p.rail, Reason: "destination is required"}
	}
	return nil, nil
}

// DefaultRailPolicies builds the policy set for every supported rail.
func DefaultRailPolicies(cfg TransferConfig) map[model.Rail]RailPolicy {
	maxAmount := cfg.MaxAmount
	if maxAmount.IsZero() {
		maxAmount = constants.MaxTransferAmount
	}
	rtgsMax := cfg.RTGSMax
	if rtgsMax.IsZero() {
		rtgsMax = maxAmount
	}

	policies := []RailPolicy{
		NewInternalPolicy(maxAmount),
		NewUPIPolicy(maxAmount),
		NewNEFTPolicy(maxAmount),
		NewRTGSPolicy(rtgsMax),
	}

	out := make(map[model.Rail]RailPolicy, len(policies))
	for _, p := range policies {
		out[p.Rail()] = p
	}
	return out
}
