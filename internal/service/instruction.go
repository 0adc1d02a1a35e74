package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hance08/paycore/internal/constants"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/platform"
	"github.com/hance08/paycore/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	instructionRetries   = 3
	instructionRetryBase = 10 * time.Millisecond
)

type CreateInstructionInput struct {
	UserID          int64
	Name            string
	Description     string
	Type            model.InstructionType
	FromAccount     string
	ToAccount       string
	BeneficiaryName string
	Amount          decimal.Decimal
	Frequency       model.Frequency
	StartDate       time.Time
	EndDate         *time.Time
	MaxExecutions   *int
}

// UpdateInstructionInput holds the optional changes; nil fields are left
// untouched.
type UpdateInstructionInput struct {
	Name          *string
	Description   *string
	Amount        *decimal.Decimal
	Frequency     *model.Frequency
	EndDate       *time.Time
	MaxExecutions *int
}

type InstructionStatistics struct {
	Total        int
	Active       int
	Paused       int
	Completed    int
	Cancelled    int
	Failed       int
	DueToday     int
	ExpiringSoon int
}

type InstructionService struct {
	repo   store.Repository
	clock  platform.Clock
	ids    platform.IDGenerator
	logger *zap.Logger
}

func NewInstructionService(deps Deps) *InstructionService {
	deps = deps.withDefaults()
	return &InstructionService{
		repo:   deps.Repo,
		clock:  deps.Clock,
		ids:    deps.IDs,
		logger: deps.Logger.Named("instruction"),
	}
}

func (is *InstructionService) Create(ctx context.Context, in CreateInstructionInput) (*model.StandingInstruction, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	from, err := is.repo.GetAccountByNumber(ctx, strings.TrimSpace(in.FromAccount))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, invalidField("fromAccount", "source account not found")
		}
		return nil, fmt.Errorf("failed to load source account: %w", err)
	}
	if from.UserID != in.UserID {
		return nil, invalidField("fromAccount", "source account does not belong to the user")
	}

	now := is.clock.Now()
	start := model.Date(in.StartDate)
	si := &model.StandingInstruction{
		InstructionID:     is.newInstructionID(),
		UserID:            in.UserID,
		Name:              strings.TrimSpace(in.Name),
		Description:       strings.TrimSpace(in.Description),
		Type:              in.Type,
		FromAccount:       from.Number,
		ToAccount:         strings.TrimSpace(in.ToAccount),
		BeneficiaryName:   strings.TrimSpace(in.BeneficiaryName),
		Amount:            in.Amount,
		Frequency:         in.Frequency,
		StartDate:         start,
		NextExecutionDate: in.Frequency.Advance(start),
		Status:            model.InstructionActive,
		MaxExecutions:     in.MaxExecutions,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if in.EndDate != nil {
		end := model.Date(*in.EndDate)
		si.EndDate = &end
	}

	id, err := is.repo.CreateInstruction(ctx, si)
	if err != nil {
		return nil, fmt.Errorf("failed to create instruction: %w", err)
	}
	si.ID = id

	is.logger.Info("instruction created",
		zap.String("instruction_id", si.InstructionID),
		zap.Int64("user_id", si.UserID),
		zap.String("frequency", string(si.Frequency)),
		zap.String("next_execution_date", si.NextExecutionDate.Format(constants.DateFormat)),
	)
	return si, nil
}

func validateCreateInput(in CreateInstructionInput) error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if _, err := model.ParseInstructionType(string(in.Type)); err != nil {
		return invalidField("type", "unknown instruction type")
	}
	if _, err := model.ParseFrequency(string(in.Frequency)); err != nil {
		return invalidField("frequency", "unknown frequency")
	}
	if err := validateInstructionAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.FromAccount) == "" {
		return invalidField("fromAccount", "source account is required")
	}
	to := strings.TrimSpace(in.ToAccount)
	if to == "" {
		return invalidField("toAccount", "destination account is required")
	}
	if to == strings.TrimSpace(in.FromAccount) {
		return invalidField("toAccount", "destination must differ from the source account")
	}
	if in.StartDate.IsZero() {
		return invalidField("startDate", "start date is required")
	}
	if in.EndDate != nil && model.Date(*in.EndDate).Before(model.Date(in.StartDate)) {
		return invalidField("endDate", "end date cannot be before start date")
	}
	return validateMaxExecutions(in.MaxExecutions)
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalidField("name", "name is required")
	}
	if len(name) > constants.MaxNameLen {
		return invalidField("name", fmt.Sprintf("name cannot exceed %d characters", constants.MaxNameLen))
	}
	return nil
}

func validateInstructionAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !model.HasMoneyScale(amount) {
		return invalidField("amount", "amount must be greater than 0 with at most two decimals")
	}
	if amount.GreaterThan(constants.MaxTransferAmount) {
		return invalidField("amount", "amount exceeds the per-transfer limit")
	}
	return nil
}

func validateMaxExecutions(n *int) error {
	if n != nil && *n <= 0 {
		return invalidField("maxExecutions", "max executions must be greater than 0")
	}
	return nil
}

func (is *InstructionService) newInstructionID() string {
	hex := strings.ReplaceAll(is.ids.NewUUID().String(), "-", "")
	return "SI" + strings.ToUpper(hex[:16])
}

func (is *InstructionService) Update(ctx context.Context, userID int64, instructionID string, in UpdateInstructionInput) (*model.StandingInstruction, error) {
	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Amount != nil {
		if err := validateInstructionAmount(*in.Amount); err != nil {
			return nil, err
		}
	}
	if in.Frequency != nil {
		if _, err := model.ParseFrequency(string(*in.Frequency)); err != nil {
			return nil, invalidField("frequency", "unknown frequency")
		}
	}
	if err := validateMaxExecutions(in.MaxExecutions); err != nil {
		return nil, err
	}

	return is.mutate(ctx, userID, instructionID, "update", func(si *model.StandingInstruction, now time.Time) error {
		if si.Status.IsTerminal() {
			return fmt.Errorf("%w: cannot update %s instruction", model.ErrInvalidTransition, si.Status)
		}
		if in.Name != nil {
			si.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			si.Description = strings.TrimSpace(*in.Description)
		}
		if in.Amount != nil {
			si.Amount = *in.Amount
		}
		if in.Frequency != nil && *in.Frequency != si.Frequency {
			si.Frequency = *in.Frequency
			si.NextExecutionDate = si.Frequency.Advance(now)
		}
		if in.EndDate != nil {
			end := model.Date(*in.EndDate)
			if end.Before(si.StartDate) {
				return invalidField("endDate", "end date cannot be before start date")
			}
			si.EndDate = &end
		}
		if in.MaxExecutions != nil {
			maxExec := *in.MaxExecutions
			if maxExec <= si.ExecutionCount {
				return invalidField("maxExecutions",
					fmt.Sprintf("max executions must be greater than the %d already executed", si.ExecutionCount))
			}
			si.MaxExecutions = &maxExec
		}
		si.UpdatedAt = now
		return nil
	})
}

func (is *InstructionService) Pause(ctx context.Context, userID int64, instructionID string) (*model.StandingInstruction, error) {
	return is.mutate(ctx, userID, instructionID, "pause", func(si *model.StandingInstruction, now time.Time) error {
		return si.Pause(now)
	})
}

func (is *InstructionService) Resume(ctx context.Context, userID int64, instructionID string) (*model.StandingInstruction, error) {
	return is.mutate(ctx, userID, instructionID, "resume", func(si *model.StandingInstruction, now time.Time) error {
		return si.Resume(now)
	})
}

func (is *InstructionService) Cancel(ctx context.Context, userID int64, instructionID string) (*model.StandingInstruction, error) {
	return is.mutate(ctx, userID, instructionID, "cancel", func(si *model.StandingInstruction, now time.Time) error {
		return si.Cancel(constants.CancelledByUser, now)
	})
}

// mutate loads the user's instruction, applies fn and saves it in one unit.
// A concurrent sweep touching the same instruction makes the unit retry.
func (is *InstructionService) mutate(ctx context.Context, userID int64, instructionID, op string, fn func(*model.StandingInstruction, time.Time) error) (*model.StandingInstruction, error) {
	var updated *model.StandingInstruction
	err := withRetry(ctx, is.logger, instructionRetries, instructionRetryBase, op+" instruction", func() error {
		return is.repo.ExecTx(ctx, func(tx store.Repository) error {
			si, err := ownedInstruction(ctx, tx, userID, instructionID)
			if err != nil {
				return err
			}
			if err := fn(si, is.clock.Now()); err != nil {
				return err
			}
			if err := tx.SaveInstruction(ctx, si); err != nil {
				return fmt.Errorf("failed to save instruction: %w", err)
			}
			updated = si
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	is.logger.Info("instruction "+op,
		zap.String("instruction_id", updated.InstructionID),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func ownedInstruction(ctx context.Context, repo store.InstructionRepository, userID int64, instructionID string) (*model.StandingInstruction, error) {
	si, err := repo.GetInstruction(ctx, strings.TrimSpace(instructionID))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrInstructionNotFound
		}
		return nil, fmt.Errorf("failed to load instruction: %w", err)
	}
	if si.UserID != userID {
		return nil, ErrInstructionNotFound
	}
	return si, nil
}

func (is *InstructionService) Get(ctx context.Context, userID int64, instructionID string) (*model.StandingInstruction, error) {
	return ownedInstruction(ctx, is.repo, userID, instructionID)
}

// List returns the user's instructions, newest first. An empty status
// lists every status.
func (is *InstructionService) List(ctx context.Context, userID int64, status model.InstructionStatus) ([]*model.StandingInstruction, error) {
	list, err := is.repo.ListInstructions(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructions: %w", err)
	}
	return list, nil
}

func (is *InstructionService) Due(ctx context.Context, userID int64, asOf time.Time) ([]*model.StandingInstruction, error) {
	due, err := is.repo.FindDueInstructions(ctx, asOf, &userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find due instructions: %w", err)
	}
	return due, nil
}

func (is *InstructionService) Failed(ctx context.Context, userID int64) ([]*model.StandingInstruction, error) {
	return is.List(ctx, userID, model.InstructionFailed)
}

func (is *InstructionService) Statistics(ctx context.Context, userID int64, asOf time.Time) (*InstructionStatistics, error) {
	all, err := is.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	today := model.Date(asOf)
	horizon := today.AddDate(0, 0, constants.ExpiringSoonDays)

	stats := &InstructionStatistics{Total: len(all)}
	for _, si := range all {
		switch si.Status {
		case model.InstructionActive:
			stats.Active++
		case model.InstructionPaused:
			stats.Paused++
		case model.InstructionCompleted:
			stats.Completed++
		case model.InstructionCancelled:
			stats.Cancelled++
		case model.InstructionFailed:
			stats.Failed++
		}
		if si.IsDue(today) {
			stats.DueToday++
		}
		if si.Status == model.InstructionActive && si.EndDate != nil &&
			!si.EndDate.Before(today) && !si.EndDate.After(horizon) {
			stats.ExpiringSoon++
		}
	}
	return stats, nil
}
