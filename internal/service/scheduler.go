package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hance08/paycore/internal/constants"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/notify"
	"github.com/hance08/paycore/internal/platform"
	"github.com/hance08/paycore/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize   = 500
	defaultConcurrency = 4
)

var errNotDue = errors.New("instruction is no longer due")

type SweepRequest struct {
	// AsOf is the sweep's "today"; zero means the current date.
	AsOf   time.Time
	UserID *int64
}

type SweepReport struct {
	AsOf     time.Time
	Executed int
	Failed   int
	Skipped  int
	Failures []InstructionFailure
}

type SchedulerService struct {
	repo      store.Repository
	transfers *TransferService
	notifier  notify.Publisher
	clock     platform.Clock
	logger    *zap.Logger
	cfg       SchedulerConfig
}

func NewSchedulerService(deps Deps, transfers *TransferService, cfg SchedulerConfig) *SchedulerService {
	deps = deps.withDefaults()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &SchedulerService{
		repo:      deps.Repo,
		transfers: transfers,
		notifier:  deps.Notifier,
		clock:     deps.Clock,
		logger:    deps.Logger.Named("scheduler"),
		cfg:       cfg,
	}
}

// InstructionIdempotencyKey derives the key that makes one execution of an
// instruction on its due date happen at most once.
func InstructionIdempotencyKey(si *model.StandingInstruction) string {
	return fmt.Sprintf("%s:%s:%s", constants.InstructionKeyPrefix, si.InstructionID,
		si.NextExecutionDate.Format(constants.DateFormat))
}

// RunDueInstructionSweep executes every instruction due on req.AsOf. A
// failing instruction never aborts the sweep. When ctx is cancelled the
// unprocessed instructions are counted as skipped and the partial report is
// returned together with the context error.
func (ss *SchedulerService) RunDueInstructionSweep(ctx context.Context, req SweepRequest) (*SweepReport, error) {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = ss.clock.Now()
	}
	asOf = model.Date(asOf)

	due, err := ss.repo.FindDueInstructions(ctx, asOf, req.UserID, ss.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to select due instructions: %w", err)
	}

	report := &SweepReport{AsOf: asOf}
	ss.logger.Info("sweep started", zap.String("as_of", asOf.Format(constants.DateFormat)), zap.Int("due", len(due)))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(ss.cfg.Concurrency)

	for i, si := range due {
		if ctx.Err() != nil {
			mu.Lock()
			report.Skipped += len(due) - i
			mu.Unlock()
			break
		}

		instructionID := si.InstructionID
		g.Go(func() error {
			outcome, cause := ss.runInstruction(ctx, instructionID, asOf)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeExecuted:
				report.Executed++
			case outcomeFailed:
				report.Failed++
				report.Failures = append(report.Failures, InstructionFailure{InstructionID: instructionID, Cause: cause})
			default:
				report.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].InstructionID < report.Failures[j].InstructionID
	})

	ss.logger.Info("sweep finished",
		zap.String("as_of", asOf.Format(constants.DateFormat)),
		zap.Int("executed", report.Executed),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("sweep interrupted: %w", err)
	}
	return report, nil
}

type sweepOutcome int

const (
	outcomeSkipped sweepOutcome = iota
	outcomeExecuted
	outcomeFailed
)

func (ss *SchedulerService) runInstruction(ctx context.Context, instructionID string, asOf time.Time) (sweepOutcome, error) {
	var (
		result   *TransferResult
		executed *model.StandingInstruction
	)

	err := ss.transfers.retry(ctx, "instruction "+instructionID, func() error {
		return ss.repo.ExecTx(ctx, func(tx store.Repository) error {
			si, err := tx.GetInstruction(ctx, instructionID)
			if err != nil {
				return fmt.Errorf("failed to reload instruction: %w", err)
			}
			if !si.IsDue(asOf) {
				return errNotDue
			}

			source, err := tx.GetAccountByNumber(ctx, si.FromAccount)
			if errors.Is(err, store.ErrRecordNotFound) || (err == nil && source.UserID != si.UserID) {
				return ErrAccountNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to load source account: %w", err)
			}

			result, err = ss.transfers.ExecuteWithin(ctx, tx, TransferRequest{
				SourceAccountID:  source.ID,
				Amount:           si.Amount,
				Rail:             model.RailInternal,
				Destination:      si.ToAccount,
				CounterpartyName: si.BeneficiaryName,
				Note:             "Standing instruction: " + si.Name,
				IdempotencyKey:   InstructionIdempotencyKey(si),
			})
			if err != nil {
				return err
			}

			if err := si.MarkExecuted(asOf, ss.clock.Now()); err != nil {
				return err
			}
			if err := tx.SaveInstruction(ctx, si); err != nil {
				return fmt.Errorf("failed to save instruction: %w", err)
			}
			executed = si
			return nil
		})
	})

	switch {
	case err == nil:
		ss.transfers.publish(result)
		ss.notifier.Publish(notify.Event{
			Type:          notify.InstructionExecuted,
			OccurredAt:    result.CompletedAt,
			TransactionID: result.TransactionID,
			InstructionID: instructionID,
			AccountID:     result.SourceAccountID,
			Rail:          string(result.Rail),
			Amount:        result.Amount,
			Message:       fmt.Sprintf("Standing instruction %s executed", executed.Name),
		})
		ss.logger.Info("instruction executed",
			zap.String("instruction_id", instructionID),
			zap.String("transaction_id", result.TransactionID),
			zap.String("status", string(executed.Status)),
			zap.String("next_execution_date", executed.NextExecutionDate.Format(constants.DateFormat)),
		)
		return outcomeExecuted, nil

	case errors.Is(err, errNotDue):
		ss.logger.Debug("instruction no longer due", zap.String("instruction_id", instructionID))
		return outcomeSkipped, nil

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeSkipped, nil

	case transferRejected(err):
		if markErr := ss.markFailed(ctx, instructionID, err); markErr != nil {
			ss.logger.Error("failed to record instruction failure",
				zap.String("instruction_id", instructionID),
				zap.Error(markErr),
			)
		}
		return outcomeFailed, err

	default:
		// Transient: the instruction stays ACTIVE and is picked up by the next sweep.
		ss.logger.Warn("instruction execution aborted",
			zap.String("instruction_id", instructionID),
			zap.Error(err),
		)
		return outcomeFailed, err
	}
}

// markFailed records a rejected transfer on the instruction in its own unit,
// so the failed transfer leaves no trace besides the status change.
func (ss *SchedulerService) markFailed(ctx context.Context, instructionID string, cause error) error {
	var failed *model.StandingInstruction
	err := ss.transfers.retry(ctx, "fail instruction "+instructionID, func() error {
		return ss.repo.ExecTx(ctx, func(tx store.Repository) error {
			si, err := tx.GetInstruction(ctx, instructionID)
			if err != nil {
				return err
			}
			if si.Status != model.InstructionActive {
				return nil
			}
			if err := si.MarkFailed(UserMessage(cause), ss.clock.Now()); err != nil {
				return err
			}
			if err := tx.SaveInstruction(ctx, si); err != nil {
				return err
			}
			failed = si
			return nil
		})
	})
	if err != nil || failed == nil {
		return err
	}

	ss.notifier.Publish(notify.Event{
		Type:          notify.InstructionFailed,
		OccurredAt:    failed.UpdatedAt,
		InstructionID: instructionID,
		Amount:        failed.Amount,
		Message:       failed.FailureReason,
	})
	ss.logger.Info("instruction failed",
		zap.String("instruction_id", instructionID),
		zap.String("kind", string(Kind(cause))),
		zap.String("reason", failed.FailureReason),
	)
	return nil
}

// transferRejected reports whether err is a business rejection of the
// synthesized transfer, as opposed to an infrastructure failure.
func transferRejected(err error) bool {
	switch Kind(err) {
	case KindInvalidAmount, KindAccountNotFound, KindAccountNotActive, KindRailPolicy,
		KindDestinationNotFound, KindInsufficientFunds, KindIdempotencyConflict:
		return true
	}
	return false
}
