package service

import (
	"time"

	"github.com/hance08/paycore/internal/notify"
	"github.com/hance08/paycore/internal/platform"
	"github.com/hance08/paycore/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransferConfig struct {
	MaxRetries int
	RetryBase  time.Duration
	MaxAmount  decimal.Decimal
	RTGSMax    decimal.Decimal
}

type SchedulerConfig struct {
	BatchSize   int
	Concurrency int
}

type Config struct {
	Transfer  TransferConfig
	Scheduler SchedulerConfig
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Repo     store.Repository
	Notifier notify.Publisher
	Clock    platform.Clock
	IDs      platform.IDGenerator
	Logger   *zap.Logger
}

type Service struct {
	Account     *AccountService
	Transfer    *TransferService
	Scheduler   *SchedulerService
	Instruction *InstructionService
}

func NewService(deps Deps, cfg Config) *Service {
	deps = deps.withDefaults()

	transfers := NewTransferService(deps, cfg.Transfer)
	return &Service{
		Account:     NewAccountService(deps),
		Transfer:    transfers,
		Scheduler:   NewSchedulerService(deps, transfers, cfg.Scheduler),
		Instruction: NewInstructionService(deps),
	}
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.NopPublisher{}
	}
	if d.Clock == nil {
		d.Clock = platform.SystemClock{}
	}
	if d.IDs == nil {
		d.IDs = platform.UUIDGenerator{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}
