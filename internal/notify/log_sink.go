package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes every event to the structured log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("events")}
}

func (s *LogSink) Deliver(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("type", string(ev.Type)),
		zap.Time("occurred_at", ev.OccurredAt),
		zap.String("amount", ev.Amount.StringFixed(2)),
	}
	if ev.TransactionID != "" {
		fields = append(fields, zap.String("transaction_id", ev.TransactionID))
	}
	if ev.InstructionID != "" {
		fields = append(fields, zap.String("instruction_id", ev.InstructionID))
	}
	if ev.AccountID != 0 {
		fields = append(fields, zap.Int64("account_id", ev.AccountID))
	}
	if ev.Balance != nil {
		fields = append(fields, zap.String("balance", ev.Balance.StringFixed(2)))
	}
	if ev.Message != "" {
		fields = append(fields, zap.String("message", ev.Message))
	}

	s.logger.Info("event", fields...)
	return nil
}
