package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

const maxRetryDelay = time.Second

// withRetry re-runs fn while it loses races against concurrent units of
// work, backing off exponentially with full jitter.
func withRetry(ctx context.Context, logger *zap.Logger, maxRetries int, base time.Duration, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !retryable(err) {
			return err
		}
		if attempt >= maxRetries {
			logger.Warn("giving up after repeated conflicts",
				zap.String("op", op),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %s", ErrStoreConflict, op)
		}

		logger.Debug("retrying after conflict", zap.String("op", op), zap.Int("attempt", attempt+1))
		if err := sleepWithContext(ctx, backoffDelay(base, attempt)); err != nil {
			return err
		}
	}
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	ceiling := base << min(attempt, 16)
	if ceiling <= 0 || ceiling > maxRetryDelay {
		ceiling = maxRetryDelay
	}
	return time.Duration(rand.Int64N(int64(ceiling) + 1))
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
