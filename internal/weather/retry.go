package weather

import (
	"context"
	"time"

	"github.com/flightschool/weatherops/internal/apperrors"

	"go.uber.org/zap"
)

// backoffSchedule is the fixed retry schedule for transient failures:
// 250ms, 1s, 4s between attempts.
var backoffSchedule = []time.Duration{250 * time.Millisecond, time.Second, 4 * time.Second}

// fetchWithRetry retries a Source on ExternalUnavailable only. 4xx
// (ExternalRejected) and decode failures (Malformed) are not retried —
// retrying them cannot change the outcome.
func fetchWithRetry(ctx context.Context, source Source, loc Location, maxAttempts int, logger *zap.Logger) (Observation, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		obs, err := source.Fetch(ctx, loc)
		if err == nil {
			return obs, nil
		}
		lastErr = err

		if !apperrors.Is(err, apperrors.CodeExternalUnavailable) {
			return Observation{}, err
		}

		if attempt == maxAttempts-1 {
			break
		}

		delay := backoffSchedule[len(backoffSchedule)-1]
		if attempt < len(backoffSchedule) {
			delay = backoffSchedule[attempt]
		}

		logger.Warn("weather fetch attempt failed, retrying",
			zap.String("source", source.Name()),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return Observation{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	return Observation{}, lastErr
}
