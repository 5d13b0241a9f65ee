package providers

import (
	"context"
	"log/slog"
	"time"

	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/logging"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

type backoffFunc func(attempt int) time.Duration

// retryingProvider wraps a DataProvider with retry/backoff behavior.
type retryingProvider struct {
	inner       DataProvider
	logger      *slog.Logger
	maxAttempts int
	backoffFn   backoffFunc
}

// NewRetryingProvider wraps the given provider with retries. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetryingProvider(inner DataProvider, logger *slog.Logger, maxAttempts int, backoff time.Duration) DataProvider {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &retryingProvider{
		inner:       inner,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
	}
}

func (r *retryingProvider) FetchEvents(ctx context.Context, groupID string, from, to time.Time) ([]domain.Event, error) {
	var events []domain.Event
	err := r.withRetries(ctx, "fetch events", func() error {
		var fetchErr error
		events, fetchErr = r.inner.FetchEvents(ctx, groupID, from, to)
		return fetchErr
	})
	return events, err
}

func (r *retryingProvider) FetchGroups(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	err := r.withRetries(ctx, "fetch groups", func() error {
		var fetchErr error
		groups, fetchErr = r.inner.FetchGroups(ctx)
		return fetchErr
	})
	return groups, err
}

func (r *retryingProvider) withRetries(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		r.logWarn(ctx, "provider retry", "op", op, "attempt", attempt, "max_attempts", r.maxAttempts, "err", err)

		// backoff with context awareness
		delay := r.backoffFn(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	r.logWarn(ctx, "provider call failed", "op", op, "attempts", r.maxAttempts, "err", lastErr)
	return lastErr
}

func (r *retryingProvider) logWarn(ctx context.Context, msg string, args ...any) {
	logger := logging.FromContext(ctx, r.logger)
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
