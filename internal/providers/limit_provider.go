package providers

import (
	"context"
	"log/slog"
	"time"

	"strafenkasse-service/internal/domain"
)

// rateLimitedProvider wraps a DataProvider and enforces a minimum interval
// between upstream calls to stay under the service's quota.
type rateLimitedProvider struct {
	next     DataProvider
	interval time.Duration
	ticker   *time.Ticker
	logger   *slog.Logger
}

// NewRateLimitedProvider returns a DataProvider that limits calls to the given interval.
// Calls block until the interval elapses.
func NewRateLimitedProvider(next DataProvider, interval time.Duration, logger *slog.Logger) DataProvider {
	if interval <= 0 {
		interval = time.Minute
	}
	return &rateLimitedProvider{
		next:     next,
		interval: interval,
		ticker:   time.NewTicker(interval),
		logger:   logger,
	}
}

func (p *rateLimitedProvider) FetchEvents(ctx context.Context, groupID string, from, to time.Time) ([]domain.Event, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Info("rate-limited provider fetch", slog.String("provider", "rate-limited"), slog.String("group_id", groupID))
	}
	return p.next.FetchEvents(ctx, groupID, from, to)
}

func (p *rateLimitedProvider) FetchGroups(ctx context.Context) ([]domain.Group, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchGroups(ctx)
}

func (p *rateLimitedProvider) wait(ctx context.Context) error {
	if p == nil || p.next == nil {
		if p != nil && p.logger != nil {
			p.logger.Warn("provider unavailable", slog.String("provider", "rate-limited"))
		}
		return ErrProviderUnavailable
	}
	select {
	case <-ctx.Done():
		if p.logger != nil {
			p.logger.Warn("rate-limited fetch canceled", slog.String("provider", "rate-limited"))
		}
		return ctx.Err()
	case <-p.ticker.C:
	}
	return nil
}

// Close stops the interval ticker.
func (p *rateLimitedProvider) Close() {
	if p != nil && p.ticker != nil {
		p.ticker.Stop()
	}
}
