package providers

import (
	"context"
	"time"

	"strafenkasse-service/internal/domain"
)

// CallRecorder receives telemetry about upstream provider calls.
type CallRecorder interface {
	RecordProviderAttempt(provider string, duration time.Duration, err error)
	RecordRateLimit(provider string, retryAfter time.Duration)
}

// instrumentedProvider reports call latency, errors and rate-limit hits for
// every upstream request.
type instrumentedProvider struct {
	next     DataProvider
	name     string
	recorder CallRecorder
}

// NewInstrumentedProvider wraps the provider with call telemetry. A nil
// recorder returns the provider unchanged.
func NewInstrumentedProvider(next DataProvider, name string, recorder CallRecorder) DataProvider {
	if recorder == nil {
		return next
	}
	return &instrumentedProvider{next: next, name: name, recorder: recorder}
}

func (p *instrumentedProvider) FetchEvents(ctx context.Context, groupID string, from, to time.Time) ([]domain.Event, error) {
	start := time.Now()
	events, err := p.next.FetchEvents(ctx, groupID, from, to)
	p.record(time.Since(start), err)
	return events, err
}

func (p *instrumentedProvider) FetchGroups(ctx context.Context) ([]domain.Group, error) {
	start := time.Now()
	groups, err := p.next.FetchGroups(ctx)
	p.record(time.Since(start), err)
	return groups, err
}

func (p *instrumentedProvider) record(duration time.Duration, err error) {
	p.recorder.RecordProviderAttempt(p.name, duration, err)
	if rl, ok := AsRateLimitError(err); ok {
		p.recorder.RecordRateLimit(p.name, rl.RetryAfter)
	}
}
