package providers

import (
	"context"
	"testing"
	"time"

	"strafenkasse-service/internal/domain"
)

type captureRecorder struct {
	attempts   int
	errors     int
	rateLimits int
	retryAfter time.Duration
}

func (c *captureRecorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	c.attempts++
	if err != nil {
		c.errors++
	}
}

func (c *captureRecorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	c.rateLimits++
	c.retryAfter = retryAfter
}

type rateLimitedOnce struct {
	called bool
}

func (r *rateLimitedOnce) FetchEvents(ctx context.Context, groupID string, from, to time.Time) ([]domain.Event, error) {
	if !r.called {
		r.called = true
		return nil, &RateLimitError{Provider: "spond", StatusCode: 429, RetryAfter: 30 * time.Second}
	}
	return []domain.Event{{ID: "E1"}}, nil
}

func (r *rateLimitedOnce) FetchGroups(ctx context.Context) ([]domain.Group, error) {
	return []domain.Group{{ID: "G1"}}, nil
}

func TestInstrumentedProviderRecordsAttempts(t *testing.T) {
	rec := &captureRecorder{}
	p := NewInstrumentedProvider(&rateLimitedOnce{}, "spond", rec)

	now := time.Now()
	if _, err := p.FetchEvents(context.Background(), "G1", now, now); err == nil {
		t.Fatalf("expected rate limit error on first call")
	}
	if _, err := p.FetchEvents(context.Background(), "G1", now, now); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if _, err := p.FetchGroups(context.Background()); err != nil {
		t.Fatalf("groups: %v", err)
	}

	if rec.attempts != 3 || rec.errors != 1 {
		t.Fatalf("attempts=%d errors=%d, want 3 and 1", rec.attempts, rec.errors)
	}
	if rec.rateLimits != 1 || rec.retryAfter != 30*time.Second {
		t.Fatalf("rateLimits=%d retryAfter=%s, want 1 hit with 30s", rec.rateLimits, rec.retryAfter)
	}
}

func TestInstrumentedProviderNilRecorderPassthrough(t *testing.T) {
	inner := &rateLimitedOnce{called: true}
	if p := NewInstrumentedProvider(inner, "spond", nil); p != DataProvider(inner) {
		t.Fatalf("expected passthrough for nil recorder")
	}
}
