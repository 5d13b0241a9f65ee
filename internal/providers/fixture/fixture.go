// Package fixture provides a deterministic event feed for local development
// and bootstrapping without Spond credentials.
package fixture

import (
	"context"
	"time"

	"strafenkasse-service/internal/domain"
)

// Provider returns a static set of events useful for local testing.
type Provider struct {
	now func() time.Time
}

// New creates a fixture provider with a time source.
func New() *Provider {
	return &Provider{
		now: time.Now,
	}
}

// FetchEvents returns a deterministic set of example events: one past event
// with two non-responders and one upcoming event nobody answered yet.
func (p *Provider) FetchEvents(ctx context.Context, groupID string, from, to time.Time) ([]domain.Event, error) {
	_ = ctx
	_ = groupID
	_ = from
	_ = to

	now := p.now().UTC().Truncate(time.Hour)

	return []domain.Event{
		{
			ID:        "fixture-training-1",
			Heading:   "Training Dienstag",
			StartTime: now.Add(-72 * time.Hour),
			Members: []domain.EventMember{
				{ID: "m1", Name: "Max Müller", Response: domain.ResponseUnanswered},
				{ID: "m2", Name: "Anna Schmidt", Response: domain.ResponseAccepted},
				{ID: "m3", Name: "Jonas Weber", Response: domain.ResponseUnanswered},
				{ID: "m4", Name: "Lena Fischer", Response: domain.ResponseDeclined},
			},
		},
		{
			ID:        "fixture-match-1",
			Heading:   "Punktspiel Samstag",
			StartTime: now.Add(48 * time.Hour),
			Members: []domain.EventMember{
				{ID: "m1", Name: "Max Müller", Response: domain.ResponseUnanswered},
				{ID: "m2", Name: "Anna Schmidt", Response: domain.ResponseUnanswered},
			},
		},
	}, nil
}

// FetchGroups returns a single deterministic group.
func (p *Provider) FetchGroups(ctx context.Context) ([]domain.Group, error) {
	_ = ctx
	return []domain.Group{
		{ID: "fixture-group", Name: "SV Beispielhausen II"},
	}, nil
}
