package providers

import (
	"context"
	"time"

	"strafenkasse-service/internal/domain"
)

// EventProvider fetches scheduling events with per-member response states for
// a group over a time window.
type EventProvider interface {
	FetchEvents(ctx context.Context, groupID string, from, to time.Time) ([]domain.Event, error)
}

// GroupProvider lists the groups visible to the configured account.
type GroupProvider interface {
	FetchGroups(ctx context.Context) ([]domain.Group, error)
}

// DataProvider combines all provider capabilities.
type DataProvider interface {
	EventProvider
	GroupProvider
}
