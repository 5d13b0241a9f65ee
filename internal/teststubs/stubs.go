// Package teststubs provides shared test doubles for the provider interfaces.
package teststubs

import (
	"context"
	"sync/atomic"
	"time"

	"strafenkasse-service/internal/domain"
)

// StubProvider is a test double for providers.DataProvider.
type StubProvider struct {
	Events []domain.Event
	Groups []domain.Group
	Err    error
	Calls  atomic.Int32
	Notify chan struct{}
}

// FetchEvents returns the configured events and error while tracking calls.
func (s *StubProvider) FetchEvents(ctx context.Context, groupID string, from, to time.Time) ([]domain.Event, error) {
	_ = ctx
	_ = groupID
	_ = from
	_ = to
	s.signal()
	s.Calls.Add(1)
	return s.Events, s.Err
}

// FetchGroups returns the configured groups and error while tracking calls.
func (s *StubProvider) FetchGroups(ctx context.Context) ([]domain.Group, error) {
	_ = ctx
	s.signal()
	s.Calls.Add(1)
	return s.Groups, s.Err
}

// signal closes Notify once so tests can wait for the first call.
func (s *StubProvider) signal() {
	if s.Notify == nil {
		return
	}
	select {
	case <-s.Notify:
	default:
		close(s.Notify)
	}
}

// PastEvent builds an event that started daysAgo days ago with the given
// members, handy for reconciliation tests.
func PastEvent(id, heading string, daysAgo int, members ...domain.EventMember) domain.Event {
	return domain.Event{
		ID:        id,
		Heading:   heading,
		StartTime: time.Now().UTC().AddDate(0, 0, -daysAgo),
		Members:   members,
	}
}

// Unanswered builds a member who left the event unanswered.
func Unanswered(id, name string) domain.EventMember {
	return domain.EventMember{ID: id, Name: name, Response: domain.ResponseUnanswered}
}
