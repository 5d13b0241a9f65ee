package teststubs

import (
	"context"
	"errors"
	"testing"
	"time"

	"strafenkasse-service/internal/domain"
)

func TestStubProviderTracksCallsAndNotifies(t *testing.T) {
	s := &StubProvider{
		Events: []domain.Event{PastEvent("E1", "Training", 2, Unanswered("m1", "Max Müller"))},
		Notify: make(chan struct{}),
	}

	now := time.Now()
	events, err := s.FetchEvents(context.Background(), "G1", now.AddDate(0, 0, -14), now)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(events) != 1 || events[0].Members[0].Name != "Max Müller" {
		t.Fatalf("unexpected events: %+v", events)
	}

	select {
	case <-s.Notify:
	default:
		t.Fatal("expected notify channel closed after first call")
	}

	if _, err := s.FetchGroups(context.Background()); err != nil {
		t.Fatalf("groups: %v", err)
	}
	if got := s.Calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestStubProviderReturnsError(t *testing.T) {
	s := &StubProvider{Err: errors.New("boom")}
	if _, err := s.FetchEvents(context.Background(), "G1", time.Now(), time.Now()); err == nil {
		t.Fatal("expected configured error")
	}
}

func TestPastEventIsInThePast(t *testing.T) {
	ev := PastEvent("E1", "Training", 3, Unanswered("m1", "Max"))
	if !ev.StartTime.Before(time.Now()) {
		t.Fatal("expected past start time")
	}
}
