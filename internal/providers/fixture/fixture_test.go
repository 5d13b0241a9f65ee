package fixture

import (
	"context"
	"testing"
	"time"

	"strafenkasse-service/internal/domain"
)

func TestFetchEventsDeterministic(t *testing.T) {
	p := New()
	fixed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	events, err := p.FetchEvents(context.Background(), "any", fixed.AddDate(0, 0, -14), fixed)
	if err != nil {
		t.Fatalf("fetch events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].StartTime.Before(fixed) {
		t.Fatalf("first fixture event should lie in the past")
	}

	unanswered := 0
	for _, m := range events[0].Members {
		if m.Response == domain.ResponseUnanswered {
			unanswered++
		}
	}
	if unanswered != 2 {
		t.Fatalf("past event has %d non-responders, want 2", unanswered)
	}
}

func TestFetchGroups(t *testing.T) {
	groups, err := New().FetchGroups(context.Background())
	if err != nil {
		t.Fatalf("fetch groups: %v", err)
	}
	if len(groups) != 1 || groups[0].ID == "" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}
