package spond

import (
	"strings"
	"time"

	"strafenkasse-service/internal/domain"
)

func mapEvent(e eventResponse) domain.Event {
	return domain.Event{
		ID:        e.ID,
		Heading:   e.Heading,
		StartTime: parseTimestamp(e.StartTimestamp),
		Members:   mapMembers(e),
	}
}

// mapMembers resolves every invited group member to a response state. Members
// the upstream does not list in any response bucket count as unanswered, the
// same fallback the scheduling app itself applies.
func mapMembers(e eventResponse) []domain.EventMember {
	states := make(map[string]domain.ResponseState)
	for _, id := range e.Responses.AcceptedIDs {
		states[id] = domain.ResponseAccepted
	}
	for _, id := range e.Responses.DeclinedIDs {
		states[id] = domain.ResponseDeclined
	}
	for _, id := range e.Responses.WaitinglistIDs {
		states[id] = domain.ResponseWaitinglist
	}
	for _, id := range e.Responses.UnansweredIDs {
		states[id] = domain.ResponseUnanswered
	}

	members := make([]domain.EventMember, 0, len(e.Recipients.Group.Members))
	for _, m := range e.Recipients.Group.Members {
		name := strings.TrimSpace(m.FirstName + " " + m.LastName)
		state, ok := states[m.ID]
		if !ok {
			state = domain.ResponseUnanswered
		}
		members = append(members, domain.EventMember{
			ID:       m.ID,
			Name:     name,
			Response: state,
		})
	}
	return members
}

func mapGroup(g groupResponse) domain.Group {
	return domain.Group{
		ID:   g.ID,
		Name: g.Name,
	}
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
