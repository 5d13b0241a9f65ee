package domain

import "time"

// PenaltyStatus mirrors the lifecycle of a penalty record.
type PenaltyStatus string

const (
	StatusOpen PenaltyStatus = "OPEN"
	StatusPaid PenaltyStatus = "PAID"
)

// PenaltySource records how a penalty entered the ledger.
type PenaltySource string

const (
	SourceManual   PenaltySource = "MANUAL"
	SourceAutoSync PenaltySource = "AUTO_SYNC"
)

// PenaltyType is a named catalog entry with a fixed amount.
type PenaltyType struct {
	Name      string    `json:"name"`
	Amount    Cents     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// PenaltyRecord is a single assessment against a player. Amount is resolved at
// creation time and never changes, even if the catalog entry it came from does.
type PenaltyRecord struct {
	ID        int64         `json:"id"`
	Player    string        `json:"player"`
	PlayerKey string        `json:"-"`
	Reason    string        `json:"reason"`
	Amount    Cents         `json:"amount"`
	Status    PenaltyStatus `json:"status"`
	Source    PenaltySource `json:"source"`
	SyncKey   string        `json:"syncKey,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	PaidAt    *time.Time    `json:"paidAt,omitempty"`
}

// PlayerBalance sums a player's open penalties for the overview table.
type PlayerBalance struct {
	Player string `json:"player"`
	Count  int    `json:"count"`
	Total  Cents  `json:"total"`
}

// ResponseState is a member's answer to a scheduling event.
type ResponseState string

const (
	ResponseAccepted    ResponseState = "accepted"
	ResponseDeclined    ResponseState = "declined"
	ResponseWaitinglist ResponseState = "waitinglist"
	ResponseUnanswered  ResponseState = "unanswered"
)

// EventMember is a group member invited to an event, with their response.
type EventMember struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Response ResponseState `json:"response"`
}

// Event is a scheduling event as reported by the external service.
type Event struct {
	ID        string        `json:"id"`
	Heading   string        `json:"heading"`
	StartTime time.Time     `json:"startTime"`
	Members   []EventMember `json:"members"`
}

// Group is a team group on the external scheduling service.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
