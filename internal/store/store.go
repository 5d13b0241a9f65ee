package store

import (
	"context"
	"time"

	"strafenkasse-service/internal/domain"
)

// Store is the durable state behind the catalog and the ledger. Both backends
// (memory, sqlite) key players and catalog names by their normalized form and
// preserve insertion order for listings.
type Store interface {
	// Catalog.
	InsertPenaltyType(ctx context.Context, t domain.PenaltyType) error
	DeletePenaltyType(ctx context.Context, nameKey string) error
	ListPenaltyTypes(ctx context.Context) ([]domain.PenaltyType, error)
	FindPenaltyType(ctx context.Context, nameKey string) (domain.PenaltyType, bool, error)

	// Ledger. InsertPenalty assigns the next monotonic ID.
	InsertPenalty(ctx context.Context, rec domain.PenaltyRecord) (domain.PenaltyRecord, error)
	FindBySyncKey(ctx context.Context, key string) (domain.PenaltyRecord, bool, error)
	MarkPaid(ctx context.Context, playerKey string, paidAt time.Time) (int, error)
	RecordsForPlayer(ctx context.Context, playerKey string) ([]domain.PenaltyRecord, error)
	AllRecords(ctx context.Context) ([]domain.PenaltyRecord, error)

	Close() error
}
