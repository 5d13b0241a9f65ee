// Package catalog manages the named penalty types and their fixed amounts.
package catalog

import (
	"context"
	"fmt"
	"time"

	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/store"
)

// NonResponseTypeName is the catalog entry the reconciliation engine charges
// when a member leaves a scheduling event unanswered.
const NonResponseTypeName = "Spond nicht beantwortet"

// Service exposes catalog operations over a Store.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService constructs a catalog Service.
func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// AddType creates a new catalog entry. Names are unique case-insensitively;
// amounts must be positive.
func (s *Service) AddType(ctx context.Context, name string, amount domain.Cents) (domain.PenaltyType, error) {
	if domain.NormalizeName(name) == "" {
		return domain.PenaltyType{}, fmt.Errorf("penalty type name is required")
	}
	if amount <= 0 {
		return domain.PenaltyType{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}

	entry := domain.PenaltyType{
		Name:      name,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertPenaltyType(ctx, entry); err != nil {
		return domain.PenaltyType{}, err
	}
	return entry, nil
}

// RemoveType deletes a catalog entry by name. Existing ledger records keep
// their resolved amounts. A second removal of the same name fails with
// ErrNotFound.
func (s *Service) RemoveType(ctx context.Context, name string) error {
	return s.store.DeletePenaltyType(ctx, domain.NormalizeName(name))
}

// List returns the catalog in insertion order.
func (s *Service) List(ctx context.Context) ([]domain.PenaltyType, error) {
	return s.store.ListPenaltyTypes(ctx)
}

// Find resolves a catalog entry by its (normalized) name.
func (s *Service) Find(ctx context.Context, name string) (domain.PenaltyType, bool, error) {
	return s.store.FindPenaltyType(ctx, domain.NormalizeName(name))
}

// DefaultTypes is the seed catalog for a fresh installation.
func DefaultTypes() []domain.PenaltyType {
	return []domain.PenaltyType{
		{Name: NonResponseTypeName, Amount: 200},
		{Name: "Gelbe Karte", Amount: 500},
		{Name: "Gelb-Rot", Amount: 1000},
		{Name: "Rote Karte", Amount: 1500},
		{Name: "Zu spät zum Training", Amount: 300},
		{Name: "Trikot vergessen", Amount: 500},
	}
}

// Seed inserts the default catalog when the store holds no entries yet.
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.store.ListPenaltyTypes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, t := range DefaultTypes() {
		t.CreatedAt = s.now().UTC()
		if err := s.store.InsertPenaltyType(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
