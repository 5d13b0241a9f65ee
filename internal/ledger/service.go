// Package ledger holds the penalty assessment records and their lifecycle.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/store"
)

// Assessment is the input to a single penalty assessment.
type Assessment struct {
	Player  string
	Reason  string
	Amount  domain.Cents
	Source  domain.PenaltySource
	SyncKey string
}

// Service coordinates ledger operations over a Store. Assess and MarkPaid are
// single critical sections so the sync-key uniqueness and the
// all-open-become-paid transition hold under concurrent command handling.
type Service struct {
	store store.Store
	now   func() time.Time

	mu sync.Mutex
}

// NewService constructs a ledger Service.
func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Assess creates a new OPEN record. For AUTO_SYNC assessments an existing
// sync key is not an error: the existing record is returned with created ==
// false, so batch callers treat duplicates as ordinary successes.
func (s *Service) Assess(ctx context.Context, a Assessment) (domain.PenaltyRecord, bool, error) {
	playerKey := domain.NormalizeName(a.Player)
	if playerKey == "" {
		return domain.PenaltyRecord{}, false, fmt.Errorf("player is required")
	}
	if a.Reason == "" {
		return domain.PenaltyRecord{}, false, fmt.Errorf("reason is required")
	}
	if a.Amount <= 0 {
		return domain.PenaltyRecord{}, false, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}
	switch a.Source {
	case domain.SourceAutoSync:
		if a.SyncKey == "" {
			return domain.PenaltyRecord{}, false, fmt.Errorf("sync key is required for auto-sync assessments")
		}
	case domain.SourceManual:
		if a.SyncKey != "" {
			return domain.PenaltyRecord{}, false, fmt.Errorf("manual assessments must not carry a sync key")
		}
	default:
		return domain.PenaltyRecord{}, false, fmt.Errorf("unknown source %q", a.Source)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.SyncKey != "" {
		existing, ok, err := s.store.FindBySyncKey(ctx, a.SyncKey)
		if err != nil {
			return domain.PenaltyRecord{}, false, err
		}
		if ok {
			return existing, false, nil
		}
	}

	rec, err := s.store.InsertPenalty(ctx, domain.PenaltyRecord{
		Player:    a.Player,
		PlayerKey: playerKey,
		Reason:    a.Reason,
		Amount:    a.Amount,
		Status:    domain.StatusOpen,
		Source:    a.Source,
		SyncKey:   a.SyncKey,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.PenaltyRecord{}, false, err
	}
	return rec, true, nil
}

// MarkPaid transitions every OPEN record of the player to PAID and returns
// the number of records affected. Zero affected records is a success.
func (s *Service) MarkPaid(ctx context.Context, player string) (int, error) {
	playerKey := domain.NormalizeName(player)
	if playerKey == "" {
		return 0, fmt.Errorf("player is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.MarkPaid(ctx, playerKey, s.now().UTC())
}

// RecordsFor returns the player's records, newest first.
func (s *Service) RecordsFor(ctx context.Context, player string) ([]domain.PenaltyRecord, error) {
	return s.store.RecordsForPlayer(ctx, domain.NormalizeName(player))
}

// OpenBalances sums OPEN amounts per player, sorted descending by total.
// Players without open records do not appear.
func (s *Service) OpenBalances(ctx context.Context) ([]domain.PlayerBalance, error) {
	records, err := s.store.AllRecords(ctx)
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[string]*domain.PlayerBalance)
	for _, r := range records {
		if r.Status != domain.StatusOpen {
			continue
		}
		b, ok := byPlayer[r.PlayerKey]
		if !ok {
			b = &domain.PlayerBalance{Player: r.Player}
			byPlayer[r.PlayerKey] = b
		}
		b.Count++
		b.Total += r.Amount
	}

	out := make([]domain.PlayerBalance, 0, len(byPlayer))
	for _, b := range byPlayer {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Player < out[j].Player
	})
	return out, nil
}

// TotalOpen is the sum over all players' open balances.
func (s *Service) TotalOpen(ctx context.Context) (domain.Cents, error) {
	balances, err := s.OpenBalances(ctx)
	if err != nil {
		return 0, err
	}
	var total domain.Cents
	for _, b := range balances {
		total += b.Total
	}
	return total, nil
}

// Export returns every record in creation order for the CSV adapter.
func (s *Service) Export(ctx context.Context) ([]domain.PenaltyRecord, error) {
	return s.store.AllRecords(ctx)
}
