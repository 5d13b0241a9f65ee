package store

import (
	"context"
	"sync"
	"time"

	"strafenkasse-service/internal/domain"
)

// MemoryStore keeps catalog and ledger state in memory. It backs tests and
// ephemeral runs; the sqlite store is the durable backend.
type MemoryStore struct {
	mu      sync.RWMutex
	catalog []domain.PenaltyType
	records []domain.PenaltyRecord
	byKey   map[string]int // sync key -> index into records
	nextID  int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byKey:  make(map[string]int),
		nextID: 1,
	}
}

func (s *MemoryStore) InsertPenaltyType(ctx context.Context, t domain.PenaltyType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.NormalizeName(t.Name)
	for _, existing := range s.catalog {
		if domain.NormalizeName(existing.Name) == key {
			return domain.ErrDuplicateName
		}
	}
	s.catalog = append(s.catalog, t)
	return nil
}

func (s *MemoryStore) DeletePenaltyType(ctx context.Context, nameKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.catalog {
		if domain.NormalizeName(existing.Name) == nameKey {
			s.catalog = append(s.catalog[:i], s.catalog[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *MemoryStore) ListPenaltyTypes(ctx context.Context) ([]domain.PenaltyType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PenaltyType, len(s.catalog))
	copy(out, s.catalog)
	return out, nil
}

func (s *MemoryStore) FindPenaltyType(ctx context.Context, nameKey string) (domain.PenaltyType, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.PenaltyType{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, existing := range s.catalog {
		if domain.NormalizeName(existing.Name) == nameKey {
			return existing, true, nil
		}
	}
	return domain.PenaltyType{}, false, nil
}

func (s *MemoryStore) InsertPenalty(ctx context.Context, rec domain.PenaltyRecord) (domain.PenaltyRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.PenaltyRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	s.records = append(s.records, rec)
	if rec.SyncKey != "" {
		s.byKey[rec.SyncKey] = len(s.records) - 1
	}
	return rec, nil
}

func (s *MemoryStore) FindBySyncKey(ctx context.Context, key string) (domain.PenaltyRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.PenaltyRecord{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byKey[key]
	if !ok {
		return domain.PenaltyRecord{}, false, nil
	}
	return s.records[idx], true, nil
}

func (s *MemoryStore) MarkPaid(ctx context.Context, playerKey string, paidAt time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.records {
		if s.records[i].PlayerKey == playerKey && s.records[i].Status == domain.StatusOpen {
			s.records[i].Status = domain.StatusPaid
			at := paidAt
			s.records[i].PaidAt = &at
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) RecordsForPlayer(ctx context.Context, playerKey string) ([]domain.PenaltyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first: IDs are monotonic, so walk backwards.
	out := make([]domain.PenaltyRecord, 0)
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].PlayerKey == playerKey {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) AllRecords(ctx context.Context) ([]domain.PenaltyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PenaltyRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Close satisfies Store; the memory backend has nothing to release.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
