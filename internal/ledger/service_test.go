package ledger

import (
	"context"
	"errors"
	"testing"

	"strafenkasse-service/internal/catalog"
	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/store"
)

func newService() *Service {
	return NewService(store.NewMemoryStore())
}

func manual(player, reason string, amount domain.Cents) Assessment {
	return Assessment{Player: player, Reason: reason, Amount: amount, Source: domain.SourceManual}
}

func autoSync(player, reason string, amount domain.Cents, eventID string) Assessment {
	return Assessment{
		Player:  player,
		Reason:  reason,
		Amount:  amount,
		Source:  domain.SourceAutoSync,
		SyncKey: domain.SyncKey(eventID, player),
	}
}

func TestAssessCreatesOpenRecord(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	rec, created, err := svc.Assess(ctx, manual("Max Müller", "Gelbe Karte", 500))
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if !created {
		t.Fatalf("expected created = true")
	}
	if rec.ID == 0 || rec.Status != domain.StatusOpen || rec.Amount != 500 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.PlayerKey != "max muller" {
		t.Fatalf("player key = %q, want normalized name", rec.PlayerKey)
	}
}

func TestAssessValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, _, err := svc.Assess(ctx, manual("", "Gelbe Karte", 500)); err == nil {
		t.Fatalf("empty player accepted")
	}
	if _, _, err := svc.Assess(ctx, manual("Max", "", 500)); err == nil {
		t.Fatalf("empty reason accepted")
	}
	if _, _, err := svc.Assess(ctx, manual("Max", "Gelbe Karte", 0)); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("zero amount error = %v, want ErrInvalidAmount", err)
	}
	if _, _, err := svc.Assess(ctx, Assessment{Player: "Max", Reason: "x", Amount: 100, Source: domain.SourceAutoSync}); err == nil {
		t.Fatalf("auto-sync without sync key accepted")
	}
	if _, _, err := svc.Assess(ctx, Assessment{Player: "Max", Reason: "x", Amount: 100, Source: domain.SourceManual, SyncKey: "k"}); err == nil {
		t.Fatalf("manual with sync key accepted")
	}
}

func TestAssessDuplicateSyncKeyReturnsExisting(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	first, created, err := svc.Assess(ctx, autoSync("Max Müller", "Spond nicht beantwortet", 200, "E1"))
	if err != nil || !created {
		t.Fatalf("first assess = (created %v, %v)", created, err)
	}

	second, created, err := svc.Assess(ctx, autoSync("Max Müller", "Spond nicht beantwortet", 200, "E1"))
	if err != nil {
		t.Fatalf("duplicate assess must not error, got %v", err)
	}
	if created {
		t.Fatalf("duplicate assess reported created = true")
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate assess returned record %d, want existing %d", second.ID, first.ID)
	}

	records, _ := svc.RecordsFor(ctx, "Max Müller")
	if len(records) != 1 {
		t.Fatalf("duplicate assess created a second record: %d", len(records))
	}
}

func TestMarkPaidIsMonotonicAndIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	svc.mustAssess(t, manual("Max Müller", "Gelbe Karte", 500))
	svc.mustAssess(t, manual("Max Müller", "Trikot vergessen", 500))

	count, err := svc.MarkPaid(ctx, "max  MULLER")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if count != 2 {
		t.Fatalf("marked %d, want 2", count)
	}

	records, _ := svc.RecordsFor(ctx, "Max Müller")
	for _, r := range records {
		if r.Status != domain.StatusPaid {
			t.Fatalf("record %d still %s after MarkPaid", r.ID, r.Status)
		}
	}

	count, err = svc.MarkPaid(ctx, "Max Müller")
	if err != nil {
		t.Fatalf("second mark paid: %v", err)
	}
	if count != 0 {
		t.Fatalf("second mark paid = %d, want 0", count)
	}
}

func TestOpenBalancesMatchOpenRecords(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	svc.mustAssess(t, manual("Max Müller", "Gelbe Karte", 500))
	svc.mustAssess(t, manual("Max Müller", "Zu spät", 300))
	svc.mustAssess(t, manual("Anna Schmidt", "Rote Karte", 1500))
	svc.mustAssess(t, manual("Jonas Weber", "Trikot vergessen", 500))
	if _, err := svc.MarkPaid(ctx, "Jonas Weber"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	balances, err := svc.OpenBalances(ctx)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2 (paid-up player must not appear): %+v", len(balances), balances)
	}
	if balances[0].Player != "Anna Schmidt" || balances[0].Total != 1500 {
		t.Fatalf("balances not sorted by total desc: %+v", balances)
	}
	if balances[1].Player != "Max Müller" || balances[1].Total != 800 || balances[1].Count != 2 {
		t.Fatalf("unexpected balance: %+v", balances[1])
	}

	// Invariant: balance equals the sum of the player's OPEN records.
	for _, b := range balances {
		records, _ := svc.RecordsFor(ctx, b.Player)
		var sum domain.Cents
		for _, r := range records {
			if r.Status == domain.StatusOpen {
				sum += r.Amount
			}
		}
		if sum != b.Total {
			t.Fatalf("balance %d for %s, but open records sum to %d", b.Total, b.Player, sum)
		}
	}

	total, err := svc.TotalOpen(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 2300 {
		t.Fatalf("total open = %d, want 2300", total)
	}
}

func TestRecordsForNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	svc.mustAssess(t, manual("Max Müller", "first", 100))
	svc.mustAssess(t, manual("Max Müller", "second", 100))

	records, err := svc.RecordsFor(ctx, "Max Müller")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 2 || records[0].Reason != "second" {
		t.Fatalf("records not newest-first: %+v", records)
	}
}

func TestExportCreationOrderAcrossPlayers(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	svc.mustAssess(t, manual("Max Müller", "first", 100))
	svc.mustAssess(t, manual("Anna Schmidt", "second", 100))
	svc.mustAssess(t, manual("Max Müller", "third", 100))

	records, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(records) != 3 || records[0].Reason != "first" || records[2].Reason != "third" {
		t.Fatalf("export not in creation order: %+v", records)
	}
}

func (s *Service) mustAssess(t *testing.T, a Assessment) domain.PenaltyRecord {
	t.Helper()
	rec, _, err := s.Assess(context.Background(), a)
	if err != nil {
		t.Fatalf("assess %+v: %v", a, err)
	}
	return rec
}

func TestRecordAmountSurvivesCatalogRemoval(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	cat := catalog.NewService(st)
	svc := NewService(st)

	entry, err := cat.AddType(ctx, "Gelbe Karte", 500)
	if err != nil {
		t.Fatalf("add type: %v", err)
	}
	if _, _, err := svc.Assess(ctx, manual("Max Müller", entry.Name, entry.Amount)); err != nil {
		t.Fatalf("assess: %v", err)
	}

	if err := cat.RemoveType(ctx, "Gelbe Karte"); err != nil {
		t.Fatalf("remove type: %v", err)
	}

	recs, err := svc.RecordsFor(ctx, "Max Müller")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(recs) != 1 || recs[0].Amount != 500 {
		t.Fatalf("expected the assessed amount to be untouched, got %+v", recs)
	}
}
