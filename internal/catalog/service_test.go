package catalog

import (
	"context"
	"errors"
	"testing"

	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/store"
)

func newService() *Service {
	return NewService(store.NewMemoryStore())
}

func TestAddTypeRejectsCaseInsensitiveDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.AddType(ctx, "Gelbe Karte", 500); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.AddType(ctx, "gelbe karte", 500); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("duplicate add error = %v, want ErrDuplicateName", err)
	}
}

func TestAddTypeRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	for _, amount := range []domain.Cents{0, -100} {
		if _, err := svc.AddType(ctx, "Meckern", amount); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("AddType amount %d error = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestRemoveTypeSecondCallFails(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.AddType(ctx, "Meckern", 200); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveType(ctx, "MECKERN"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveType(ctx, "Meckern"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second remove error = %v, want ErrNotFound", err)
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	names := []string{"Rote Karte", "Gelbe Karte", "Trikot vergessen"}
	for _, n := range names {
		if _, err := svc.AddType(ctx, n, 500); err != nil {
			t.Fatalf("add %q: %v", n, err)
		}
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, n := range names {
		if list[i].Name != n {
			t.Fatalf("list[%d] = %q, want %q", i, list[i].Name, n)
		}
	}
}

func TestSeedOnlyOnEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != len(DefaultTypes()) {
		t.Fatalf("seeded %d entries, want %d", len(list), len(DefaultTypes()))
	}
	if list[0].Name != NonResponseTypeName || list[0].Amount != 200 {
		t.Fatalf("unexpected first seed entry: %+v", list[0])
	}

	// A second seed must not duplicate anything.
	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	list, _ = svc.List(ctx)
	if len(list) != len(DefaultTypes()) {
		t.Fatalf("second seed changed catalog size to %d", len(list))
	}

	// A non-empty catalog is never seeded.
	custom := NewService(store.NewMemoryStore())
	if _, err := custom.AddType(ctx, "Meckern", 200); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := custom.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	list, _ = custom.List(ctx)
	if len(list) != 1 {
		t.Fatalf("seed overwrote a non-empty catalog: %d entries", len(list))
	}
}
