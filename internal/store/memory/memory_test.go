package memory

import (
	"context"
	"errors"
	"testing"

	"shopos/backend/internal/store"
)

func TestSaveRequiresExpectedVersion(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Load(ctx, store.Sales); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unsaved collection, got %v", err)
	}

	v1, err := s.Save(ctx, store.Sales, []byte(`{"version":2,"items":[]}`), 0)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if v1 != 1 {
		t.Fatalf("expected version 1, got %d", v1)
	}

	if _, err := s.Save(ctx, store.Sales, []byte(`{}`), 0); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict on stale version, got %v", err)
	}

	v2, err := s.Save(ctx, store.Sales, []byte(`{"version":2,"items":[1]}`), v1)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	doc, err := s.Load(ctx, store.Sales)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Version != v2 || string(doc.Body) != `{"version":2,"items":[1]}` {
		t.Fatalf("unexpected document %d %s", doc.Version, doc.Body)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	s := NewSeeded()
	doc, err := s.Load(context.Background(), store.Customers)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc.Body[0] = 'X'

	again, _ := s.Load(context.Background(), store.Customers)
	if again.Body[0] == 'X' {
		t.Fatalf("expected stored body to be isolated from callers")
	}
	names, _, err := store.DecodeCustomers(again.Body)
	if err != nil {
		t.Fatalf("decode seeded customers: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 seeded customers, got %d", len(names))
	}
}
