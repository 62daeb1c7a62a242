package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"shopos/backend/internal/store"
)

func TestDocumentVersioningRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("SHOPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set SHOPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	key := store.Collection(fmt.Sprintf("pos_it_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM pos_documents WHERE key = $1`, string(key))
	})

	if _, err := s.Load(ctx, key); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	body, err := store.Encode(store.SeedProducts())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	v1, err := s.Save(ctx, key, body, 0)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Save(ctx, key, body, 0); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on duplicate insert, got %v", err)
	}

	doc, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Body) != string(body) || doc.Version != v1 {
		t.Fatalf("expected byte-identical body at version %d, got version %d", v1, doc.Version)
	}

	if _, err := s.Save(ctx, key, body, v1+5); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on stale update, got %v", err)
	}
	if _, err := s.Save(ctx, key, body, v1); err != nil {
		t.Fatalf("update: %v", err)
	}
}
