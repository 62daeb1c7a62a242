package memory

import (
	"context"
	"fmt"
	"sync"

	"shopos/backend/internal/store"
)

type Store struct {
	mu   sync.RWMutex
	docs map[store.Collection]store.Document
}

func New() *Store {
	return &Store{docs: make(map[store.Collection]store.Document)}
}

// NewSeeded returns a store holding the starter catalog and customer list.
func NewSeeded() *Store {
	s := New()
	products, _ := store.Encode(store.SeedProducts())
	customers, _ := store.Encode(store.SeedCustomers())
	s.docs[store.Products] = store.Document{Body: products, Version: 1}
	s.docs[store.Customers] = store.Document{Body: customers, Version: 1}
	return s
}

func (s *Store) Load(_ context.Context, key store.Collection) (store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (s *Store) Save(_ context.Context, key store.Collection, body []byte, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.docs[key].Version
	if current != expectedVersion {
		return current, fmt.Errorf("%w: %s at version %d, expected %d", store.ErrConflict, key, current, expectedVersion)
	}
	next := current + 1
	s.docs[key] = cloneDocument(store.Document{Body: body, Version: next})
	return next, nil
}

// Put overwrites a document regardless of version. Used to stage fixtures.
func (s *Store) Put(key store.Collection, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[key]
	s.docs[key] = store.Document{Body: append([]byte(nil), body...), Version: doc.Version + 1}
}

func cloneDocument(doc store.Document) store.Document {
	return store.Document{Body: append([]byte(nil), doc.Body...), Version: doc.Version}
}
