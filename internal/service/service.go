package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service is the transaction and ledger engine. Every mutation runs under mu,
// so a finalize observes and changes catalog, cart, sales and debtors as one
// step. State in memory is authoritative; documents are written through after
// each change and a failed write is only logged.
type Service struct {
	mu   sync.Mutex
	docs store.DocumentStore
	log  *zap.Logger
	now  func() time.Time
	loc  *time.Location
	topN int

	products  []domain.Product
	customers []string
	sales     []domain.Sale
	debtors   []domain.Debtor
	versions  map[store.Collection]int64
	carts     map[string][]domain.CartLine
	cartSeen  map[string]time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithTopProducts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

func New(docs store.DocumentStore, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		docs:      docs,
		log:       log.Named("service"),
		now:       time.Now,
		loc:       time.UTC,
		topN:      5,
		products:  store.SeedProducts(),
		customers: store.SeedCustomers(),
		sales:     []domain.Sale{},
		debtors:   []domain.Debtor{},
		versions:  make(map[store.Collection]int64),
		carts:     make(map[string][]domain.CartLine),
		cartSeen:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces in-memory state with the persisted collections. A missing,
// unreadable or corrupt collection falls back to its seed value; documents in
// the legacy layout are rewritten in the current one.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rewrite []store.Collection
	if loadCollection(ctx, s, store.Products, store.DecodeProducts, store.SeedProducts, &s.products) {
		rewrite = append(rewrite, store.Products)
	}
	if loadCollection(ctx, s, store.Customers, store.DecodeCustomers, store.SeedCustomers, &s.customers) {
		rewrite = append(rewrite, store.Customers)
	}
	if loadCollection(ctx, s, store.Sales, store.DecodeSales, emptyOf[domain.Sale], &s.sales) {
		rewrite = append(rewrite, store.Sales)
	}
	if loadCollection(ctx, s, store.Debtors, store.DecodeDebtors, emptyOf[domain.Debtor], &s.debtors) {
		rewrite = append(rewrite, store.Debtors)
	}
	if len(rewrite) > 0 {
		s.persist(ctx, rewrite...)
	}

	s.log.Info("state loaded",
		zap.Int("products", len(s.products)),
		zap.Int("customers", len(s.customers)),
		zap.Int("sales", len(s.sales)),
		zap.Int("debtors", len(s.debtors)),
	)
}

func emptyOf[T any]() []T {
	return []T{}
}

// loadCollection reports whether the loaded document was migrated and
// should be written back.
func loadCollection[T any](ctx context.Context, s *Service, key store.Collection, decode func([]byte) ([]T, bool, error), seed func() []T, dest *[]T) bool {
	doc, err := s.docs.Load(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.log.Info("collection absent, using defaults", zap.String("collection", string(key)))
		*dest = seed()
		return false
	case err != nil:
		s.log.Warn("collection unreadable, using defaults", zap.String("collection", string(key)), zap.Error(err))
		*dest = seed()
		return false
	}

	s.versions[key] = doc.Version
	items, migrated, err := decode(doc.Body)
	if err != nil {
		s.log.Warn("collection corrupt, using defaults", zap.String("collection", string(key)), zap.Error(err))
		*dest = seed()
		return false
	}
	if migrated {
		s.log.Info("migrated legacy collection", zap.String("collection", string(key)), zap.Int("items", len(items)))
	}
	*dest = items
	return migrated
}

// persist writes the named collections. Callers hold mu.
func (s *Service) persist(ctx context.Context, keys ...store.Collection) {
	for _, key := range keys {
		body, err := s.encode(key)
		if err != nil {
			s.log.Error("encode collection", zap.String("collection", string(key)), zap.Error(err))
			continue
		}
		s.save(ctx, key, body)
	}
}

func (s *Service) save(ctx context.Context, key store.Collection, body []byte) {
	version, err := s.docs.Save(ctx, key, body, s.versions[key])
	if errors.Is(err, store.ErrConflict) {
		// Another writer moved the document. Our copy stays authoritative.
		s.log.Warn("version conflict, overwriting", zap.String("collection", string(key)), zap.Error(err))
		current, loadErr := s.docs.Load(ctx, key)
		switch {
		case loadErr == nil:
			s.versions[key] = current.Version
		case errors.Is(loadErr, store.ErrNotFound):
			s.versions[key] = 0
		default:
			s.log.Warn("reload version", zap.String("collection", string(key)), zap.Error(loadErr))
			return
		}
		version, err = s.docs.Save(ctx, key, body, s.versions[key])
	}
	if err != nil {
		s.log.Warn("persist collection", zap.String("collection", string(key)), zap.Error(err))
		return
	}
	s.versions[key] = version
}

func (s *Service) encode(key store.Collection) ([]byte, error) {
	switch key {
	case store.Products:
		return store.Encode(s.products)
	case store.Customers:
		return store.Encode(s.customers)
	case store.Sales:
		return store.Encode(s.sales)
	case store.Debtors:
		return store.Encode(s.debtors)
	}
	return nil, fmt.Errorf("unknown collection %q", key)
}

func (s *Service) authorize(ctx context.Context, perm session.Permission) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: no active session", session.ErrForbidden)
	}
	if err := session.Authorize(actor.Role, perm); err != nil {
		return domain.Actor{}, err
	}
	return actor, nil
}

func (s *Service) clock() time.Time {
	return domain.Stamp(s.now())
}

func (s *Service) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p domain.Product) bool { return p.ID == id })
}

func (s *Service) debtorIndex(id string) int {
	return slices.IndexFunc(s.debtors, func(d domain.Debtor) bool { return d.ID == id })
}
