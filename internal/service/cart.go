package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
	"shopos/backend/internal/xid"
)

const (
	defaultCartKey = "default"
	// cartIdleTTL is longer than the default session token lifetime.
	cartIdleTTL = 24 * time.Hour
)

func cartKey(actor domain.Actor) string {
	if actor.SessionID == "" {
		return defaultCartKey
	}
	return actor.SessionID
}

func (s *Service) Cart(ctx context.Context) (domain.Cart, error) {
	actor, err := s.authorize(ctx, session.PermSell)
	if err != nil {
		return domain.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotCart(s.carts[cartKey(actor)]), nil
}

// AddLine puts quantity units of a product in the cart. A line with the same
// product and effective price absorbs the quantity; a different override
// price opens a separate line.
func (s *Service) AddLine(ctx context.Context, req domain.CartLineRequest) (domain.Cart, error) {
	actor, err := s.authorize(ctx, session.PermSell)
	if err != nil {
		return domain.Cart{}, err
	}
	if req.Quantity < 1 {
		return domain.Cart{}, fmt.Errorf("%w: quantity must be at least 1", store.ErrInvalidInput)
	}
	if req.OverridePrice != nil && *req.OverridePrice < 0 {
		return domain.Cart{}, fmt.Errorf("%w: price must not be negative", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(strings.TrimSpace(req.ProductID))
	if idx < 0 {
		return domain.Cart{}, fmt.Errorf("%w: product %s", store.ErrNotFound, req.ProductID)
	}
	product := s.products[idx]
	price := product.SellPrice
	if req.OverridePrice != nil {
		price = *req.OverridePrice
	}

	key := cartKey(actor)
	lines := s.carts[key]
	if req.Quantity > product.Stock-quantityInCart(lines, product.ID) {
		return snapshotCart(lines), fmt.Errorf("%w: only %d %s available", store.ErrInsufficientStock, product.Stock, product.Name)
	}

	lines = slices.Clone(lines)
	merge := slices.IndexFunc(lines, func(l domain.CartLine) bool {
		return l.ProductID == product.ID && l.SellPrice == price
	})
	if merge >= 0 {
		lines[merge].Quantity += req.Quantity
	} else {
		lines = append(lines, domain.NewCartLine(xid.New("c"), product, price, req.Quantity))
	}
	s.setCart(key, lines)
	return snapshotCart(lines), nil
}

// ChangeQuantity moves a line's quantity by delta. Reaching zero removes the
// line.
func (s *Service) ChangeQuantity(ctx context.Context, lineID string, delta int) (domain.Cart, error) {
	actor, err := s.authorize(ctx, session.PermSell)
	if err != nil {
		return domain.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := cartKey(actor)
	lines := s.carts[key]
	pos := slices.IndexFunc(lines, func(l domain.CartLine) bool { return l.LineID == lineID })
	if pos < 0 {
		return snapshotCart(lines), fmt.Errorf("%w: cart line %s", store.ErrNotFound, lineID)
	}

	line := lines[pos]
	if delta > 0 {
		idx := s.productIndex(line.ProductID)
		if idx < 0 {
			return snapshotCart(lines), fmt.Errorf("%w: product %s", store.ErrNotFound, line.ProductID)
		}
		product := s.products[idx]
		if delta > product.Stock-quantityInCart(lines, product.ID) {
			return snapshotCart(lines), fmt.Errorf("%w: only %d %s available", store.ErrInsufficientStock, product.Stock, product.Name)
		}
	}

	// Quantity is at least 1, so a negative delta cannot wrap; a positive one
	// is bounded by stock above.
	next := line.Quantity + delta
	lines = slices.Clone(lines)
	if next <= 0 {
		lines = slices.Delete(lines, pos, pos+1)
	} else {
		lines[pos].Quantity = next
	}
	s.setCart(key, lines)
	return snapshotCart(lines), nil
}

func (s *Service) ClearCart(ctx context.Context) (domain.Cart, error) {
	actor, err := s.authorize(ctx, session.PermSell)
	if err != nil {
		return domain.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropCart(cartKey(actor))
	return snapshotCart(nil), nil
}

// setCart stores lines for key and evicts carts left idle past cartIdleTTL.
// An empty cart is dropped. Callers hold mu.
func (s *Service) setCart(key string, lines []domain.CartLine) {
	now := s.clock()
	for other, seen := range s.cartSeen {
		if other != key && now.Sub(seen) > cartIdleTTL {
			s.dropCart(other)
		}
	}
	if len(lines) == 0 {
		s.dropCart(key)
		return
	}
	s.carts[key] = lines
	s.cartSeen[key] = now
}

func (s *Service) dropCart(key string) {
	delete(s.carts, key)
	delete(s.cartSeen, key)
}

func cartTotal(lines []domain.CartLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.Subtotal()
	}
	return total
}

func quantityInCart(lines []domain.CartLine, productID string) int {
	qty := 0
	for _, line := range lines {
		if line.ProductID == productID {
			qty += line.Quantity
		}
	}
	return qty
}

func snapshotCart(lines []domain.CartLine) domain.Cart {
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return domain.Cart{Lines: out, Total: cartTotal(lines)}
}
