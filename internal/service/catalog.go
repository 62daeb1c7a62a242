package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
	"shopos/backend/internal/xid"
)

func (s *Service) ListProducts(ctx context.Context) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(strings.TrimSpace(id))
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("%w: product %s", store.ErrNotFound, id)
	}
	return s.products[idx], nil
}

func (s *Service) AddProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if _, err := s.authorize(ctx, session.PermAddProduct); err != nil {
		return domain.Product{}, err
	}

	product, err := domain.NewProduct(xid.New("p"), req.Name, req.SellPrice, req.BuyPrice, req.Stock)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, product)
	s.persist(ctx, store.Products)
	s.log.Info("product added", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// SetField edits stock or a price from raw operator input. Input that is not
// a non-negative integer leaves the product untouched and reports
// changed=false without an error.
func (s *Service) SetField(ctx context.Context, id string, req domain.ProductFieldRequest) (domain.ProductFieldResponse, error) {
	if _, err := s.authorize(ctx, session.PermEditInventory); err != nil {
		return domain.ProductFieldResponse{}, err
	}
	switch req.Field {
	case domain.FieldStock, domain.FieldSellPrice, domain.FieldBuyPrice:
	default:
		return domain.ProductFieldResponse{}, fmt.Errorf("%w: unknown field %q", store.ErrInvalidInput, req.Field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(strings.TrimSpace(id))
	if idx < 0 {
		return domain.ProductFieldResponse{}, fmt.Errorf("%w: product %s", store.ErrNotFound, id)
	}

	value, err := strconv.ParseInt(strings.TrimSpace(req.Value), 10, 64)
	if err != nil || value < 0 {
		return domain.ProductFieldResponse{Product: s.products[idx]}, nil
	}

	product := s.products[idx]
	switch req.Field {
	case domain.FieldStock:
		product.Stock = int(value)
	case domain.FieldSellPrice:
		product.SellPrice = value
	case domain.FieldBuyPrice:
		product.BuyPrice = value
	}
	if product == s.products[idx] {
		return domain.ProductFieldResponse{Product: product}, nil
	}

	s.products[idx] = product
	s.persist(ctx, store.Products)
	s.log.Info("product updated",
		zap.String("product_id", product.ID),
		zap.String("field", string(req.Field)),
		zap.Int64("value", value),
	)
	return domain.ProductFieldResponse{Product: product, Changed: true}, nil
}

// adjustStock moves stock by delta. Callers hold mu and have validated the
// quantities; a negative result is still refused.
func (s *Service) adjustStock(productID string, delta int) error {
	idx := s.productIndex(productID)
	if idx < 0 {
		return fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
	}
	next := s.products[idx].Stock + delta
	if next < 0 {
		return fmt.Errorf("%w: %s has %d, need %d", store.ErrInsufficientStock, s.products[idx].Name, s.products[idx].Stock, -delta)
	}
	s.products[idx].Stock = next
	return nil
}
