package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
)

func (s *Service) ListCustomers(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.customers)
}

// ResolveCustomer returns the registered spelling of name, registering the
// trimmed name when no case-insensitive match exists.
func (s *Service) ResolveCustomer(ctx context.Context, name string) (string, error) {
	if _, err := s.authorize(ctx, session.PermSell); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: customer name is required", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resolved, created := s.resolveCustomer(name)
	if created {
		s.persist(ctx, store.Customers)
	}
	return resolved, nil
}

// resolveCustomer expects a trimmed, non-empty name. Callers hold mu.
func (s *Service) resolveCustomer(name string) (string, bool) {
	if existing, ok := findName(s.customers, name); ok {
		return existing, false
	}
	s.customers = append(s.customers, name)
	return name, true
}

func (s *Service) ImportCustomers(ctx context.Context, names []string) (domain.CustomerImportResponse, error) {
	if _, err := s.authorize(ctx, session.PermImportCustomers); err != nil {
		return domain.CustomerImportResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, created := s.resolveCustomer(name); created {
			imported++
		}
	}
	if imported > 0 {
		s.persist(ctx, store.Customers)
		s.log.Info("customers imported", zap.Int("count", imported))
	}
	return domain.CustomerImportResponse{Imported: imported, Customers: slices.Clone(s.customers)}, nil
}

func findName(names []string, name string) (string, bool) {
	for _, existing := range names {
		if strings.EqualFold(existing, name) {
			return existing, true
		}
	}
	return "", false
}
