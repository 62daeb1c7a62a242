package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
	"shopos/backend/internal/xid"
)

// RecordPayment reduces a debtor's balance. Paying more than is owed settles
// the balance at zero; the excess is not kept as credit.
func (s *Service) RecordPayment(ctx context.Context, debtorID string, amount int64) (domain.DebtorView, error) {
	if _, err := s.authorize(ctx, session.PermRecordPayment); err != nil {
		return domain.DebtorView{}, err
	}
	if amount <= 0 {
		return domain.DebtorView{}, fmt.Errorf("%w: payment amount must be positive", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.debtorIndex(strings.TrimSpace(debtorID))
	if idx < 0 {
		return domain.DebtorView{}, fmt.Errorf("%w: debtor %s", store.ErrNotFound, debtorID)
	}

	now := s.clock()
	before := s.debtors[idx].Balance
	s.debtors[idx] = s.debtors[idx].Apply(domain.NewPaymentEntry(xid.New("pay"), amount, now))
	debtor := s.debtors[idx]

	s.persist(ctx, store.Debtors)
	fields := []zap.Field{
		zap.String("debtor_id", debtor.ID),
		zap.Int64("amount", amount),
		zap.Int64("balance", debtor.Balance),
	}
	if amount > before {
		fields = append(fields, zap.Int64("absorbed", amount-before))
	}
	s.log.Info("payment recorded", fields...)
	return debtor.View(now), nil
}

func (s *Service) SetMobile(ctx context.Context, debtorID string, mobile string) (domain.DebtorView, error) {
	if _, err := s.authorize(ctx, session.PermManageDebtors); err != nil {
		return domain.DebtorView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.debtorIndex(strings.TrimSpace(debtorID))
	if idx < 0 {
		return domain.DebtorView{}, fmt.Errorf("%w: debtor %s", store.ErrNotFound, debtorID)
	}
	s.debtors[idx].Mobile = strings.TrimSpace(mobile)
	s.persist(ctx, store.Debtors)
	return s.debtors[idx].View(s.clock()), nil
}

func (s *Service) GetDebtor(ctx context.Context, debtorID string) (domain.DebtorView, error) {
	if _, err := s.authorize(ctx, session.PermManageDebtors); err != nil {
		return domain.DebtorView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.debtorIndex(strings.TrimSpace(debtorID))
	if idx < 0 {
		return domain.DebtorView{}, fmt.Errorf("%w: debtor %s", store.ErrNotFound, debtorID)
	}
	return s.debtors[idx].View(s.clock()), nil
}

// ListDebtors returns debtors ordered by balance, largest first. With
// outstandingOnly, settled debtors are left out.
func (s *Service) ListDebtors(ctx context.Context, outstandingOnly bool) ([]domain.DebtorView, error) {
	if _, err := s.authorize(ctx, session.PermManageDebtors); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	views := make([]domain.DebtorView, 0, len(s.debtors))
	for _, d := range s.debtors {
		if outstandingOnly && d.Balance <= 0 {
			continue
		}
		views = append(views, d.View(now))
	}
	slices.SortStableFunc(views, func(a, b domain.DebtorView) int {
		return cmp.Compare(b.Balance, a.Balance)
	})
	return views, nil
}

// OutstandingDebt is the sum of every debtor balance.
func (s *Service) OutstandingDebt(ctx context.Context) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outstandingDebt()
}

func (s *Service) outstandingDebt() int64 {
	var total int64
	for _, d := range s.debtors {
		total += d.Balance
	}
	return total
}
