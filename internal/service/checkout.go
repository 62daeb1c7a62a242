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
	"shopos/backend/internal/xid"
)

// FinalizeSale turns the caller's cart into a sale. An empty or zero-total
// cart is a no-op. Otherwise the sale is recorded, stock is decremented, a
// credit sale is charged to the customer's debtor record and the cart is
// cleared, all before the lock is released. Any validation failure leaves
// every ledger untouched.
func (s *Service) FinalizeSale(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	actor, err := s.authorize(ctx, session.PermSell)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := cartKey(actor)
	lines := s.carts[key]
	if cartTotal(lines) == 0 {
		return domain.CheckoutResponse{Finalized: false}, nil
	}

	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: customer name is required", store.ErrInvalidInput)
	}
	saleType := req.SaleType
	if saleType != domain.SaleTypeCash && saleType != domain.SaleTypeCredit {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: sale type must be cash or credit", store.ErrInvalidInput)
	}
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentCash
	}
	if method != domain.PaymentCash && method != domain.PaymentBankTransfer {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: payment method must be cash or bank_transfer", store.ErrInvalidInput)
	}

	sold := soldQuantities(lines)
	for _, productID := range sortedKeys(sold) {
		idx := s.productIndex(productID)
		if idx < 0 {
			return domain.CheckoutResponse{}, fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
		}
		if sold[productID] < 1 {
			return domain.CheckoutResponse{}, fmt.Errorf("%w: quantity for %s must be at least 1", store.ErrInvalidInput, productID)
		}
		if product := s.products[idx]; sold[productID] > product.Stock {
			return domain.CheckoutResponse{}, fmt.Errorf("%w: only %d %s available", store.ErrInsufficientStock, product.Stock, product.Name)
		}
	}

	customer, newCustomer := s.resolveCustomer(customer)
	sale := domain.NewSale(xid.New("s"), saleType, method, customer, s.clock(), lines)
	s.sales = slices.Insert(s.sales, 0, sale)
	touched := []store.Collection{store.Sales, store.Products}
	if newCustomer {
		touched = append(touched, store.Customers)
	}

	resp := domain.CheckoutResponse{Finalized: true, Sale: &sale}
	if saleType == domain.SaleTypeCredit {
		debtor := s.chargeDebtor(sale)
		resp.Debtor = &debtor
		touched = append(touched, store.Debtors)
	}

	for _, productID := range sortedKeys(sold) {
		if err := s.adjustStock(productID, -sold[productID]); err != nil {
			// Quantities were checked above under the same lock.
			s.log.Error("stock adjustment after validation", zap.String("product_id", productID), zap.Error(err))
		}
	}
	s.dropCart(key)

	s.persist(ctx, touched...)
	s.log.Info("sale finalized",
		zap.String("sale_id", sale.ID),
		zap.String("type", string(sale.Type)),
		zap.String("customer", sale.CustomerName),
		zap.Int64("revenue", sale.TotalRevenue),
		zap.Int64("profit", sale.Profit),
	)
	return resp, nil
}

// chargeDebtor adds a credit sale to the matching debtor, creating one on
// first credit. Callers hold mu.
func (s *Service) chargeDebtor(sale domain.Sale) domain.Debtor {
	entry := domain.NewDebtEntry(xid.New("d"), sale)
	idx := slices.IndexFunc(s.debtors, func(d domain.Debtor) bool {
		return strings.EqualFold(d.Name, sale.CustomerName)
	})
	if idx >= 0 {
		s.debtors[idx] = s.debtors[idx].Apply(entry)
		return s.debtors[idx]
	}
	debtor := domain.NewDebtor(xid.New("debtor"), sale.CustomerName, entry)
	s.debtors = append(s.debtors, debtor)
	return debtor
}

func soldQuantities(lines []domain.CartLine) map[string]int {
	sold := make(map[string]int)
	for _, line := range lines {
		sold[line.ProductID] += line.Quantity
	}
	return sold
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
