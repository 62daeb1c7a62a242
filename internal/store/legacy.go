package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shopos/backend/internal/domain"
)

// Version 1 documents are the bare camelCase arrays the browser build wrote.

type legacyProduct struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SellPrice int64  `json:"sellPrice"`
	BuyPrice  int64  `json:"buyPrice"`
	Stock     int    `json:"stock"`
}

type legacyItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Cost     int64  `json:"cost"`
}

type legacySale struct {
	ID            string       `json:"id"`
	Type          string       `json:"type"`
	PaymentMethod string       `json:"paymentMethod"`
	CustomerName  string       `json:"customerName"`
	Date          string       `json:"date"`
	TotalRevenue  int64        `json:"totalRevenue"`
	TotalCost     int64        `json:"totalCost"`
	Profit        int64        `json:"profit"`
	Cart          []legacyItem `json:"cart"`
}

// legacyEntry covers both history shapes: payments carry amount, credit
// entries are a copy of the sale record.
type legacyEntry struct {
	legacySale
	Amount int64 `json:"amount"`
}

type legacyDebtor struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Balance int64         `json:"balance"`
	Mobile  string        `json:"mobile"`
	History []legacyEntry `json:"history"`
}

func migrateProducts(body []byte) ([]domain.Product, error) {
	var legacy []legacyProduct
	if err := json.Unmarshal(body, &legacy); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(legacy))
	for _, p := range legacy {
		product, err := domain.NewProduct(p.ID, p.Name, p.SellPrice, p.BuyPrice, max(0, p.Stock))
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, err)
		}
		products = append(products, product)
	}
	return products, nil
}

func migrateSales(body []byte) ([]domain.Sale, error) {
	var legacy []legacySale
	if err := json.Unmarshal(body, &legacy); err != nil {
		return nil, err
	}
	sales := make([]domain.Sale, 0, len(legacy))
	for _, s := range legacy {
		sale, err := s.toSale()
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (s legacySale) toSale() (domain.Sale, error) {
	at, err := parseLegacyDate(s.Date)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("sale %q: %w", s.ID, err)
	}
	method := domain.PaymentMethod(s.PaymentMethod)
	if method == "" {
		method = domain.PaymentCash
	}
	return domain.Sale{
		ID:            s.ID,
		Type:          domain.SaleType(s.Type),
		PaymentMethod: method,
		CustomerName:  s.CustomerName,
		CreatedAt:     at,
		TotalRevenue:  s.TotalRevenue,
		TotalCost:     s.TotalCost,
		Profit:        s.Profit,
		Items:         convertItems(s.Cart),
	}, nil
}

func migrateDebtors(body []byte) ([]domain.Debtor, error) {
	var legacy []legacyDebtor
	if err := json.Unmarshal(body, &legacy); err != nil {
		return nil, err
	}
	debtors := make([]domain.Debtor, 0, len(legacy))
	for _, d := range legacy {
		debtor := domain.Debtor{
			ID:      d.ID,
			Name:    strings.TrimSpace(d.Name),
			Balance: max(0, d.Balance),
			Mobile:  d.Mobile,
			History: make([]domain.DebtEntry, 0, len(d.History)),
		}
		for _, h := range d.History {
			at, err := parseLegacyDate(h.Date)
			if err != nil {
				return nil, fmt.Errorf("debtor %q: %w", d.ID, err)
			}
			switch h.Type {
			case "payment":
				debtor.History = append(debtor.History, domain.DebtEntry{
					ID:     h.ID,
					Type:   domain.EntryPayment,
					Amount: h.Amount,
					At:     at,
				})
			case "credit", "debt":
				method := domain.PaymentMethod(h.PaymentMethod)
				if method == "" {
					method = domain.PaymentCash
				}
				debtor.History = append(debtor.History, domain.DebtEntry{
					ID:            h.ID,
					Type:          domain.EntryDebt,
					Amount:        h.TotalRevenue,
					SaleID:        h.ID,
					PaymentMethod: method,
					Items:         convertItems(h.Cart),
					At:            at,
				})
			default:
				return nil, fmt.Errorf("debtor %q: unknown history type %q", d.ID, h.Type)
			}
		}
		debtors = append(debtors, debtor)
	}
	return debtors, nil
}

func migrateCustomers(body []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func convertItems(items []legacyItem) []domain.SaleItem {
	out := make([]domain.SaleItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.SaleItem(item))
	}
	return out
}

func parseLegacyDate(raw string) (time.Time, error) {
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return domain.Stamp(at), nil
}
