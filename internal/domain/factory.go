package domain

import (
	"errors"
	"strings"
	"time"
)

// Stamp normalises a clock reading to the precision persisted documents use.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func NewProduct(id, name string, sellPrice, buyPrice int64, stock int) (Product, error) {
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return Product{}, errors.New("product id and name are required")
	}
	if sellPrice < 0 || buyPrice < 0 || stock < 0 {
		return Product{}, errors.New("prices and stock must not be negative")
	}
	return Product{ID: id, Name: name, SellPrice: sellPrice, BuyPrice: buyPrice, Stock: stock}, nil
}

func NewCartLine(lineID string, product Product, price int64, quantity int) CartLine {
	return CartLine{
		LineID:    lineID,
		ProductID: product.ID,
		Name:      product.Name,
		SellPrice: price,
		BuyPrice:  product.BuyPrice,
		Quantity:  quantity,
	}
}

func (c CartLine) Subtotal() int64 {
	return c.SellPrice * int64(c.Quantity)
}

// NewSale snapshots the cart lines into an immutable sale record.
func NewSale(id string, saleType SaleType, method PaymentMethod, customer string, at time.Time, lines []CartLine) Sale {
	sale := Sale{
		ID:            id,
		Type:          saleType,
		PaymentMethod: method,
		CustomerName:  customer,
		CreatedAt:     Stamp(at),
		Items:         make([]SaleItem, 0, len(lines)),
	}
	for _, line := range lines {
		sale.TotalRevenue += line.Subtotal()
		sale.TotalCost += line.BuyPrice * int64(line.Quantity)
		sale.Items = append(sale.Items, SaleItem{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.SellPrice,
			Cost:     line.BuyPrice,
		})
	}
	sale.Profit = sale.TotalRevenue - sale.TotalCost
	return sale
}

func (s Sale) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.CustomerName), term) || strings.Contains(strings.ToLower(s.ID), term) {
		return true
	}
	for _, item := range s.Items {
		if strings.Contains(strings.ToLower(item.Name), term) {
			return true
		}
	}
	return false
}

func NewDebtEntry(id string, sale Sale) DebtEntry {
	items := make([]SaleItem, len(sale.Items))
	copy(items, sale.Items)
	return DebtEntry{
		ID:            id,
		Type:          EntryDebt,
		Amount:        sale.TotalRevenue,
		SaleID:        sale.ID,
		PaymentMethod: sale.PaymentMethod,
		Items:         items,
		At:            sale.CreatedAt,
	}
}

func NewPaymentEntry(id string, amount int64, at time.Time) DebtEntry {
	return DebtEntry{ID: id, Type: EntryPayment, Amount: amount, At: Stamp(at)}
}

func NewDebtor(id, name string, first DebtEntry) Debtor {
	return Debtor{ID: id, Name: name}.Apply(first)
}

// Apply returns a copy of the debtor with entry prepended to its history and
// the balance moved accordingly. Payments never take the balance below zero.
func (d Debtor) Apply(entry DebtEntry) Debtor {
	history := make([]DebtEntry, 0, len(d.History)+1)
	history = append(history, entry)
	history = append(history, d.History...)
	d.History = history
	d.Balance = applyEntry(d.Balance, entry)
	return d
}

func applyEntry(balance int64, entry DebtEntry) int64 {
	switch entry.Type {
	case EntryDebt:
		return balance + entry.Amount
	case EntryPayment:
		return max(0, balance-entry.Amount)
	}
	return balance
}
