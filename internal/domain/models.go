package domain

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

type Actor struct {
	SessionID string `json:"session_id"`
	Role      Role   `json:"role"`
}

type SaleType string

const (
	SaleTypeCash   SaleType = "cash"
	SaleTypeCredit SaleType = "credit"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

type EntryType string

const (
	EntryDebt    EntryType = "debt"
	EntryPayment EntryType = "payment"
)

type ProductField string

const (
	FieldStock     ProductField = "stock"
	FieldSellPrice ProductField = "sell_price"
	FieldBuyPrice  ProductField = "buy_price"
)

type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SellPrice int64  `json:"sell_price"`
	BuyPrice  int64  `json:"buy_price"`
	Stock     int    `json:"stock"`
}

type CartLine struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SellPrice int64  `json:"sell_price"`
	BuyPrice  int64  `json:"buy_price"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	Lines []CartLine `json:"lines"`
	Total int64      `json:"total"`
}

type SaleItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Cost     int64  `json:"cost"`
}

type Sale struct {
	ID            string        `json:"id"`
	Type          SaleType      `json:"type"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CustomerName  string        `json:"customer_name"`
	CreatedAt     time.Time     `json:"created_at"`
	TotalRevenue  int64         `json:"total_revenue"`
	TotalCost     int64         `json:"total_cost"`
	Profit        int64         `json:"profit"`
	Items         []SaleItem    `json:"items"`
}

type DebtEntry struct {
	ID            string        `json:"id"`
	Type          EntryType     `json:"type"`
	Amount        int64         `json:"amount"`
	SaleID        string        `json:"sale_id,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	Items         []SaleItem    `json:"items,omitempty"`
	At            time.Time     `json:"at"`
}

type Debtor struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Balance int64       `json:"balance"`
	Mobile  string      `json:"mobile"`
	History []DebtEntry `json:"history"`
}

type DebtorView struct {
	Debtor
	Overdue         bool `json:"overdue"`
	DaysOutstanding int  `json:"days_outstanding"`
}

type ProductCreateRequest struct {
	Name      string `json:"name"`
	SellPrice int64  `json:"sell_price"`
	BuyPrice  int64  `json:"buy_price"`
	Stock     int    `json:"stock"`
}

type ProductFieldRequest struct {
	Field ProductField `json:"field"`
	Value string       `json:"value"`
}

type ProductFieldResponse struct {
	Product Product `json:"product"`
	Changed bool    `json:"changed"`
}

type CartLineRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	OverridePrice *int64 `json:"override_price,omitempty"`
}

type CartQuantityRequest struct {
	Delta int `json:"delta"`
}

type CheckoutRequest struct {
	CustomerName  string        `json:"customer_name"`
	SaleType      SaleType      `json:"sale_type"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

type CheckoutResponse struct {
	Finalized bool    `json:"finalized"`
	Sale      *Sale   `json:"sale,omitempty"`
	Debtor    *Debtor `json:"debtor,omitempty"`
}

type PaymentRequest struct {
	Amount int64 `json:"amount"`
}

type MobileRequest struct {
	Mobile string `json:"mobile"`
}

type CustomerImportRequest struct {
	Names []string `json:"names"`
}

type CustomerImportResponse struct {
	Imported  int      `json:"imported"`
	Customers []string `json:"customers"`
}

type ReportWindow string

const (
	WindowToday ReportWindow = "today"
	WindowWeek  ReportWindow = "week"
	WindowMonth ReportWindow = "month"
	WindowAll   ReportWindow = "all"
)

type ReportQuery struct {
	Window ReportWindow
	Search string
}

type ProductStat struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Revenue  int64  `json:"revenue"`
}

type ReportSummary struct {
	Window          ReportWindow  `json:"window"`
	From            *time.Time    `json:"from,omitempty"`
	GeneratedAt     time.Time     `json:"generated_at"`
	Revenue         int64         `json:"revenue"`
	Cost            int64         `json:"cost"`
	Profit          int64         `json:"profit"`
	Count           int           `json:"count"`
	OutstandingDebt int64         `json:"outstanding_debt"`
	TopProducts     []ProductStat `json:"top_products"`
	Sales           []Sale        `json:"sales"`
}

type TrendPoint struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Revenue int64  `json:"revenue"`
	Profit  int64  `json:"profit"`
	Count   int    `json:"count"`
}

type ProductReport struct {
	Name     string       `json:"name"`
	Window   ReportWindow `json:"window"`
	Quantity int          `json:"quantity"`
	Revenue  int64        `json:"revenue"`
}

type SessionResponse struct {
	AccessToken string   `json:"access_token,omitempty"`
	Role        Role     `json:"role"`
	View        string   `json:"view"`
	Views       []string `json:"views"`
	ExpiresAt   string   `json:"expires_at,omitempty"`
}

type PINRequest struct {
	PIN string `json:"pin"`
}

type NavigateRequest struct {
	View string `json:"view"`
}
