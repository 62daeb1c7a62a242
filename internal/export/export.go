// Package export renders sales reports for download and reads customer
// lists from spreadsheets.
package export

import (
	"strings"
	"time"

	"shopos/backend/internal/domain"
)

const rowsPerPage = 30

type Meta struct {
	ShopName string
	Location *time.Location
}

func (m Meta) location() *time.Location {
	if m.Location == nil {
		return time.UTC
	}
	return m.Location
}

type saleRow struct {
	Time     string
	Customer string
	Type     string
	Amount   int64
}

func (r saleRow) FormattedAmount() string {
	return domain.FormatNaira(r.Amount)
}

func saleRows(sales []domain.Sale, loc *time.Location) []saleRow {
	rows := make([]saleRow, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, saleRow{
			Time:     sale.CreatedAt.In(loc).Format("15:04:05"),
			Customer: sale.CustomerName,
			Type:     strings.ToUpper(string(sale.Type)),
			Amount:   sale.TotalRevenue,
		})
	}
	return rows
}

func DailyFilename(summary domain.ReportSummary, meta Meta, ext string) string {
	return "daily_report_" + summary.GeneratedAt.In(meta.location()).Format(time.DateOnly) + "." + ext
}

func ProductFilename(report domain.ProductReport, ext string) string {
	return "product_report_" + strings.Join(strings.Fields(report.Name), "_") + "." + ext
}
