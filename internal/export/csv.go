package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"shopos/backend/internal/domain"
)

func DailyCSV(w io.Writer, summary domain.ReportSummary, meta Meta) error {
	loc := meta.location()
	cw := csv.NewWriter(w)
	records := [][]string{
		{"Daily Sales Report", safeCell(meta.ShopName)},
		{"Generated", summary.GeneratedAt.In(loc).Format(time.RFC3339)},
		{"Window", string(summary.Window)},
		{"Total Revenue", strconv.FormatInt(summary.Revenue, 10)},
		{"Net Profit", strconv.FormatInt(summary.Profit, 10)},
		{"Total Sales", strconv.Itoa(summary.Count)},
		{},
		{"Time", "Customer", "Type", "Amount"},
	}
	for _, row := range saleRows(summary.Sales, loc) {
		records = append(records, []string{row.Time, safeCell(row.Customer), row.Type, strconv.FormatInt(row.Amount, 10)})
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

func ProductCSV(w io.Writer, report domain.ProductReport) error {
	cw := csv.NewWriter(w)
	return cw.WriteAll([][]string{
		{"Product Report", safeCell(report.Name)},
		{"Total Sold", strconv.Itoa(report.Quantity)},
		{"Total Revenue", strconv.FormatInt(report.Revenue, 10)},
	})
}

// safeCell stops spreadsheet apps from evaluating free text as a formula.
func safeCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}
