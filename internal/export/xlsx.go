package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"shopos/backend/internal/domain"
)

const (
	dailySheet   = "Daily Report"
	productSheet = "Product Report"
	nairaFormat  = `"₦"#,##0`
)

func DailyXLSX(w io.Writer, summary domain.ReportSummary, meta Meta) error {
	loc := meta.location()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dailySheet); err != nil {
		return err
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	summaryRows := [][]any{
		{"Daily Sales Report", meta.ShopName},
		{"Generated", summary.GeneratedAt.In(loc).Format(time.DateTime)},
		{"Total Revenue", summary.Revenue},
		{"Net Profit", summary.Profit},
		{"Total Sales", summary.Count},
	}
	for i, row := range summaryRows {
		if err := setRow(f, dailySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(dailySheet, "A1", "A5", styles.bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(dailySheet, "B3", "B4", styles.naira); err != nil {
		return err
	}

	const headerRow = 7
	if err := setRow(f, dailySheet, headerRow, []any{"Time", "Customer", "Type", "Amount"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(dailySheet, "A7", "D7", styles.header); err != nil {
		return err
	}
	rows := saleRows(summary.Sales, loc)
	for i, row := range rows {
		if err := setRow(f, dailySheet, headerRow+1+i, []any{row.Time, row.Customer, row.Type, row.Amount}); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		last := fmt.Sprintf("D%d", headerRow+len(rows))
		if err := f.SetCellStyle(dailySheet, "D8", last, styles.naira); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(dailySheet, "A", "D", 18); err != nil {
		return err
	}
	return f.Write(w)
}

func ProductXLSX(w io.Writer, report domain.ProductReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productSheet); err != nil {
		return err
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	rows := [][]any{
		{"Product Report", report.Name},
		{"Total Sold", report.Quantity},
		{"Total Revenue", report.Revenue},
	}
	for i, row := range rows {
		if err := setRow(f, productSheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(productSheet, "B3", "B3", styles.naira); err != nil {
		return err
	}
	return f.Write(w)
}

type sheetStyles struct {
	bold   int
	header int
	naira  int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var (
		s   sheetStyles
		err error
	)
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"10B981"}},
	}); err != nil {
		return s, err
	}
	format := nairaFormat
	if s.naira, err = f.NewStyle(&excelize.Style{CustomNumFmt: &format}); err != nil {
		return s, err
	}
	return s, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
