package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var nameHeaders = map[string]bool{
	"name":          true,
	"names":         true,
	"customer":      true,
	"customers":     true,
	"customer name": true,
	"customer_name": true,
}

// ParseCustomerSheet reads customer names from the first sheet of a workbook.
// A recognised header picks the column; without one, column A is used and the
// first row is treated as data.
func ParseCustomerSheet(reader io.Reader) ([]string, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}

	col, start := 0, 0
	for i, cell := range rows[0] {
		if nameHeaders[strings.ToLower(strings.TrimSpace(cell))] {
			col, start = i, 1
			break
		}
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows[start:] {
		if col >= len(row) {
			continue
		}
		if name := strings.TrimSpace(row[col]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ParseCustomerText splits pasted text into one name per line.
func ParseCustomerText(text string) []string {
	names := []string{}
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}
