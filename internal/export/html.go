package export

import (
	"html/template"
	"io"
	"time"

	"shopos/backend/internal/domain"
)

var dailyHTMLTmpl = template.Must(template.New("daily-report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Daily Sales Report</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    .summary { background: #f0fdf4; padding: 12px 16px; margin: 12px 0; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th { background: #10b981; color: #fff; text-align: left; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    .page { page-break-after: always; }
    .page:last-child { page-break-after: auto; }
  </style>
</head>
<body>
{{range $i, $page := .Pages}}<section class="page">
  {{if eq $i 0}}<h2>Daily Sales Report</h2>
  <p>{{$.ShopName}} | Generated: {{$.Generated}}</p>
  <div class="summary">
    <p>Total Revenue: {{$.Revenue}}</p>
    <p>Net Profit: {{$.Profit}}</p>
    <p>Total Sales: {{$.Count}}</p>
  </div>{{end}}
  <table>
    <thead><tr><th>Time</th><th>Customer</th><th>Type</th><th>Amount</th></tr></thead>
    <tbody>{{range $page}}<tr><td>{{.Time}}</td><td>{{.Customer}}</td><td>{{.Type}}</td><td style="text-align:right;">{{.FormattedAmount}}</td></tr>{{end}}</tbody>
  </table>
</section>
{{end}}</body>
</html>
`))

var productHTMLTmpl = template.Must(template.New("product-report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Product Report: {{.Name}}</title>
  <style>body { font-family: sans-serif; margin: 24px; }</style>
</head>
<body>
  <h2>Product Report: {{.Name}}</h2>
  <p>Total Sold: {{.Quantity}}</p>
  <p>Total Revenue: {{.Revenue}}</p>
</body>
</html>
`))

type dailyView struct {
	ShopName  string
	Generated string
	Revenue   string
	Profit    string
	Count     int
	Pages     [][]saleRow
}

func DailyHTML(w io.Writer, summary domain.ReportSummary, meta Meta) error {
	loc := meta.location()
	view := dailyView{
		ShopName:  meta.ShopName,
		Generated: summary.GeneratedAt.In(loc).Format(time.DateTime),
		Revenue:   domain.FormatNaira(summary.Revenue),
		Profit:    domain.FormatNaira(summary.Profit),
		Count:     summary.Count,
		Pages:     paginate(saleRows(summary.Sales, loc), rowsPerPage),
	}
	return dailyHTMLTmpl.Execute(w, view)
}

func ProductHTML(w io.Writer, report domain.ProductReport) error {
	return productHTMLTmpl.Execute(w, struct {
		Name     string
		Quantity int
		Revenue  string
	}{report.Name, report.Quantity, domain.FormatNaira(report.Revenue)})
}

// paginate always yields at least one page so the summary renders.
func paginate(rows []saleRow, size int) [][]saleRow {
	pages := [][]saleRow{}
	for len(rows) > size {
		pages = append(pages, rows[:size])
		rows = rows[size:]
	}
	return append(pages, rows)
}
