package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
)

func sell(t *testing.T, svc *Service, saleType domain.SaleType, customer string, lines map[string]int) domain.Sale {
	t.Helper()
	ctx := adminCtx()
	for productID, qty := range lines {
		_, err := svc.AddLine(ctx, domain.CartLineRequest{ProductID: productID, Quantity: qty})
		require.NoError(t, err)
	}
	resp, err := svc.FinalizeSale(ctx, domain.CheckoutRequest{CustomerName: customer, SaleType: saleType})
	require.NoError(t, err)
	require.True(t, resp.Finalized)
	return *resp.Sale
}

// seedLedger records one cash sale on Wednesday 12 March and one credit sale
// six days later, leaving the clock on Tuesday 18 March.
func seedLedger(t *testing.T) (*Service, domain.Sale, domain.Sale) {
	t.Helper()
	svc, _, clock := newTestService(t)
	first := sell(t, svc, domain.SaleTypeCash, "Regular A", map[string]int{"p1": 4})
	clock.Advance(6 * 24 * time.Hour)
	second := sell(t, svc, domain.SaleTypeCredit, "Mama Uche", map[string]int{"p4": 1, "p8": 10})
	return svc, first, second
}

func TestSummaryWindows(t *testing.T) {
	svc, first, second := seedLedger(t)

	cases := []struct {
		window domain.ReportWindow
		want   []string
	}{
		{domain.WindowToday, []string{second.ID}},
		{domain.WindowWeek, []string{second.ID}},
		{domain.WindowMonth, []string{second.ID, first.ID}},
		{domain.WindowAll, []string{second.ID, first.ID}},
	}
	for _, tc := range cases {
		t.Run(string(tc.window), func(t *testing.T) {
			summary, err := svc.Summary(superCtx(), domain.ReportQuery{Window: tc.window})
			require.NoError(t, err)
			ids := make([]string, 0, len(summary.Sales))
			for _, sale := range summary.Sales {
				ids = append(ids, sale.ID)
			}
			assert.Equal(t, tc.want, ids)
			assert.Equal(t, len(tc.want), summary.Count)
		})
	}
}

func TestSummaryTotalsAndTopProducts(t *testing.T) {
	svc, _, _ := seedLedger(t)

	summary, err := svc.Summary(superCtx(), domain.ReportQuery{Window: domain.WindowMonth})
	require.NoError(t, err)

	assert.Equal(t, int64(2000+4000+500), summary.Revenue)
	assert.Equal(t, int64(1600+3500+300), summary.Cost)
	assert.Equal(t, summary.Revenue-summary.Cost, summary.Profit)
	assert.Equal(t, int64(4500), summary.OutstandingDebt)
	require.NotNil(t, summary.From)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, lagos).Unix(), summary.From.Unix())

	assert.Equal(t, []domain.ProductStat{
		{Name: "Cooking Oil (L)", Quantity: 1, Revenue: 4000},
		{Name: "Indomie Noodles", Quantity: 4, Revenue: 2000},
		{Name: "Maggi Cubes", Quantity: 10, Revenue: 500},
	}, summary.TopProducts)
}

func TestOutstandingDebtIgnoresWindow(t *testing.T) {
	svc, _, clock := newTestService(t)
	sell(t, svc, domain.SaleTypeCredit, "Mr. Tunde", map[string]int{"p3": 2})
	clock.Advance(40 * 24 * time.Hour)

	summary, err := svc.Summary(superCtx(), domain.ReportQuery{Window: domain.WindowToday})
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
	assert.Equal(t, int64(3000), summary.OutstandingDebt)
}

func TestSalesSearch(t *testing.T) {
	svc, first, second := seedLedger(t)

	byItem, err := svc.Sales(superCtx(), domain.ReportQuery{Window: domain.WindowAll, Search: "cooking"})
	require.NoError(t, err)
	require.Len(t, byItem, 1)
	assert.Equal(t, second.ID, byItem[0].ID)

	byCustomer, err := svc.Sales(superCtx(), domain.ReportQuery{Window: domain.WindowAll, Search: " REGULAR "})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, first.ID, byCustomer[0].ID)
}

func TestTrendCoversSevenDays(t *testing.T) {
	svc, first, second := seedLedger(t)

	points, err := svc.Trend(superCtx())
	require.NoError(t, err)
	require.Len(t, points, 7)

	assert.Equal(t, "2025-03-12", points[0].Date)
	assert.Equal(t, "Wed", points[0].Label)
	assert.Equal(t, first.TotalRevenue, points[0].Revenue)
	assert.Equal(t, 1, points[0].Count)

	assert.Equal(t, "2025-03-18", points[6].Date)
	assert.Equal(t, "Tue", points[6].Label)
	assert.Equal(t, second.TotalRevenue, points[6].Revenue)
	assert.Equal(t, second.Profit, points[6].Profit)

	for _, p := range points[1:6] {
		assert.Zero(t, p.Count, p.Date)
	}
}

func TestProductReport(t *testing.T) {
	svc, _, _ := seedLedger(t)

	report, err := svc.ProductReport(superCtx(), "Indomie Noodles", domain.WindowAll)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Quantity)
	assert.Equal(t, int64(2000), report.Revenue)

	report, err = svc.ProductReport(superCtx(), "Indomie Noodles", domain.WindowToday)
	require.NoError(t, err)
	assert.Zero(t, report.Quantity)

	_, err = svc.ProductReport(superCtx(), "  ", domain.WindowAll)
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestReportsRequireSuperAdmin(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Summary(adminCtx(), domain.ReportQuery{Window: domain.WindowAll})
	assert.ErrorIs(t, err, session.ErrForbidden)
	_, err = svc.Trend(adminCtx())
	assert.ErrorIs(t, err, session.ErrForbidden)
	_, err = svc.Sales(context.Background(), domain.ReportQuery{})
	assert.ErrorIs(t, err, session.ErrForbidden)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, domain.WindowToday, w)

	w, err = ParseWindow(" WEEK ")
	require.NoError(t, err)
	assert.Equal(t, domain.WindowWeek, w)

	_, err = ParseWindow("year")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestTrendLabelFollowsBucketDate(t *testing.T) {
	svc, _, clock := newTestService(t)
	// 23:30 UTC on Tuesday 11 March is already Wednesday in the shop.
	clock.Advance(-(10*time.Hour + 30*time.Minute))
	sell(t, svc, domain.SaleTypeCash, "Regular A", map[string]int{"p1": 1})

	points, err := svc.Trend(superCtx())
	require.NoError(t, err)
	last := points[len(points)-1]
	assert.Equal(t, "2025-03-11", last.Date)
	assert.Equal(t, "Tue", last.Label)
	assert.Equal(t, 1, last.Count)
}
