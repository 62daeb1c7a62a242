package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
)

const trendDays = 7

func ParseWindow(raw string) (domain.ReportWindow, error) {
	switch w := domain.ReportWindow(strings.ToLower(strings.TrimSpace(raw))); w {
	case "":
		return domain.WindowToday, nil
	case domain.WindowToday, domain.WindowWeek, domain.WindowMonth, domain.WindowAll:
		return w, nil
	}
	return "", fmt.Errorf("%w: unknown window %q", store.ErrInvalidInput, raw)
}

// windowStart returns the inclusive lower bound of window in the shop's
// timezone, or nil for all time. Weeks start on Sunday.
func windowStart(window domain.ReportWindow, now time.Time, loc *time.Location) (*time.Time, error) {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var start time.Time
	switch window {
	case domain.WindowToday, "":
		start = midnight
	case domain.WindowWeek:
		start = midnight.AddDate(0, 0, -int(local.Weekday()))
	case domain.WindowMonth:
		start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	case domain.WindowAll:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown window %q", store.ErrInvalidInput, window)
	}
	return &start, nil
}

// Sales returns the ledger slice matching the window and search term,
// newest first.
func (s *Service) Sales(ctx context.Context, q domain.ReportQuery) ([]domain.Sale, error) {
	if _, err := s.authorize(ctx, session.PermViewReports); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sales, _, err := s.filterSales(q)
	return sales, err
}

func (s *Service) filterSales(q domain.ReportQuery) ([]domain.Sale, *time.Time, error) {
	from, err := windowStart(q.Window, s.clock(), s.loc)
	if err != nil {
		return nil, nil, err
	}
	out := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if from != nil && sale.CreatedAt.Before(*from) {
			continue
		}
		if !sale.Matches(q.Search) {
			continue
		}
		out = append(out, sale)
	}
	return out, from, nil
}

func (s *Service) Summary(ctx context.Context, q domain.ReportQuery) (domain.ReportSummary, error) {
	if _, err := s.authorize(ctx, session.PermViewReports); err != nil {
		return domain.ReportSummary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sales, from, err := s.filterSales(q)
	if err != nil {
		return domain.ReportSummary{}, err
	}
	window := q.Window
	if window == "" {
		window = domain.WindowToday
	}

	summary := domain.ReportSummary{
		Window:          window,
		From:            from,
		GeneratedAt:     s.clock(),
		Count:           len(sales),
		OutstandingDebt: s.outstandingDebt(),
		Sales:           sales,
	}
	for _, sale := range sales {
		summary.Revenue += sale.TotalRevenue
		summary.Cost += sale.TotalCost
	}
	summary.Profit = summary.Revenue - summary.Cost
	summary.TopProducts = topProducts(sales, s.topN)
	return summary, nil
}

// topProducts groups line items by name and ranks them by revenue.
func topProducts(sales []domain.Sale, n int) []domain.ProductStat {
	byName := make(map[string]*domain.ProductStat)
	for _, sale := range sales {
		for _, item := range sale.Items {
			stat, ok := byName[item.Name]
			if !ok {
				stat = &domain.ProductStat{Name: item.Name}
				byName[item.Name] = stat
			}
			stat.Quantity += item.Quantity
			stat.Revenue += item.Price * int64(item.Quantity)
		}
	}

	stats := make([]domain.ProductStat, 0, len(byName))
	for _, stat := range byName {
		stats = append(stats, *stat)
	}
	slices.SortFunc(stats, func(a, b domain.ProductStat) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// Trend buckets the last seven days of sales by UTC calendar date, matched on
// the date prefix of each sale's timestamp. Oldest day first.
func (s *Service) Trend(ctx context.Context) ([]domain.TrendPoint, error) {
	if _, err := s.authorize(ctx, session.PermViewReports); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	points := make([]domain.TrendPoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		day := now.UTC().AddDate(0, 0, -i)
		point := domain.TrendPoint{
			Date:  day.Format(time.DateOnly),
			Label: day.Format("Mon"),
		}
		for _, sale := range s.sales {
			if !strings.HasPrefix(sale.CreatedAt.UTC().Format(time.RFC3339Nano), point.Date) {
				continue
			}
			point.Revenue += sale.TotalRevenue
			point.Profit += sale.Profit
			point.Count++
		}
		points = append(points, point)
	}
	return points, nil
}

func (s *Service) ProductReport(ctx context.Context, name string, window domain.ReportWindow) (domain.ProductReport, error) {
	if _, err := s.authorize(ctx, session.PermViewReports); err != nil {
		return domain.ProductReport{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ProductReport{}, fmt.Errorf("%w: product name is required", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sales, _, err := s.filterSales(domain.ReportQuery{Window: window})
	if err != nil {
		return domain.ProductReport{}, err
	}
	if window == "" {
		window = domain.WindowToday
	}
	report := domain.ProductReport{Name: name, Window: window}
	for _, sale := range sales {
		for _, item := range sale.Items {
			if item.Name != name {
				continue
			}
			report.Quantity += item.Quantity
			report.Revenue += item.Price * int64(item.Quantity)
		}
	}
	return report, nil
}
