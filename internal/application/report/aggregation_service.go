package report

import (
	"context"
	"slices"
	"time"

	"github.com/erp/retail/internal/domain/report"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AggregationService turns an order snapshot into flat rows, rankings and a daily series.
// All methods are pure over their input and never mutate the orders passed in.
type AggregationService struct {
	defaultTopN int
	logger      *zap.Logger
}

// NewAggregationService creates a new aggregation service.
// A non-positive defaultTopN falls back to report.DefaultTopN.
func NewAggregationService(defaultTopN int, log *zap.Logger) *AggregationService {
	if defaultTopN <= 0 {
		defaultTopN = report.DefaultTopN
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AggregationService{
		defaultTopN: defaultTopN,
		logger:      log,
	}
}

// DefaultTopN returns the ranking size used when a caller passes topN <= 0
func (s *AggregationService) DefaultTopN() int {
	return s.defaultTopN
}

func (s *AggregationService) resolveTopN(topN int) int {
	if topN <= 0 {
		return s.defaultTopN
	}
	return topN
}

// Flatten emits one row per piece of every unit item and one row per weight item.
// Rows follow order sequence, then line sequence within the order.
func (s *AggregationService) Flatten(orders []*trade.Order) []report.LineRow {
	rows := make([]report.LineRow, 0, len(orders))
	for _, order := range orders {
		if order == nil {
			continue
		}
		base := report.LineRow{
			OrderNumber:  order.Number(),
			ClientNumber: order.Client().Number(),
			ClientFIO:    order.Client().FIO(),
			OrderDate:    report.DateOnly(order.Date()),
		}
		for _, item := range order.Items() {
			product := item.Product()
			row := base
			row.ProductName = product.Name()
			row.Price = product.Price()
			row.IsPerKg = product.IsPerKg()

			if item.IsWeight() {
				row.Quantity = item.Kilograms()
				row.Revenue = item.Revenue()
				rows = append(rows, row)
				continue
			}
			row.Quantity = decimal.NewFromInt(1)
			row.Revenue = product.Price()
			for range item.Units() {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// TopClientsByOrders ranks clients by the number of distinct orders they placed.
// Ties keep first-seen order.
func (s *AggregationService) TopClientsByOrders(orders []*trade.Order, topN int) []report.ClientOrderCount {
	return topClientsByOrders(s.Flatten(orders), s.resolveTopN(topN))
}

// TopClientsByRevenue ranks clients by summed line revenue
func (s *AggregationService) TopClientsByRevenue(orders []*trade.Order, topN int) []report.ClientRevenue {
	return topClientsByRevenue(s.Flatten(orders), s.resolveTopN(topN))
}

// TopProductsByRevenue ranks products, grouped by name, by summed line revenue
func (s *AggregationService) TopProductsByRevenue(orders []*trade.Order, topN int) []report.ProductRevenue {
	return topProductsByRevenue(s.Flatten(orders), s.resolveTopN(topN))
}

// DailyOrderDynamics counts distinct orders per calendar date, ascending.
// Days without orders are not filled in.
func (s *AggregationService) DailyOrderDynamics(orders []*trade.Order) []report.DailyOrderCount {
	return dailyOrderDynamics(s.Flatten(orders))
}

// Analyze computes every report over one snapshot
func (s *AggregationService) Analyze(ctx context.Context, orders []*trade.Order, topN int) *report.Summary {
	topN = s.resolveTopN(topN)
	rows := s.Flatten(orders)

	orderCount := 0
	total := decimal.Zero
	for _, order := range orders {
		if order == nil {
			continue
		}
		orderCount++
		total = total.Add(order.TotalCost())
	}

	summary := &report.Summary{
		TopN:                topN,
		OrderCount:          orderCount,
		TotalRevenue:        total,
		Rows:                rows,
		TopClientsByOrders:  topClientsByOrders(rows, topN),
		TopClientsByRevenue: topClientsByRevenue(rows, topN),
		TopProducts:         topProductsByRevenue(rows, topN),
		DailyOrders:         dailyOrderDynamics(rows),
	}

	logger.L(ctx).Debug("Order analysis computed",
		zap.Int("orders", orderCount),
		zap.Int("rows", len(rows)),
		zap.Int("top_n", topN),
	)
	if orderCount == 0 {
		s.logger.Info("No orders to analyze")
	}

	return summary
}

func topClientsByOrders(rows []report.LineRow, topN int) []report.ClientOrderCount {
	var result []report.ClientOrderCount
	index := make(map[report.ClientKey]int)
	seen := make(map[report.ClientKey]map[int]struct{})
	for _, row := range rows {
		key := report.ClientKey{ClientNumber: row.ClientNumber, ClientFIO: row.ClientFIO}
		i, ok := index[key]
		if !ok {
			i = len(result)
			index[key] = i
			seen[key] = make(map[int]struct{})
			result = append(result, report.ClientOrderCount{ClientKey: key})
		}
		if _, dup := seen[key][row.OrderNumber]; dup {
			continue
		}
		seen[key][row.OrderNumber] = struct{}{}
		result[i].OrderCount++
	}

	slices.SortStableFunc(result, func(a, b report.ClientOrderCount) int {
		return b.OrderCount - a.OrderCount
	})
	return truncate(result, topN)
}

func topClientsByRevenue(rows []report.LineRow, topN int) []report.ClientRevenue {
	var result []report.ClientRevenue
	index := make(map[report.ClientKey]int)
	for _, row := range rows {
		key := report.ClientKey{ClientNumber: row.ClientNumber, ClientFIO: row.ClientFIO}
		i, ok := index[key]
		if !ok {
			i = len(result)
			index[key] = i
			result = append(result, report.ClientRevenue{ClientKey: key, Revenue: decimal.Zero})
		}
		result[i].Revenue = result[i].Revenue.Add(row.Revenue)
	}
	for i := range result {
		result[i].Revenue = result[i].Revenue.Round(valueobject.MoneyPlaces)
	}

	slices.SortStableFunc(result, func(a, b report.ClientRevenue) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	return truncate(result, topN)
}

func topProductsByRevenue(rows []report.LineRow, topN int) []report.ProductRevenue {
	var result []report.ProductRevenue
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.ProductName]
		if !ok {
			i = len(result)
			index[row.ProductName] = i
			result = append(result, report.ProductRevenue{ProductName: row.ProductName, Revenue: decimal.Zero})
		}
		result[i].Revenue = result[i].Revenue.Add(row.Revenue)
	}
	for i := range result {
		result[i].Revenue = result[i].Revenue.Round(valueobject.MoneyPlaces)
	}

	slices.SortStableFunc(result, func(a, b report.ProductRevenue) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	return truncate(result, topN)
}

// calendarDay keys a date by year, month and day regardless of location
type calendarDay struct {
	year  int
	month time.Month
	day   int
}

func dailyOrderDynamics(rows []report.LineRow) []report.DailyOrderCount {
	result := []report.DailyOrderCount{}
	index := make(map[calendarDay]int)
	seen := make(map[calendarDay]map[int]struct{})
	for _, row := range rows {
		var day calendarDay
		day.year, day.month, day.day = row.OrderDate.Date()
		i, ok := index[day]
		if !ok {
			i = len(result)
			index[day] = i
			seen[day] = make(map[int]struct{})
			result = append(result, report.DailyOrderCount{Date: report.DateOnly(row.OrderDate)})
		}
		if _, dup := seen[day][row.OrderNumber]; dup {
			continue
		}
		seen[day][row.OrderNumber] = struct{}{}
		result[i].OrderCount++
	}

	slices.SortStableFunc(result, func(a, b report.DailyOrderCount) int {
		return a.Date.Compare(b.Date)
	})
	return result
}

func truncate[T any](items []T, n int) []T {
	if items == nil {
		return []T{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
