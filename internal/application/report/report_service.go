package report

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/report"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderSource supplies the order snapshot reports are computed over
type OrderSource interface {
	Orders() []*trade.Order
}

// ReportService provides application-level report operations over a repository
type ReportService struct {
	orders      OrderSource
	aggregation *AggregationService
}

// NewReportService creates a new ReportService
func NewReportService(orders OrderSource, aggregation *AggregationService) *ReportService {
	if aggregation == nil {
		aggregation = NewAggregationService(0, nil)
	}
	return &ReportService{
		orders:      orders,
		aggregation: aggregation,
	}
}

// SalesReportFilter restricts which orders a report covers
type SalesReportFilter struct {
	StartDate *time.Time // inclusive, compared by calendar date
	EndDate   *time.Time // inclusive, compared by calendar date
	TopN      int
}

// Matches reports whether an order falls inside the filter's date range
func (f SalesReportFilter) Matches(o *trade.Order) bool {
	day := report.DateOnly(o.Date())
	if f.StartDate != nil && day.Before(report.DateOnly(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && day.After(report.DateOnly(*f.EndDate)) {
		return false
	}
	return true
}

// SalesSummaryResponse represents the sales summary response
type SalesSummaryResponse struct {
	TotalOrders      int     `json:"total_orders"`
	TotalLines       int     `json:"total_lines"`
	TotalSalesAmount float64 `json:"total_sales_amount"`
	AvgOrderValue    float64 `json:"avg_order_value"`
}

// DailyOrderTrendResponse represents one day of the order series
type DailyOrderTrendResponse struct {
	Date       time.Time `json:"date"`
	OrderCount int       `json:"order_count"`
}

// ProductSalesRankingResponse represents product sales ranking
type ProductSalesRankingResponse struct {
	Rank        int     `json:"rank"`
	ProductName string  `json:"product_name"`
	TotalAmount float64 `json:"total_amount"`
}

// CustomerSalesRankingResponse represents a client ranked by revenue or order count
type CustomerSalesRankingResponse struct {
	Rank         int     `json:"rank"`
	ClientNumber int     `json:"client_number"`
	ClientFIO    string  `json:"client_fio"`
	TotalOrders  int     `json:"total_orders,omitempty"`
	TotalAmount  float64 `json:"total_amount,omitempty"`
}

// Analyze runs the full analysis over the filtered orders
func (s *ReportService) Analyze(ctx context.Context, filter SalesReportFilter) *report.Summary {
	return s.aggregation.Analyze(ctx, s.filtered(filter), filter.TopN)
}

// GetSalesSummary returns order count and revenue totals
func (s *ReportService) GetSalesSummary(ctx context.Context, filter SalesReportFilter) *SalesSummaryResponse {
	summary := s.Analyze(ctx, filter)

	avg := decimal.Zero
	if summary.OrderCount > 0 {
		avg = summary.TotalRevenue.Div(decimal.NewFromInt(int64(summary.OrderCount))).Round(valueobject.MoneyPlaces)
	}
	return &SalesSummaryResponse{
		TotalOrders:      summary.OrderCount,
		TotalLines:       len(summary.Rows),
		TotalSalesAmount: toFloat64(summary.TotalRevenue),
		AvgOrderValue:    toFloat64(avg),
	}
}

// GetDailyOrderTrend returns the number of distinct orders per day
func (s *ReportService) GetDailyOrderTrend(ctx context.Context, filter SalesReportFilter) []DailyOrderTrendResponse {
	trend := s.aggregation.DailyOrderDynamics(s.filtered(filter))

	responses := make([]DailyOrderTrendResponse, len(trend))
	for i, t := range trend {
		responses[i] = DailyOrderTrendResponse{
			Date:       t.Date,
			OrderCount: t.OrderCount,
		}
	}
	return responses
}

// GetProductSalesRanking returns top products by revenue
func (s *ReportService) GetProductSalesRanking(ctx context.Context, filter SalesReportFilter) []ProductSalesRankingResponse {
	rankings := s.aggregation.TopProductsByRevenue(s.filtered(filter), filter.TopN)

	responses := make([]ProductSalesRankingResponse, len(rankings))
	for i, r := range rankings {
		responses[i] = ProductSalesRankingResponse{
			Rank:        i + 1,
			ProductName: r.ProductName,
			TotalAmount: toFloat64(r.Revenue),
		}
	}
	return responses
}

// GetCustomerSalesRanking returns top clients by revenue
func (s *ReportService) GetCustomerSalesRanking(ctx context.Context, filter SalesReportFilter) []CustomerSalesRankingResponse {
	rankings := s.aggregation.TopClientsByRevenue(s.filtered(filter), filter.TopN)

	responses := make([]CustomerSalesRankingResponse, len(rankings))
	for i, r := range rankings {
		responses[i] = CustomerSalesRankingResponse{
			Rank:         i + 1,
			ClientNumber: r.ClientNumber,
			ClientFIO:    r.ClientFIO,
			TotalAmount:  toFloat64(r.Revenue),
		}
	}
	return responses
}

// GetCustomerOrderRanking returns top clients by number of orders
func (s *ReportService) GetCustomerOrderRanking(ctx context.Context, filter SalesReportFilter) []CustomerSalesRankingResponse {
	rankings := s.aggregation.TopClientsByOrders(s.filtered(filter), filter.TopN)

	responses := make([]CustomerSalesRankingResponse, len(rankings))
	for i, r := range rankings {
		responses[i] = CustomerSalesRankingResponse{
			Rank:         i + 1,
			ClientNumber: r.ClientNumber,
			ClientFIO:    r.ClientFIO,
			TotalOrders:  r.OrderCount,
		}
	}
	return responses
}

func (s *ReportService) filtered(filter SalesReportFilter) []*trade.Order {
	all := s.orders.Orders()
	if filter.StartDate == nil && filter.EndDate == nil {
		return all
	}
	orders := make([]*trade.Order, 0, len(all))
	for _, o := range all {
		if filter.Matches(o) {
			orders = append(orders, o)
		}
	}
	return orders
}

// toFloat64 converts decimal to float64
func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
