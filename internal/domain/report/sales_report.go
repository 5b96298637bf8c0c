package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTopN is the ranking size used when the caller does not ask for one
const DefaultTopN = 5

// LineRow is one flattened line item of an order.
// This is a read model optimized for grouping; unit items flatten to one row per piece.
type LineRow struct {
	OrderNumber  int             `json:"order_number"`
	ClientNumber int             `json:"client_number"`
	ClientFIO    string          `json:"client_fio"`
	ProductName  string          `json:"product_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	Revenue      decimal.Decimal `json:"revenue"`
	IsPerKg      bool            `json:"is_per_kg"`
	OrderDate    time.Time       `json:"order_date"` // Date only, time of day discarded
}

// ClientKey groups rows by client
type ClientKey struct {
	ClientNumber int    `json:"client_number"`
	ClientFIO    string `json:"client_fio"`
}

// ClientOrderCount is a client ranked by the number of distinct orders
type ClientOrderCount struct {
	ClientKey
	OrderCount int `json:"order_count"`
}

// ClientRevenue is a client ranked by total revenue
type ClientRevenue struct {
	ClientKey
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductRevenue is a product ranked by total revenue
type ProductRevenue struct {
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DailyOrderCount is one point of the daily order series
type DailyOrderCount struct {
	Date       time.Time `json:"date"`
	OrderCount int       `json:"order_count"`
}

// Summary bundles every aggregation over one order snapshot
type Summary struct {
	TopN                int                `json:"top_n"`
	OrderCount          int                `json:"order_count"`
	TotalRevenue        decimal.Decimal    `json:"total_revenue"`
	Rows                []LineRow          `json:"rows"`
	TopClientsByOrders  []ClientOrderCount `json:"top_clients_by_orders"`
	TopClientsByRevenue []ClientRevenue    `json:"top_clients_by_revenue"`
	TopProducts         []ProductRevenue   `json:"top_products"`
	DailyOrders         []DailyOrderCount  `json:"daily_orders"`
}

// IsEmpty returns true if the summary was computed over no orders
func (s *Summary) IsEmpty() bool {
	return s.OrderCount == 0
}

// DateOnly returns the calendar date of t, as seen in t's own location, at UTC
// midnight. Dates taken from different offsets compare and group by calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
