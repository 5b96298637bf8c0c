package report

import (
	"context"
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/report"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	ivanov, petrov, sidorov *partner.Client
	laptop, mouse, sugar    *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := func(n int, fio string) *partner.Client {
		c, err := partner.NewClient(n, fio, "", "")
		require.NoError(t, err)
		return c
	}
	product := func(name string, price float64, perKg bool) *catalog.Product {
		p, err := catalog.NewProductFromFloat(name, price, perKg)
		require.NoError(t, err)
		return p
	}
	return &fixture{
		ivanov:  client(1, "Иванов"),
		petrov:  client(2, "Петров"),
		sidorov: client(3, "Сидоров"),
		laptop:  product("Ноутбук", 75000, false),
		mouse:   product("Мышь", 500, false),
		sugar:   product("Сахар", 50, true),
	}
}

func day(d, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 30, 0, 0, time.UTC)
}

func mustOrder(t *testing.T, b *trade.OrderBuilder) *trade.Order {
	t.Helper()
	o, err := b.Build()
	require.NoError(t, err)
	return o
}

func TestFlatten(t *testing.T) {
	f := newFixture(t)
	svc := NewAggregationService(0, nil)

	order := mustOrder(t, trade.NewOrderBuilder(7, f.ivanov).At(day(1, 14)).
		AddUnits(f.laptop, 2).
		AddUnit(f.mouse).
		SetWeight(f.sugar, decimal.RequireFromString("3.5")))

	rows := svc.Flatten([]*trade.Order{order})
	require.Len(t, rows, 4)

	for _, row := range rows[:2] {
		assert.Equal(t, "Ноутбук", row.ProductName)
		assert.True(t, row.Quantity.Equal(decimal.NewFromInt(1)))
		assert.True(t, row.Revenue.Equal(decimal.NewFromInt(75000)))
		assert.False(t, row.IsPerKg)
	}
	assert.Equal(t, "Мышь", rows[2].ProductName)

	weight := rows[3]
	assert.Equal(t, "Сахар", weight.ProductName)
	assert.True(t, weight.IsPerKg)
	assert.True(t, weight.Quantity.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, weight.Revenue.Equal(decimal.NewFromInt(175)))

	assert.Equal(t, 7, weight.OrderNumber)
	assert.Equal(t, 1, weight.ClientNumber)
	assert.Equal(t, "Иванов", weight.ClientFIO)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), weight.OrderDate)

	t.Run("row revenue adds up to the order total", func(t *testing.T) {
		sum := decimal.Zero
		for _, r := range rows {
			sum = sum.Add(r.Revenue)
		}
		assert.True(t, sum.Equal(order.TotalCost()))
	})

	t.Run("nil orders are skipped", func(t *testing.T) {
		assert.Len(t, svc.Flatten([]*trade.Order{nil, order}), 4)
	})
}

func TestTopClientsByOrders(t *testing.T) {
	f := newFixture(t)
	svc := NewAggregationService(0, nil)

	t.Run("counts distinct orders, not rows", func(t *testing.T) {
		orders := []*trade.Order{
			mustOrder(t, trade.NewOrderBuilder(1, f.petrov).At(day(1, 10)).
				AddUnits(f.mouse, 3).
				AddUnit(f.laptop).
				SetWeight(f.sugar, decimal.NewFromInt(1))),
			mustOrder(t, trade.NewOrderBuilder(2, f.ivanov).At(day(1, 11)).AddUnit(f.mouse)),
			mustOrder(t, trade.NewOrderBuilder(3, f.ivanov).At(day(2, 11)).AddUnit(f.mouse)),
		}

		top := svc.TopClientsByOrders(orders, 0)
		require.Len(t, top, 2)
		assert.Equal(t, 1, top[0].ClientNumber)
		assert.Equal(t, 2, top[0].OrderCount)
		assert.Equal(t, 2, top[1].ClientNumber)
		assert.Equal(t, 1, top[1].OrderCount)
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		orders := []*trade.Order{
			mustOrder(t, trade.NewOrderBuilder(1, f.sidorov).At(day(1, 10)).AddUnit(f.mouse)),
			mustOrder(t, trade.NewOrderBuilder(2, f.ivanov).At(day(1, 11)).AddUnit(f.mouse)),
			mustOrder(t, trade.NewOrderBuilder(3, f.petrov).At(day(1, 12)).AddUnit(f.mouse)),
		}

		top := svc.TopClientsByOrders(orders, 0)
		require.Len(t, top, 3)
		assert.Equal(t, []int{3, 1, 2}, []int{top[0].ClientNumber, top[1].ClientNumber, top[2].ClientNumber})
	})

	t.Run("top n truncates", func(t *testing.T) {
		orders := []*trade.Order{
			mustOrder(t, trade.NewOrderBuilder(1, f.sidorov).At(day(1, 10)).AddUnit(f.mouse)),
			mustOrder(t, trade.NewOrderBuilder(2, f.ivanov).At(day(1, 11)).AddUnit(f.mouse)),
		}
		assert.Len(t, svc.TopClientsByOrders(orders, 1), 1)
	})
}

func TestTopByRevenue(t *testing.T) {
	f := newFixture(t)
	svc := NewAggregationService(0, nil)

	orders := []*trade.Order{
		mustOrder(t, trade.NewOrderBuilder(1, f.ivanov).At(day(1, 10)).
			AddUnit(f.mouse).
			SetWeight(f.sugar, decimal.RequireFromString("0.333"))),
		mustOrder(t, trade.NewOrderBuilder(2, f.petrov).At(day(1, 11)).AddUnit(f.laptop)),
		mustOrder(t, trade.NewOrderBuilder(3, f.ivanov).At(day(2, 9)).AddUnits(f.mouse, 2)),
	}

	t.Run("clients", func(t *testing.T) {
		top := svc.TopClientsByRevenue(orders, 0)
		require.Len(t, top, 2)
		assert.Equal(t, "Петров", top[0].ClientFIO)
		assert.True(t, top[0].Revenue.Equal(decimal.NewFromInt(75000)))
		assert.Equal(t, "Иванов", top[1].ClientFIO)
		// 500 + 50*0.333 + 2*500
		assert.True(t, top[1].Revenue.Equal(decimal.RequireFromString("1516.65")), top[1].Revenue.String())
	})

	t.Run("products grouped by name", func(t *testing.T) {
		top := svc.TopProductsByRevenue(orders, 0)
		require.Len(t, top, 3)
		assert.Equal(t, "Ноутбук", top[0].ProductName)
		assert.Equal(t, "Мышь", top[1].ProductName)
		assert.True(t, top[1].Revenue.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, "Сахар", top[2].ProductName)
		assert.True(t, top[2].Revenue.Equal(decimal.RequireFromString("16.65")))
	})

	t.Run("input is not mutated", func(t *testing.T) {
		before := orders[0].Items()
		_ = svc.TopProductsByRevenue(orders, 1)
		assert.Equal(t, before, orders[0].Items())
		assert.Equal(t, 1, orders[0].Number())
	})
}

func TestDailyOrderDynamics(t *testing.T) {
	f := newFixture(t)
	svc := NewAggregationService(0, nil)

	orders := []*trade.Order{
		mustOrder(t, trade.NewOrderBuilder(1, f.ivanov).At(day(5, 18)).AddUnits(f.mouse, 4)),
		mustOrder(t, trade.NewOrderBuilder(2, f.petrov).At(day(1, 9)).AddUnit(f.mouse)),
		mustOrder(t, trade.NewOrderBuilder(3, f.petrov).At(day(5, 8)).AddUnit(f.laptop)),
	}

	series := svc.DailyOrderDynamics(orders)
	require.Len(t, series, 2, "days without orders are not filled")
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.Equal(t, 1, series[0].OrderCount)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), series[1].Date)
	assert.Equal(t, 2, series[1].OrderCount)

	t.Run("one calendar day across offsets", func(t *testing.T) {
		moscow := time.FixedZone("MSK", 3*60*60)
		mixed := []*trade.Order{
			mustOrder(t, trade.NewOrderBuilder(1, f.ivanov).At(time.Date(2024, 5, 1, 10, 0, 0, 0, moscow)).AddUnit(f.mouse)),
			mustOrder(t, trade.NewOrderBuilder(2, f.petrov).At(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)).AddUnit(f.mouse)),
		}

		series := svc.DailyOrderDynamics(mixed)
		require.Len(t, series, 1)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), series[0].Date)
		assert.Equal(t, 2, series[0].OrderCount)
	})

	t.Run("late evening stays on its own calendar day", func(t *testing.T) {
		moscow := time.FixedZone("MSK", 3*60*60)
		// 23:30 MSK is 20:30 UTC on the same day; 01:00 MSK is the previous day in UTC
		mixed := []*trade.Order{
			mustOrder(t, trade.NewOrderBuilder(1, f.ivanov).At(time.Date(2024, 5, 2, 1, 0, 0, 0, moscow)).AddUnit(f.mouse)),
			mustOrder(t, trade.NewOrderBuilder(2, f.petrov).At(time.Date(2024, 5, 1, 23, 30, 0, 0, moscow)).AddUnit(f.mouse)),
		}

		series := svc.DailyOrderDynamics(mixed)
		require.Len(t, series, 2)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), series[0].Date)
		assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), series[1].Date)
	})
}

func TestDateOnly(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	a := report.DateOnly(time.Date(2024, 5, 1, 10, 0, 0, 0, moscow))
	b := report.DateOnly(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	assert.True(t, a.Equal(b))
	assert.Equal(t, time.UTC, a.Location())
}

func TestEmptyInput(t *testing.T) {
	svc := NewAggregationService(0, nil)

	for _, orders := range [][]*trade.Order{nil, {}} {
		assert.Empty(t, svc.Flatten(orders))
		assert.NotNil(t, svc.TopClientsByOrders(orders, 0))
		assert.Empty(t, svc.TopClientsByOrders(orders, 0))
		assert.NotNil(t, svc.TopClientsByRevenue(orders, 0))
		assert.NotNil(t, svc.TopProductsByRevenue(orders, 0))
		assert.NotNil(t, svc.DailyOrderDynamics(orders))
		assert.Empty(t, svc.DailyOrderDynamics(orders))
	}
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)

	orders := make([]*trade.Order, 0, 7)
	clients := []*partner.Client{f.ivanov, f.petrov, f.sidorov}
	for i := 1; i <= 7; i++ {
		orders = append(orders, mustOrder(t, trade.NewOrderBuilder(i, clients[i%3]).At(day(i, 12)).AddUnit(f.mouse)))
	}

	t.Run("uses the default top n", func(t *testing.T) {
		svc := NewAggregationService(2, nil)
		assert.Equal(t, 2, svc.DefaultTopN())

		summary := svc.Analyze(context.Background(), orders, 0)
		assert.Equal(t, 2, summary.TopN)
		assert.Equal(t, 7, summary.OrderCount)
		assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(3500)))
		assert.Len(t, summary.Rows, 7)
		assert.Len(t, summary.TopClientsByOrders, 2)
		assert.Len(t, summary.TopClientsByRevenue, 2)
		assert.Len(t, summary.TopProducts, 1)
		assert.Len(t, summary.DailyOrders, 7)
		assert.False(t, summary.IsEmpty())
	})

	t.Run("non-positive default falls back", func(t *testing.T) {
		assert.Equal(t, report.DefaultTopN, NewAggregationService(-1, nil).DefaultTopN())
	})

	t.Run("explicit top n wins", func(t *testing.T) {
		summary := NewAggregationService(2, nil).Analyze(context.Background(), orders, 3)
		assert.Len(t, summary.TopClientsByOrders, 3)
	})

	t.Run("empty snapshot is reported, not an error", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		svc := NewAggregationService(0, zap.New(core))

		summary := svc.Analyze(context.Background(), nil, 0)
		assert.True(t, summary.IsEmpty())
		assert.True(t, summary.TotalRevenue.IsZero())
		assert.Equal(t, 1, logs.FilterMessage("No orders to analyze").Len())
	})
}
