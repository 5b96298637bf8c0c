// Package demo fills a store with generated clients and orders.
package demo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultDays        = 30
	defaultUnitGoods   = 5
	maxUnitLines       = 3
	maxWeightLines     = 3
	maxUnitsPerLine    = 4
	minKilograms       = 0.1
	maxKilograms       = 5.0
	kilogramPrecision  = 3
	minUnitPrice       = 100
	maxUnitPrice       = 90000
	productNameRetries = 10
)

// Store is what the seeder writes to
type Store interface {
	partner.ClientRepository
	trade.OrderRepository
	catalog.ProductRepository
}

// Result counts what a Seed call created
type Result struct {
	Clients  int
	Orders   int
	Products int
}

// Seeder generates valid demo data
type Seeder struct {
	store  Store
	faker  *gofakeit.Faker
	logger *zap.Logger
	end    time.Time
	days   int
}

// Option configures a Seeder
type Option func(*Seeder)

// WithSeed makes the generated data reproducible
func WithSeed(seed uint64) Option {
	return func(s *Seeder) {
		s.faker = gofakeit.New(seed)
	}
}

// WithPeriod dates generated orders within the days before end
func WithPeriod(end time.Time, days int) Option {
	return func(s *Seeder) {
		s.end = end
		if days > 0 {
			s.days = days
		}
	}
}

// NewSeeder creates a seeder with a random seed over the last 30 days
func NewSeeder(store Store, log *zap.Logger, opts ...Option) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Seeder{
		store:  store,
		faker:  gofakeit.New(0),
		logger: log,
		end:    time.Now(),
		days:   defaultDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed creates the given number of clients, then orders spread over existing clients.
// When the catalog has no weighed goods the default spice catalog is added first.
func (s *Seeder) Seed(ctx context.Context, clients, orders int) (*Result, error) {
	if clients < 0 || orders < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Counts must not be negative, got %d clients and %d orders", clients, orders))
	}

	result := &Result{}
	for range clients {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := s.store.CreateClient(s.fakeFIO(), s.fakePhone(), s.fakeEmail()); err != nil {
			return result, err
		}
		result.Clients++
	}

	if orders == 0 {
		s.logResult(ctx, result)
		return result, nil
	}

	known := s.store.Clients()
	if len(known) == 0 {
		return result, shared.NewDomainError(shared.CodeInvalidInput, "Cannot seed orders without clients")
	}

	weighed, err := s.ensureWeighedGoods(result)
	if err != nil {
		return result, err
	}
	unitGoods := s.unitGoods()

	for range orders {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		client := known[s.faker.IntRange(0, len(known)-1)]
		items, err := s.fakeItems(unitGoods, weighed)
		if err != nil {
			return result, err
		}
		if _, err := s.store.CreateOrder(client.Number(), items, s.fakeDate()); err != nil {
			return result, err
		}
		result.Orders++
	}

	s.logResult(ctx, result)
	return result, nil
}

func (s *Seeder) logResult(ctx context.Context, result *Result) {
	logger.WithLogger(ctx, s.logger).Info("Demo data seeded",
		zap.Int("clients", result.Clients),
		zap.Int("orders", result.Orders),
		zap.Int("products", result.Products),
	)
}

func (s *Seeder) fakeFIO() string {
	return fmt.Sprintf("%s %s", s.faker.LastName(), s.faker.FirstName())
}

func (s *Seeder) fakePhone() string {
	return s.faker.Numerify("+7##########")
}

// fakeEmail returns "" when the generated address does not pass client validation
func (s *Seeder) fakeEmail() string {
	email := strings.ToLower(s.faker.Email())
	if !partner.ValidateEmail(email) {
		return ""
	}
	return email
}

func (s *Seeder) fakeDate() time.Time {
	start := s.end.AddDate(0, 0, -s.days)
	return s.faker.DateRange(start, s.end)
}

func (s *Seeder) ensureWeighedGoods(result *Result) ([]*catalog.Product, error) {
	weighed := perKg(s.store.Catalog().Products())
	if len(weighed) > 0 {
		return weighed, nil
	}
	for _, p := range catalog.DefaultSpiceCatalog().Products() {
		if err := s.store.AddProduct(p); err != nil {
			return nil, err
		}
		result.Products++
	}
	return perKg(s.store.Catalog().Products()), nil
}

// unitGoods returns the catalogued per-unit products plus generated ones up to a small pool
func (s *Seeder) unitGoods() []*catalog.Product {
	cat := s.store.Catalog()
	var goods []*catalog.Product
	for _, p := range cat.Products() {
		if !p.IsPerKg() {
			goods = append(goods, p)
		}
	}

	taken := make(map[string]bool)
	for tries := 0; len(goods) < defaultUnitGoods && tries < defaultUnitGoods*productNameRetries; tries++ {
		name := s.faker.ProductName()
		if taken[name] || cat.Contains(name) {
			continue
		}
		price := decimal.NewFromFloat(s.faker.Price(minUnitPrice, maxUnitPrice)).Round(2)
		p, err := catalog.NewUnitProduct(name, price)
		if err != nil {
			continue
		}
		taken[name] = true
		goods = append(goods, p)
	}
	return goods
}

func (s *Seeder) fakeItems(unitGoods, weighed []*catalog.Product) ([]trade.LineItem, error) {
	var items []trade.LineItem

	if len(unitGoods) > 0 {
		for _, p := range s.pick(unitGoods, s.faker.IntRange(0, maxUnitLines)) {
			item, err := trade.NewUnitItem(p, s.faker.IntRange(1, maxUnitsPerLine))
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	minWeight := 0
	if len(items) == 0 {
		minWeight = 1
	}
	for _, p := range s.pick(weighed, s.faker.IntRange(minWeight, maxWeightLines)) {
		kg := decimal.NewFromFloat(s.faker.Float64Range(minKilograms, maxKilograms)).Round(kilogramPrecision)
		item, err := trade.NewWeightItem(p, kg)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// pick returns up to n distinct products in random order
func (s *Seeder) pick(products []*catalog.Product, n int) []*catalog.Product {
	if n > len(products) {
		n = len(products)
	}
	shuffled := make([]*catalog.Product, len(products))
	copy(shuffled, products)
	s.faker.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}

func perKg(products []*catalog.Product) []*catalog.Product {
	var out []*catalog.Product
	for _, p := range products {
		if p.IsPerKg() {
			out = append(out, p)
		}
	}
	return out
}
