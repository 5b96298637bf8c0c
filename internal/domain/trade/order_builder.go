package trade

import (
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// OrderBuilder collects line items for an order and reports the first invalid one on Build.
type OrderBuilder struct {
	number int
	client *partner.Client
	date   time.Time
	items  []LineItem
	err    error
}

// NewOrderBuilder starts an order for a client
func NewOrderBuilder(number int, client *partner.Client) *OrderBuilder {
	return &OrderBuilder{number: number, client: client}
}

// At sets the order date; without it the order is dated at Build time
func (b *OrderBuilder) At(date time.Time) *OrderBuilder {
	b.date = date
	return b
}

// AddUnit adds one piece of a unit-priced product
func (b *OrderBuilder) AddUnit(product *catalog.Product) *OrderBuilder {
	return b.AddUnits(product, 1)
}

// AddUnits adds quantity pieces of a unit-priced product
func (b *OrderBuilder) AddUnits(product *catalog.Product, quantity int) *OrderBuilder {
	if b.err != nil {
		return b
	}
	item, err := NewUnitItem(product, quantity)
	if err != nil {
		b.err = err
		return b
	}
	b.items = append(b.items, item)
	return b
}

// SetWeight sets the weight of a per-kg product. Setting the same product again
// replaces the earlier weight.
func (b *OrderBuilder) SetWeight(product *catalog.Product, kilograms decimal.Decimal) *OrderBuilder {
	if b.err != nil {
		return b
	}
	item, err := NewWeightItem(product, kilograms)
	if err != nil {
		b.err = err
		return b
	}
	b.items = append(b.items, item)
	return b
}

// Build creates the order
func (b *OrderBuilder) Build() (*Order, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewOrder(b.number, b.client, b.items, b.date)
}
