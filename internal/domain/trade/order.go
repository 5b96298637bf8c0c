package trade

import (
	"fmt"
	"strconv"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Order is a completed sale to one client.
// The order references its client and products without owning them and is not
// mutated after construction.
type Order struct {
	number int
	client *partner.Client
	items  []LineItem
	date   time.Time
}

// NewOrder creates an order from already-built line items.
// A zero date means "now". Two items naming the same product with a different
// price or unit fail with PRODUCT_CONFLICT. Items are normalized:
//   - unit items come first, then weight items, each kind in the order given,
//   - adjacent unit items of the same product are merged into one,
//   - a repeated weight item for the same product overwrites the earlier weight
//     and keeps the earlier position.
func NewOrder(number int, client *partner.Client, items []LineItem, date time.Time) (*Order, error) {
	if number <= 0 {
		return nil, shared.NewFieldError(shared.CodeInvalidNumber, "number", strconv.Itoa(number),
			fmt.Sprintf("Order number must be positive, got %d", number))
	}
	if client == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidClient, "Order client cannot be empty")
	}
	for _, item := range items {
		if err := item.validate(); err != nil {
			return nil, err
		}
	}
	if err := checkProductConflicts(items); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	return &Order{
		number: number,
		client: client,
		items:  normalizeItems(items),
		date:   date,
	}, nil
}

// checkProductConflicts rejects items that give one product name two meanings.
// Orders reference products by name, so such an order could not be reloaded as built.
func checkProductConflicts(items []LineItem) error {
	seen := make(map[string]*catalog.Product, len(items))
	for _, item := range items {
		p := item.product
		first, ok := seen[p.Name()]
		if !ok {
			seen[p.Name()] = p
			continue
		}
		if !first.SameAs(p) {
			return shared.NewFieldError(shared.CodeProductConflict, "products", p.Name(),
				fmt.Sprintf("Product %q appears as both %s and %s", p.Name(), first, p))
		}
	}
	return nil
}

func normalizeItems(items []LineItem) []LineItem {
	var units, weights []LineItem
	weightAt := make(map[string]int)
	for _, item := range items {
		switch item.kind {
		case LineItemWeight:
			name := item.product.Name()
			if idx, ok := weightAt[name]; ok {
				weights[idx] = item
				continue
			}
			weightAt[name] = len(weights)
			weights = append(weights, item)
		default:
			if n := len(units); n > 0 && units[n-1].product.SameAs(item.product) {
				units[n-1].quantity += item.quantity
				continue
			}
			units = append(units, item)
		}
	}
	return append(units, weights...)
}

// Number returns the order identifier
func (o *Order) Number() int {
	return o.number
}

// Client returns the referenced client
func (o *Order) Client() *partner.Client {
	return o.client
}

// Date returns the order timestamp
func (o *Order) Date() time.Time {
	return o.date
}

// Items returns a copy of the line items in order
func (o *Order) Items() []LineItem {
	out := make([]LineItem, len(o.items))
	copy(out, o.items)
	return out
}

// UnitProducts returns one product reference per piece sold, in line order.
// Buying the same product twice yields it twice.
func (o *Order) UnitProducts() []*catalog.Product {
	var out []*catalog.Product
	for _, item := range o.items {
		if item.kind != LineItemUnit {
			continue
		}
		for range item.quantity {
			out = append(out, item.product)
		}
	}
	return out
}

// WeightItems returns the weighed line items in line order
func (o *Order) WeightItems() []LineItem {
	var out []LineItem
	for _, item := range o.items {
		if item.kind == LineItemWeight {
			out = append(out, item)
		}
	}
	return out
}

// TotalCost returns the sum of all line revenues rounded to 2 decimal places
func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.Revenue())
	}
	return total.Round(valueobject.MoneyPlaces)
}

// TotalMoney returns the total cost as Money value object
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyRUB(o.TotalCost())
}

// String returns a short human-readable representation
func (o *Order) String() string {
	return fmt.Sprintf("Order(#%d, %s, %d items, %s)",
		o.number, o.client.FIO(), len(o.items), o.TotalMoney().String())
}
