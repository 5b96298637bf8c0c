package catalog

import (
	"github.com/shopspring/decimal"
)

// Catalog is the authoritative, ordered set of known products with a name index.
// Names are expected to be unique; when two entries share a name, Resolve returns
// the first one. That tie-break is part of the contract.
type Catalog struct {
	products []*Product
	byName   map[string]*Product
}

// NewCatalog builds a catalog and its name index in one pass
func NewCatalog(products []*Product) *Catalog {
	c := &Catalog{
		products: make([]*Product, 0, len(products)),
		byName:   make(map[string]*Product, len(products)),
	}
	for _, p := range products {
		c.add(p)
	}
	return c
}

func (c *Catalog) add(p *Product) {
	if p == nil {
		return
	}
	c.products = append(c.products, p)
	if _, exists := c.byName[p.name]; !exists {
		c.byName[p.name] = p
	}
}

// Resolve finds a product by name
func (c *Catalog) Resolve(name string) (*Product, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Contains reports whether a product with this name is known
func (c *Catalog) Contains(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Products returns a copy of the products in catalog order
func (c *Catalog) Products() []*Product {
	out := make([]*Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of catalog entries
func (c *Catalog) Len() int {
	return len(c.products)
}

// With returns a new catalog with p appended; the receiver is left unchanged
func (c *Catalog) With(p *Product) *Catalog {
	next := NewCatalog(c.products)
	next.add(p)
	return next
}

// DefaultSpiceCatalog returns the weighed-goods catalog a new spice shop starts with
func DefaultSpiceCatalog() *Catalog {
	spices := []struct {
		name  string
		price int64
	}{
		{"Сахар", 50},
		{"Соль", 20},
		{"Перец чёрный молотый", 300},
		{"Куркума", 450},
		{"Паприка сладкая", 280},
		{"Корица молотая", 600},
	}

	products := make([]*Product, 0, len(spices))
	for _, s := range spices {
		products = append(products, &Product{
			name:    s.name,
			price:   decimal.NewFromInt(s.price),
			isPerKg: true,
		})
	}
	return NewCatalog(products)
}
