package catalog

import (
	"fmt"
	"strings"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Unit labels used for display
const (
	UnitPiece    = "шт"
	UnitKilogram = "кг"
)

// Product represents a sellable item in the catalog.
// A product is priced either per unit or per kilogram; identity within a catalog is its name.
type Product struct {
	name    string
	price   decimal.Decimal
	isPerKg bool
}

// NewProduct creates a new product
func NewProduct(name string, price decimal.Decimal, isPerKg bool) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewFieldError(shared.CodeInvalidPrice, "price", price.String(),
			fmt.Sprintf("Price of %q cannot be negative, got %s", name, price.String()))
	}

	return &Product{
		name:    name,
		price:   price,
		isPerKg: isPerKg,
	}, nil
}

// NewProductFromFloat creates a product from a float price
func NewProductFromFloat(name string, price float64, isPerKg bool) (*Product, error) {
	return NewProduct(name, decimal.NewFromFloat(price), isPerKg)
}

// NewUnitProduct creates a product sold per piece
func NewUnitProduct(name string, price decimal.Decimal) (*Product, error) {
	return NewProduct(name, price, false)
}

// NewWeightProduct creates a product sold per kilogram
func NewWeightProduct(name string, pricePerKg decimal.Decimal) (*Product, error) {
	return NewProduct(name, pricePerKg, true)
}

// Name returns the product name
func (p *Product) Name() string {
	return p.name
}

// Price returns the price per unit or per kilogram
func (p *Product) Price() decimal.Decimal {
	return p.price
}

// PriceMoney returns the price as Money value object
func (p *Product) PriceMoney() valueobject.Money {
	return valueobject.NewMoneyRUB(p.price)
}

// IsPerKg returns true if the price is per kilogram
func (p *Product) IsPerKg() bool {
	return p.isPerKg
}

// Unit returns the display unit of the price
func (p *Product) Unit() string {
	if p.isPerKg {
		return UnitKilogram
	}
	return UnitPiece
}

// SameAs reports whether both products have the same name, price and pricing mode
func (p *Product) SameAs(other *Product) bool {
	if other == nil {
		return false
	}
	return p.name == other.name && p.isPerKg == other.isPerKg && p.price.Equal(other.price)
}

// String returns a short human-readable representation
func (p *Product) String() string {
	return fmt.Sprintf("Product(%s, %s ₽/%s)", p.name, p.price.String(), p.Unit())
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewFieldError(shared.CodeInvalidName, "name", name, "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewFieldError(shared.CodeInvalidName, "name", name, "Product name cannot exceed 200 characters")
	}
	return nil
}
