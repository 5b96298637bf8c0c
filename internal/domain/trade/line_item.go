package trade

import (
	"fmt"
	"strconv"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItemKind tags how a line item is measured
type LineItemKind string

const (
	LineItemUnit   LineItemKind = "unit"
	LineItemWeight LineItemKind = "weight"
)

// IsValid checks if the kind is a known LineItemKind
func (k LineItemKind) IsValid() bool {
	return k == LineItemUnit || k == LineItemWeight
}

// String returns the string representation of LineItemKind
func (k LineItemKind) String() string {
	return string(k)
}

// LineItem is one priced entry of an order: either a number of pieces of a
// unit-priced product or a weight in kilograms of a per-kg product.
type LineItem struct {
	kind      LineItemKind
	product   *catalog.Product
	quantity  int
	kilograms decimal.Decimal
}

// NewUnitItem creates a line item for quantity pieces of a unit-priced product
func NewUnitItem(product *catalog.Product, quantity int) (LineItem, error) {
	if product == nil {
		return LineItem{}, shared.NewDomainError(shared.CodeMalformedLineItem, "Line item product cannot be empty")
	}
	if product.IsPerKg() {
		return LineItem{}, shared.NewFieldError(shared.CodeMixedUnitMismatch, "products_list", product.Name(),
			fmt.Sprintf("Product %q is sold per kg and cannot be sold per unit", product.Name()))
	}
	if quantity <= 0 {
		return LineItem{}, shared.NewFieldError(shared.CodeInvalidQuantity, "quantity", strconv.Itoa(quantity),
			fmt.Sprintf("Quantity of %q must be positive, got %d", product.Name(), quantity))
	}
	return LineItem{kind: LineItemUnit, product: product, quantity: quantity}, nil
}

// NewWeightItem creates a line item for kilograms of a per-kg product
func NewWeightItem(product *catalog.Product, kilograms decimal.Decimal) (LineItem, error) {
	if product == nil {
		return LineItem{}, shared.NewDomainError(shared.CodeMalformedLineItem, "Line item product cannot be empty")
	}
	if !product.IsPerKg() {
		return LineItem{}, shared.NewFieldError(shared.CodeMixedUnitMismatch, "products_kg", product.Name(),
			fmt.Sprintf("Product %q is sold per unit and cannot be sold by weight", product.Name()))
	}
	if !kilograms.IsPositive() {
		return LineItem{}, shared.NewFieldError(shared.CodeInvalidQuantity, "kilograms", kilograms.String(),
			fmt.Sprintf("Weight of %q must be positive, got %s", product.Name(), kilograms.String()))
	}
	return LineItem{kind: LineItemWeight, product: product, kilograms: kilograms}, nil
}

// validate re-checks the invariants; it catches zero-value items built outside the constructors
func (i LineItem) validate() error {
	switch i.kind {
	case LineItemUnit:
		_, err := NewUnitItem(i.product, i.quantity)
		return err
	case LineItemWeight:
		_, err := NewWeightItem(i.product, i.kilograms)
		return err
	default:
		return shared.NewFieldError(shared.CodeMalformedLineItem, "kind", string(i.kind),
			fmt.Sprintf("Unknown line item kind %q", i.kind))
	}
}

// Kind returns the line item tag
func (i LineItem) Kind() LineItemKind {
	return i.kind
}

// Product returns the referenced product
func (i LineItem) Product() *catalog.Product {
	return i.product
}

// IsWeight returns true for weighed line items
func (i LineItem) IsWeight() bool {
	return i.kind == LineItemWeight
}

// Units returns the piece count of a unit item, 0 for weight items
func (i LineItem) Units() int {
	return i.quantity
}

// Kilograms returns the weight of a weight item, zero for unit items
func (i LineItem) Kilograms() decimal.Decimal {
	return i.kilograms
}

// Quantity returns the measured amount: pieces for unit items, kilograms for weight items
func (i LineItem) Quantity() decimal.Decimal {
	if i.kind == LineItemWeight {
		return i.kilograms
	}
	return decimal.NewFromInt(int64(i.quantity))
}

// Revenue returns price x quantity, unrounded
func (i LineItem) Revenue() decimal.Decimal {
	if i.product == nil {
		return decimal.Zero
	}
	return i.product.Price().Mul(i.Quantity())
}
