package models

import (
	"encoding/json"
	"fmt"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductDocument is one record of the catalog document.
// Unit-only catalogs omit is_per_kg; older spice catalogs carry price_per_kg instead of price.
type ProductDocument struct {
	Name       string       `json:"name" validate:"required,max=200"`
	Price      *json.Number `json:"price,omitempty"`
	PricePerKg *json.Number `json:"price_per_kg,omitempty"`
	IsPerKg    *bool        `json:"is_per_kg,omitempty"`
}

// ToDomain converts the document to a domain Product
func (d *ProductDocument) ToDomain() (*catalog.Product, error) {
	if err := validateDocument(d); err != nil {
		return nil, err
	}

	raw := d.Price
	isPerKg := false
	if raw == nil && d.PricePerKg != nil {
		raw = d.PricePerKg
		isPerKg = true
	}
	if d.IsPerKg != nil {
		isPerKg = *d.IsPerKg
	}
	if raw == nil {
		return nil, shared.NewFieldError(shared.CodeInvalidPrice, "price", "",
			fmt.Sprintf("Product %q has no price", d.Name))
	}

	price, err := parseDecimal(*raw)
	if err != nil {
		return nil, shared.NewFieldError(shared.CodeInvalidPrice, "price", raw.String(),
			fmt.Sprintf("Product %q has a non-numeric price %q", d.Name, raw.String()))
	}
	return catalog.NewProduct(d.Name, price, isPerKg)
}

// FromDomain populates the document from a domain Product
func (d *ProductDocument) FromDomain(p *catalog.Product) {
	price := formatDecimal(p.Price())
	isPerKg := p.IsPerKg()
	d.Name = p.Name()
	d.Price = &price
	d.PricePerKg = nil
	d.IsPerKg = &isPerKg
}

// ProductDocumentFromDomain creates a new document from a domain Product
func ProductDocumentFromDomain(p *catalog.Product) *ProductDocument {
	d := &ProductDocument{}
	d.FromDomain(p)
	return d
}

func parseDecimal(n json.Number) (decimal.Decimal, error) {
	return decimal.NewFromString(n.String())
}

// formatDecimal renders d as a bare JSON number rather than decimal's quoted default
func formatDecimal(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
