package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
)

// OrderSchemaVersion is the version written into every order record.
// Records without a version predate versioning and are read as version 1.
const OrderSchemaVersion = 1

// orderDateLayouts are tried in turn when reading an order date
var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// OrderDocument is one record of the orders document
type OrderDocument struct {
	SchemaVersion int                    `json:"schema_version,omitempty" validate:"gte=0,lte=1"`
	Number        int                    `json:"number" validate:"gt=0"`
	ClientNumber  int                    `json:"client_number" validate:"gt=0"`
	ProductsList  []string               `json:"products_list" validate:"dive,required"`
	ProductsKg    map[string]json.Number `json:"products_kg" validate:"dive,keys,required,endkeys,required"`
	KgOrder       []string               `json:"products_kg_order,omitempty"`
	Date          string                 `json:"date" validate:"required"`
}

// ToDomain resolves the record against the known clients and catalog and builds the order.
// Any unresolved reference fails the whole record.
func (d *OrderDocument) ToDomain(clients map[int]*partner.Client, cat *catalog.Catalog) (*trade.Order, error) {
	if d.SchemaVersion > OrderSchemaVersion {
		return nil, shared.NewFieldError(shared.CodeUnsupportedSchema, "schema_version", strconv.Itoa(d.SchemaVersion),
			fmt.Sprintf("Order %d has schema version %d, newest supported is %d", d.Number, d.SchemaVersion, OrderSchemaVersion))
	}
	if err := validateDocument(d); err != nil {
		return nil, err
	}

	client, ok := clients[d.ClientNumber]
	if !ok {
		return nil, shared.NewFieldError(shared.CodeUnknownClient, "client_number", strconv.Itoa(d.ClientNumber),
			fmt.Sprintf("Order %d references unknown client %d", d.Number, d.ClientNumber))
	}

	date, err := ParseOrderDate(d.Date)
	if err != nil {
		return nil, err
	}

	items := make([]trade.LineItem, 0, len(d.ProductsList)+len(d.ProductsKg))
	for _, name := range d.ProductsList {
		product, err := resolveProduct(cat, d.Number, name)
		if err != nil {
			return nil, err
		}
		item, err := trade.NewUnitItem(product, 1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	for _, name := range d.weightOrder() {
		product, err := resolveProduct(cat, d.Number, name)
		if err != nil {
			return nil, err
		}
		raw := d.ProductsKg[name]
		kg, err := parseDecimal(raw)
		if err != nil {
			return nil, shared.NewFieldError(shared.CodeInvalidQuantity, "products_kg", raw.String(),
				fmt.Sprintf("Order %d has a non-numeric weight %q for %q", d.Number, raw.String(), name))
		}
		item, err := trade.NewWeightItem(product, kg)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return trade.NewOrder(d.Number, client, items, date)
}

// weightOrder returns the weighed product names in line order. Records without a
// usable products_kg_order list their weights by name.
func (d *OrderDocument) weightOrder() []string {
	if len(d.KgOrder) == len(d.ProductsKg) {
		ordered := true
		for _, name := range d.KgOrder {
			if _, ok := d.ProductsKg[name]; !ok {
				ordered = false
				break
			}
		}
		if ordered && !hasDuplicates(d.KgOrder) {
			return d.KgOrder
		}
	}
	names := make([]string, 0, len(d.ProductsKg))
	for name := range d.ProductsKg {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func hasDuplicates(names []string) bool {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return true
		}
		seen[name] = struct{}{}
	}
	return false
}

func resolveProduct(cat *catalog.Catalog, orderNumber int, name string) (*catalog.Product, error) {
	if cat != nil {
		if product, ok := cat.Resolve(name); ok {
			return product, nil
		}
	}
	return nil, shared.NewFieldError(shared.CodeUnknownProduct, "product", name,
		fmt.Sprintf("Order %d references unknown product %q", orderNumber, name))
}

// FromDomain populates the document from a domain Order
func (d *OrderDocument) FromDomain(o *trade.Order) {
	d.SchemaVersion = OrderSchemaVersion
	d.Number = o.Number()
	d.ClientNumber = o.Client().Number()
	d.Date = FormatOrderDate(o.Date())

	d.ProductsList = []string{}
	for _, p := range o.UnitProducts() {
		d.ProductsList = append(d.ProductsList, p.Name())
	}
	d.ProductsKg = make(map[string]json.Number)
	d.KgOrder = nil
	for _, item := range o.WeightItems() {
		d.ProductsKg[item.Product().Name()] = formatDecimal(item.Kilograms())
		d.KgOrder = append(d.KgOrder, item.Product().Name())
	}
}

// OrderDocumentFromDomain creates a new document from a domain Order
func OrderDocumentFromDomain(o *trade.Order) *OrderDocument {
	d := &OrderDocument{}
	d.FromDomain(o)
	return d
}

// FormatOrderDate renders an order timestamp as ISO-8601
func FormatOrderDate(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseOrderDate reads an ISO-8601 timestamp; values without an offset are taken as local time
func ParseOrderDate(s string) (time.Time, error) {
	for _, layout := range orderDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, shared.NewFieldError(shared.CodeInvalidDate, "date", s,
		fmt.Sprintf("Invalid date %q: expected ISO-8601", s))
}
