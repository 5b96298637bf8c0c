package csvimport

import (
	"fmt"
	"strings"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Separators of the form product list
const (
	SegmentSeparator = ";"
	FieldSeparator   = ","
)

// ParseProductList parses a form product list such as "Ноутбук, 75000; Мышь, 500"
// into per-unit products, in order.
//
// The price is the last comma-separated field of a segment and the name is
// everything before it, so names may themselves contain commas. Blank segments
// are ignored. A name repeated at another price is a conflict. Every malformed
// or conflicting segment is reported as a *SegmentError; when any segment fails,
// no products are returned.
func ParseProductList(text string) ([]*catalog.Product, error) {
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewFieldError(shared.CodeInvalidInput, "products", text, "Product list is empty")
	}

	type firstSeen struct {
		index   int
		product *catalog.Product
	}
	var (
		products []*catalog.Product
		errs     error
		byName   = make(map[string]firstSeen)
	)
	for i, raw := range strings.Split(text, SegmentSeparator) {
		segment := strings.TrimSpace(raw)
		if segment == "" {
			continue
		}
		product, err := parseSegment(i+1, segment)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if first, ok := byName[product.Name()]; ok && !first.product.SameAs(product) {
			errs = multierr.Append(errs, &SegmentError{
				Index:   i + 1,
				Segment: segment,
				Reason:  fmt.Sprintf("conflicts with segment %d at price %s", first.index, first.product.Price()),
				Err: shared.NewFieldError(shared.CodeProductConflict, "products", product.Name(),
					fmt.Sprintf("Product %q is listed at two prices", product.Name())),
			})
			continue
		} else if !ok {
			byName[product.Name()] = firstSeen{index: i + 1, product: product}
		}
		products = append(products, product)
	}

	if errs != nil {
		return nil, errs
	}
	if len(products) == 0 {
		return nil, shared.NewFieldError(shared.CodeInvalidInput, "products", text, "Product list has no products")
	}
	return products, nil
}

func parseSegment(index int, segment string) (*catalog.Product, error) {
	fields := strings.Split(segment, FieldSeparator)
	if len(fields) < 2 {
		return nil, &SegmentError{Index: index, Segment: segment, Reason: "price is missing"}
	}

	name := strings.TrimSpace(strings.Join(fields[:len(fields)-1], FieldSeparator))
	if name == "" {
		return nil, &SegmentError{Index: index, Segment: segment, Reason: "name is missing"}
	}

	rawPrice := strings.TrimSpace(fields[len(fields)-1])
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return nil, &SegmentError{Index: index, Segment: segment, Reason: fmt.Sprintf("price %q is not a number", rawPrice), Err: err}
	}

	product, err := catalog.NewUnitProduct(name, price)
	if err != nil {
		return nil, &SegmentError{Index: index, Segment: segment, Reason: err.Error(), Err: err}
	}
	return product, nil
}
