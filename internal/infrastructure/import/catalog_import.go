package csvimport

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog CSV columns
const (
	ColumnName    = "name"
	ColumnPrice   = "price"
	ColumnIsPerKg = "is_per_kg"
)

// CatalogRules validates one catalog row. is_per_kg is optional and defaults to false.
var CatalogRules = []FieldRule{
	Field(ColumnName).Required().MaxLength(200).Unique().Build(),
	Field(ColumnPrice).Required().Decimal().MinValue(decimal.Zero).Build(),
	Field(ColumnIsPerKg).Bool().Build(),
}

// CatalogImporter reads products from a name,price,is_per_kg CSV document
type CatalogImporter struct {
	maxRows   int
	maxErrors int
}

// ImporterOption configures a CatalogImporter
type ImporterOption func(*CatalogImporter)

// WithMaxRows limits the number of data rows read
func WithMaxRows(rows int) ImporterOption {
	return func(i *CatalogImporter) {
		i.maxRows = rows
	}
}

// WithMaxErrors limits the number of row errors kept
func WithMaxErrors(errors int) ImporterOption {
	return func(i *CatalogImporter) {
		i.maxErrors = errors
	}
}

// NewCatalogImporter creates an importer
func NewCatalogImporter(opts ...ImporterOption) *CatalogImporter {
	i := &CatalogImporter{
		maxRows:   10000,
		maxErrors: 100,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// CatalogImportResult holds the products read and the rows that were rejected
type CatalogImportResult struct {
	Products  []*catalog.Product
	TotalRows int
	ErrorRows int
	Errors    *ErrorCollection
}

// HasErrors reports whether any row was rejected
func (r *CatalogImportResult) HasErrors() bool {
	return r.Errors.HasErrors()
}

// ImportCatalogCSV reads a catalog CSV document with default limits
func ImportCatalogCSV(r io.Reader) (*CatalogImportResult, error) {
	return NewCatalogImporter().Import(context.Background(), r)
}

// Import reads every row of r. File-level problems (encoding, missing header
// or columns, cancellation) are returned as errors; row problems are collected
// in the result and the row is left out.
func (i *CatalogImporter) Import(ctx context.Context, r io.Reader) (*CatalogImportResult, error) {
	parser, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders([]string{ColumnName, ColumnPrice}); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrMissingHeader, strings.Join(missing, ", "))
	}

	validator := NewFieldValidator(CatalogRules, i.maxErrors)
	errs := validator.Errors()
	result := &CatalogImportResult{Errors: errs}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs.Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			result.ErrorRows++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		if result.TotalRows == i.maxRows {
			errs.Add(NewRowError(row.LineNumber, "", ErrCodeImportTooManyRows,
				fmt.Sprintf("exceeded maximum number of rows (%d)", i.maxRows)))
			break
		}
		result.TotalRows++

		if !validator.ValidateRow(row) {
			result.ErrorRows++
			continue
		}
		product, err := productFromRow(row)
		if err != nil {
			errs.Add(NewRowError(row.LineNumber, "", ErrCodeImportProduct, err.Error()))
			result.ErrorRows++
			continue
		}
		result.Products = append(result.Products, product)
	}

	logger.L(ctx).Info("catalog CSV read",
		zap.Int("rows", result.TotalRows),
		zap.Int("products", len(result.Products)),
		zap.Int("rejected", result.ErrorRows),
	)
	return result, nil
}

// productFromRow builds a product from a row that passed CatalogRules
func productFromRow(row *Row) (*catalog.Product, error) {
	price, err := decimal.NewFromString(strings.ReplaceAll(row.Get(ColumnPrice), ",", "."))
	if err != nil {
		return nil, err
	}
	perKg := false
	if raw := row.Get(ColumnIsPerKg); raw != "" {
		if perKg, err = ParseBool(raw); err != nil {
			return nil, err
		}
	}
	return catalog.NewProduct(row.Get(ColumnName), price, perKg)
}
