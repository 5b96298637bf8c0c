package trade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	csvimport "github.com/erp/retail/internal/infrastructure/import"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store is the persistence the sales service works against
type Store interface {
	partner.ClientRepository
	trade.OrderRepository
	catalog.ProductRepository
}

// SalesService turns form submissions into clients and orders
type SalesService struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewSalesService creates a new SalesService
func NewSalesService(store Store, log *zap.Logger) *SalesService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SalesService{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// SetClock replaces the clock used to date new orders
func (s *SalesService) SetClock(now func() time.Time) {
	s.now = now
}

// RegisterClient validates the form fields and stores a client under the next free number
func (s *SalesService) RegisterClient(ctx context.Context, req RegisterClientRequest) (*ClientResponse, error) {
	client, err := s.store.CreateClient(
		strings.TrimSpace(req.FIO),
		strings.TrimSpace(req.Phone),
		strings.TrimSpace(req.Email),
	)
	if err != nil {
		s.logFailure(ctx, "Client not registered", err)
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Client registered",
		zap.Int("client_number", client.Number()),
		zap.String("fio", client.FIO()),
	)
	response := ToClientResponse(client)
	return &response, nil
}

// RecordSale records an order of per-unit products parsed from a "Name, price; ..." list.
// Products the catalog does not know yet are added to it.
func (s *SalesService) RecordSale(ctx context.Context, req RecordSaleRequest) (*OrderResponse, error) {
	if err := s.requireClient(req.ClientNumber); err != nil {
		return nil, err
	}

	products, err := csvimport.ParseProductList(req.Products)
	if err != nil {
		s.logFailure(ctx, "Product list rejected", err)
		return nil, err
	}

	items := make([]trade.LineItem, 0, len(products))
	for _, p := range products {
		item, err := trade.NewUnitItem(p, 1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return s.createOrder(ctx, req.ClientNumber, items)
}

// RecordWeightSale records an order of catalog products sold by weight.
// Every entry is checked; all problems are returned together.
func (s *SalesService) RecordWeightSale(ctx context.Context, req RecordWeightSaleRequest) (*OrderResponse, error) {
	if err := s.requireClient(req.ClientNumber); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, shared.NewFieldError(shared.CodeInvalidInput, "items", "", "No weighed products given")
	}

	cat := s.store.Catalog()
	items := make([]trade.LineItem, 0, len(req.Items))
	var errs error
	for _, entry := range req.Items {
		item, err := weightItem(cat, entry)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		items = append(items, item)
	}
	if errs != nil {
		s.logFailure(ctx, "Weighed sale rejected", errs)
		return nil, errs
	}

	return s.createOrder(ctx, req.ClientNumber, items)
}

func weightItem(cat *catalog.Catalog, entry WeightEntry) (trade.LineItem, error) {
	name := strings.TrimSpace(entry.Product)
	product, ok := cat.Resolve(name)
	if !ok {
		return trade.LineItem{}, shared.NewFieldError(shared.CodeUnknownProduct, "product", name,
			fmt.Sprintf("Unknown product %q", name))
	}

	raw := strings.ReplaceAll(strings.TrimSpace(entry.Kilograms), ",", ".")
	kg, err := decimal.NewFromString(raw)
	if err != nil {
		return trade.LineItem{}, shared.NewFieldError(shared.CodeInvalidQuantity, "kilograms", entry.Kilograms,
			fmt.Sprintf("Weight of %q is not a number: %q", name, entry.Kilograms))
	}
	return trade.NewWeightItem(product, kg)
}

func (s *SalesService) createOrder(ctx context.Context, clientNumber int, items []trade.LineItem) (*OrderResponse, error) {
	order, err := s.store.CreateOrder(clientNumber, items, s.now())
	if err != nil {
		s.logFailure(ctx, "Order not recorded", err)
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Order recorded",
		zap.Int("order_number", order.Number()),
		zap.Int("client_number", clientNumber),
		zap.Int("lines", len(order.Items())),
		zap.String("total", order.TotalMoney().String()),
	)
	response := ToOrderResponse(order)
	return &response, nil
}

func (s *SalesService) requireClient(number int) error {
	if _, ok := s.store.FindClient(number); !ok {
		return shared.NewFieldError(shared.CodeUnknownClient, "client_number", strconv.Itoa(number),
			fmt.Sprintf("Unknown client %d", number))
	}
	return nil
}

// ListClients returns every client in insertion order
func (s *SalesService) ListClients(ctx context.Context) []ClientResponse {
	return ToClientResponses(s.store.Clients())
}

// ListOrders returns every order in insertion order
func (s *SalesService) ListOrders(ctx context.Context) []OrderResponse {
	return ToOrderResponses(s.store.Orders())
}

// ListCatalog returns the catalog products
func (s *SalesService) ListCatalog(ctx context.Context) []ProductResponse {
	return ToProductResponses(s.store.Catalog().Products())
}

// ImportCatalog adds the products of a name,price,is_per_kg CSV document to the catalog.
// Rejected rows and catalog conflicts are reported in the response; a storage
// failure stops the import and is returned.
func (s *SalesService) ImportCatalog(ctx context.Context, r io.Reader) (*CatalogImportResponse, error) {
	result, err := csvimport.NewCatalogImporter().Import(ctx, r)
	if err != nil {
		return nil, err
	}

	response := &CatalogImportResponse{Rows: result.TotalRows}
	for _, rowErr := range result.Errors.Errors() {
		response.RowErrors = append(response.RowErrors, rowErr.Error())
	}

	for _, p := range result.Products {
		if existing, ok := s.store.Catalog().Resolve(p.Name()); ok && existing.SameAs(p) {
			response.Unchanged++
			continue
		}
		if err := s.store.AddProduct(p); err != nil {
			if errors.Is(err, shared.ErrProductConflict) {
				response.Conflicts = append(response.Conflicts, err.Error())
				continue
			}
			s.logFailure(ctx, "Catalog import stopped", err)
			return response, err
		}
		response.Imported++
	}

	logger.WithLogger(ctx, s.logger).Info("Catalog imported",
		zap.Int("rows", response.Rows),
		zap.Int("imported", response.Imported),
		zap.Int("unchanged", response.Unchanged),
		zap.Int("conflicts", len(response.Conflicts)),
		zap.Int("row_errors", len(response.RowErrors)),
	)
	return response, nil
}

func (s *SalesService) logFailure(ctx context.Context, msg string, err error) {
	logger.WithLogger(ctx, s.logger).Warn(msg, zap.Error(err))
}
