package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FileRepository keeps clients, orders and the product catalog in memory and
// rewrites the matching JSON document after every mutation.
//
// It is not safe for concurrent use. A failed write leaves the in-memory
// mutation in place; the error tells the caller the disk copy is behind.
type FileRepository struct {
	clientsPath string
	ordersPath  string
	catalogPath string
	seedCatalog bool
	logger      *zap.Logger

	clients    []*partner.Client
	clientsBy  map[int]*partner.Client
	orders     []*trade.Order
	ordersBy   map[int]*trade.Order
	catalog    *catalog.Catalog
	nextClient int
	nextOrder  int
}

// NewFileRepository creates a repository over the documents named in cfg.
// The repository starts empty; call Load to read the documents.
func NewFileRepository(cfg config.StorageConfig, log *zap.Logger) *FileRepository {
	if log == nil {
		log = zap.NewNop()
	}
	r := &FileRepository{
		clientsPath: cfg.ClientsPath(),
		ordersPath:  cfg.OrdersPath(),
		catalogPath: cfg.CatalogPath(),
		seedCatalog: cfg.SeedDefaultCatalog,
		logger:      log.Named("repository"),
	}
	r.reset()
	return r
}

func (r *FileRepository) reset() {
	r.clients = nil
	r.clientsBy = make(map[int]*partner.Client)
	r.orders = nil
	r.ordersBy = make(map[int]*trade.Order)
	r.catalog = catalog.NewCatalog(nil)
	r.nextClient = 1
	r.nextOrder = 1
}

// LoadReport summarizes what Load read and what it had to skip
type LoadReport struct {
	Clients  int
	Orders   int
	Products int
	Skipped  int
	// Err combines every diagnostic; nil when everything loaded cleanly
	Err error
}

// Diagnostics returns the individual load problems
func (lr *LoadReport) Diagnostics() []error {
	return multierr.Errors(lr.Err)
}

func (lr *LoadReport) report(ctx context.Context, document string, err error) {
	lr.Err = multierr.Append(lr.Err, err)
	logger.L(ctx).Warn("Load diagnostic",
		zap.String("document", document),
		zap.Error(err),
	)
}

// Load replaces the in-memory state with the contents of the documents.
// It never fails: unreadable documents degrade to empty collections and invalid
// records are skipped, each with a diagnostic in the returned report.
func (r *FileRepository) Load(ctx context.Context) *LoadReport {
	r.reset()
	report := &LoadReport{}

	r.loadCatalog(ctx, report)
	r.loadClients(ctx, report)
	r.loadOrders(ctx, report)

	report.Clients = len(r.clients)
	report.Orders = len(r.orders)
	report.Products = r.catalog.Len()

	logger.L(ctx).Info("Repository loaded",
		zap.Int("clients", report.Clients),
		zap.Int("orders", report.Orders),
		zap.Int("products", report.Products),
		zap.Int("skipped", report.Skipped),
		zap.Int("next_client", r.nextClient),
		zap.Int("next_order", r.nextOrder),
	)
	return report
}

func (r *FileRepository) loadCatalog(ctx context.Context, report *LoadReport) {
	records, exists, err := readDocument(r.catalogPath)
	if err != nil {
		report.report(ctx, r.catalogPath, err)
		return
	}
	if !exists {
		if r.seedCatalog {
			r.catalog = catalog.DefaultSpiceCatalog()
			if err := r.persistCatalog(); err != nil {
				report.report(ctx, r.catalogPath, err)
			}
		}
		return
	}

	products := make([]*catalog.Product, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, raw := range records {
		var doc models.ProductDocument
		product, err := decodeRecord(raw, &doc, func() (*catalog.Product, error) { return doc.ToDomain() })
		if err != nil {
			report.Skipped++
			report.report(ctx, r.catalogPath, recordError(r.catalogPath, i, err))
			continue
		}
		if seen[product.Name()] {
			logger.L(ctx).Warn("Duplicate catalog entry", zap.String("product", product.Name()), zap.Int("record", i))
		}
		seen[product.Name()] = true
		products = append(products, product)
	}
	r.catalog = catalog.NewCatalog(products)
}

func (r *FileRepository) loadClients(ctx context.Context, report *LoadReport) {
	records, _, err := readDocument(r.clientsPath)
	if err != nil {
		report.report(ctx, r.clientsPath, err)
		return
	}

	for i, raw := range records {
		var doc models.ClientDocument
		client, err := decodeRecord(raw, &doc, doc.ToDomain)
		if err == nil {
			if _, dup := r.clientsBy[client.Number()]; dup {
				err = shared.NewFieldError(shared.CodeDuplicateNumber, "number", strconv.Itoa(client.Number()),
					fmt.Sprintf("Client number %d appears more than once", client.Number()))
			}
		}
		if err != nil {
			report.Skipped++
			report.report(ctx, r.clientsPath, recordError(r.clientsPath, i, err))
			continue
		}
		r.appendClient(client)
	}
}

func (r *FileRepository) loadOrders(ctx context.Context, report *LoadReport) {
	records, _, err := readDocument(r.ordersPath)
	if err != nil {
		report.report(ctx, r.ordersPath, err)
		return
	}

	for i, raw := range records {
		var doc models.OrderDocument
		order, err := decodeRecord(raw, &doc, func() (*trade.Order, error) {
			return doc.ToDomain(r.clientsBy, r.catalog)
		})
		if err == nil {
			if _, dup := r.ordersBy[order.Number()]; dup {
				err = shared.NewFieldError(shared.CodeDuplicateNumber, "number", strconv.Itoa(order.Number()),
					fmt.Sprintf("Order number %d appears more than once", order.Number()))
			}
		}
		if err != nil {
			report.Skipped++
			report.report(ctx, r.ordersPath, recordError(r.ordersPath, i, err))
			continue
		}
		r.appendOrder(order)
	}
}

// decodeRecord unmarshals one raw record into doc and converts it with toDomain
func decodeRecord[D any, T any](raw json.RawMessage, doc *D, toDomain func() (T, error)) (T, error) {
	var zero T
	if err := json.Unmarshal(raw, doc); err != nil {
		return zero, shared.WrapDomainError(shared.CodeStorageRead, err, "Malformed record")
	}
	return toDomain()
}

func recordError(path string, index int, err error) error {
	return fmt.Errorf("%s record %d: %w", path, index, err)
}

func (r *FileRepository) appendClient(c *partner.Client) {
	r.clients = append(r.clients, c)
	r.clientsBy[c.Number()] = c
	r.nextClient = max(r.nextClient, c.Number()+1)
}

func (r *FileRepository) appendOrder(o *trade.Order) {
	r.orders = append(r.orders, o)
	r.ordersBy[o.Number()] = o
	r.nextOrder = max(r.nextOrder, o.Number()+1)
}

// AddClient appends a client and rewrites the clients document
func (r *FileRepository) AddClient(c *partner.Client) error {
	if c == nil {
		return shared.NewDomainError(shared.CodeInvalidClient, "Client cannot be empty")
	}
	if _, dup := r.clientsBy[c.Number()]; dup {
		return shared.NewFieldError(shared.CodeDuplicateNumber, "number", strconv.Itoa(c.Number()),
			fmt.Sprintf("Client number %d is already in use", c.Number()))
	}

	r.appendClient(c)
	return r.persistClients()
}

// CreateClient builds a client under the next free number and adds it
func (r *FileRepository) CreateClient(fio, phone, email string) (*partner.Client, error) {
	c, err := partner.NewClient(r.nextClient, fio, phone, email)
	if err != nil {
		return nil, err
	}
	return c, r.AddClient(c)
}

// FindClient finds a client by number
func (r *FileRepository) FindClient(number int) (*partner.Client, bool) {
	c, ok := r.clientsBy[number]
	return c, ok
}

// Clients returns a copy of all clients in insertion order
func (r *FileRepository) Clients() []*partner.Client {
	out := make([]*partner.Client, len(r.clients))
	copy(out, r.clients)
	return out
}

// NextClientNumber returns the number the next created client will get
func (r *FileRepository) NextClientNumber() int {
	return r.nextClient
}

// AddOrder appends an order and rewrites the orders document.
// Products the catalog does not know yet are catalogued first so the order can be reloaded.
func (r *FileRepository) AddOrder(o *trade.Order) error {
	if o == nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Order cannot be empty")
	}
	if _, dup := r.ordersBy[o.Number()]; dup {
		return shared.NewFieldError(shared.CodeDuplicateNumber, "number", strconv.Itoa(o.Number()),
			fmt.Sprintf("Order number %d is already in use", o.Number()))
	}
	if _, ok := r.clientsBy[o.Client().Number()]; !ok {
		return shared.NewFieldError(shared.CodeUnknownClient, "client_number", strconv.Itoa(o.Client().Number()),
			fmt.Sprintf("Order %d references client %d which is not in the repository", o.Number(), o.Client().Number()))
	}

	var missing []*catalog.Product
	for _, item := range o.Items() {
		product := item.Product()
		if err := r.checkCatalogEntry(product); err != nil {
			return err
		}
		if r.catalog.Contains(product.Name()) {
			continue
		}
		if pending, ok := findProduct(missing, product.Name()); ok {
			if !pending.SameAs(product) {
				return shared.NewFieldError(shared.CodeProductConflict, "name", product.Name(),
					fmt.Sprintf("Order %d lists product %q as both %s and %s", o.Number(), product.Name(), pending, product))
			}
			continue
		}
		missing = append(missing, product)
	}

	var err error
	if len(missing) > 0 {
		for _, p := range missing {
			r.catalog = r.catalog.With(p)
		}
		err = r.persistCatalog()
	}
	r.appendOrder(o)
	return multierr.Append(err, r.persistOrders())
}

// CreateOrder builds an order under the next free number for a known client and adds it
func (r *FileRepository) CreateOrder(clientNumber int, items []trade.LineItem, date time.Time) (*trade.Order, error) {
	client, ok := r.clientsBy[clientNumber]
	if !ok {
		return nil, shared.NewFieldError(shared.CodeUnknownClient, "client_number", strconv.Itoa(clientNumber),
			fmt.Sprintf("Unknown client %d", clientNumber))
	}
	o, err := trade.NewOrder(r.nextOrder, client, items, date)
	if err != nil {
		return nil, err
	}
	return o, r.AddOrder(o)
}

// Orders returns a copy of all orders in insertion order
func (r *FileRepository) Orders() []*trade.Order {
	out := make([]*trade.Order, len(r.orders))
	copy(out, r.orders)
	return out
}

// NextOrderNumber returns the number the next created order will get
func (r *FileRepository) NextOrderNumber() int {
	return r.nextOrder
}

// AddProduct appends a product to the catalog and rewrites the catalog document.
// Adding a product identical to a catalogued one is a no-op.
func (r *FileRepository) AddProduct(p *catalog.Product) error {
	if p == nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product cannot be empty")
	}
	if err := r.checkCatalogEntry(p); err != nil {
		return err
	}
	if r.catalog.Contains(p.Name()) {
		return nil
	}
	r.catalog = r.catalog.With(p)
	return r.persistCatalog()
}

// Catalog returns the current catalog snapshot
func (r *FileRepository) Catalog() *catalog.Catalog {
	return r.catalog
}

func (r *FileRepository) checkCatalogEntry(p *catalog.Product) error {
	existing, ok := r.catalog.Resolve(p.Name())
	if !ok || existing.SameAs(p) {
		return nil
	}
	return shared.NewFieldError(shared.CodeProductConflict, "name", p.Name(),
		fmt.Sprintf("Product %q is already catalogued as %s, got %s", p.Name(), existing, p))
}

func findProduct(products []*catalog.Product, name string) (*catalog.Product, bool) {
	for _, p := range products {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

func (r *FileRepository) persistClients() error {
	docs := make([]*models.ClientDocument, 0, len(r.clients))
	for _, c := range r.clients {
		docs = append(docs, models.ClientDocumentFromDomain(c))
	}
	return r.persist(r.clientsPath, docs, len(docs))
}

func (r *FileRepository) persistOrders() error {
	docs := make([]*models.OrderDocument, 0, len(r.orders))
	for _, o := range r.orders {
		docs = append(docs, models.OrderDocumentFromDomain(o))
	}
	return r.persist(r.ordersPath, docs, len(docs))
}

func (r *FileRepository) persistCatalog() error {
	products := r.catalog.Products()
	docs := make([]*models.ProductDocument, 0, len(products))
	for _, p := range products {
		docs = append(docs, models.ProductDocumentFromDomain(p))
	}
	return r.persist(r.catalogPath, docs, len(docs))
}

func (r *FileRepository) persist(path string, docs any, count int) error {
	if err := writeDocument(path, docs); err != nil {
		r.logger.Error("Failed to persist document", zap.String("path", path), zap.Error(err))
		return err
	}
	r.logger.Debug("Document persisted", zap.String("path", path), zap.Int("records", count))
	return nil
}

// Interface assertions
var (
	_ partner.ClientRepository  = (*FileRepository)(nil)
	_ trade.OrderRepository     = (*FileRepository)(nil)
	_ catalog.ProductRepository = (*FileRepository)(nil)
)
