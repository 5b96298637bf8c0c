package catalog

// ProductRepository defines the interface for catalog persistence
type ProductRepository interface {
	// AddProduct appends a product to the catalog and persists the catalog document
	AddProduct(product *Product) error

	// Catalog returns a snapshot of the current catalog
	Catalog() *Catalog
}
