package trade

import (
	"time"

	"github.com/erp/retail/internal/domain/catalog"
	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Client DTOs ====================

// RegisterClientRequest carries the raw strings of a client form
type RegisterClientRequest struct {
	FIO   string `json:"fio"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ClientResponse represents a client
type ClientResponse struct {
	Number int    `json:"number"`
	FIO    string `json:"fio"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
}

// ToClientResponse converts a domain Client to a response
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		Number: c.Number(),
		FIO:    c.FIO(),
		Phone:  c.Phone(),
		Email:  c.Email(),
	}
}

// ToClientResponses converts a list of clients
func ToClientResponses(clients []*partner.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i, c := range clients {
		responses[i] = ToClientResponse(c)
	}
	return responses
}

// ==================== Product DTOs ====================

// ProductResponse represents a catalog product
type ProductResponse struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	IsPerKg bool            `json:"is_per_kg"`
	Unit    string          `json:"unit"`
}

// ToProductResponse converts a domain Product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		Name:    p.Name(),
		Price:   p.Price(),
		IsPerKg: p.IsPerKg(),
		Unit:    p.Unit(),
	}
}

// ToProductResponses converts a list of products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// CatalogImportResponse summarizes a catalog CSV import
type CatalogImportResponse struct {
	Rows      int      `json:"rows"`
	Imported  int      `json:"imported"`
	Unchanged int      `json:"unchanged"`
	RowErrors []string `json:"row_errors,omitempty"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// ==================== Order DTOs ====================

// RecordSaleRequest records a per-unit sale from a form product list
type RecordSaleRequest struct {
	ClientNumber int    `json:"client_number"`
	Products     string `json:"products"` // "Name, price; Name2, price2"
}

// WeightEntry is one weighed product of a sale
type WeightEntry struct {
	Product   string `json:"product"`
	Kilograms string `json:"kilograms"`
}

// RecordWeightSaleRequest records a sale of catalog products by weight
type RecordWeightSaleRequest struct {
	ClientNumber int           `json:"client_number"`
	Items        []WeightEntry `json:"items"`
}

// OrderItemResponse represents a line of an order
type OrderItemResponse struct {
	ProductName string          `json:"product_name"`
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// OrderResponse represents an order
type OrderResponse struct {
	Number       int                 `json:"number"`
	ClientNumber int                 `json:"client_number"`
	ClientFIO    string              `json:"client_fio"`
	Date         time.Time           `json:"date"`
	Items        []OrderItemResponse `json:"items"`
	TotalCost    decimal.Decimal     `json:"total_cost"`
	Total        string              `json:"total"` // display form, e.g. "75 175,00 ₽"
}

// ToOrderResponse converts a domain Order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := o.Items()
	lines := make([]OrderItemResponse, len(items))
	for i, item := range items {
		lines[i] = OrderItemResponse{
			ProductName: item.Product().Name(),
			Kind:        item.Kind().String(),
			Quantity:    item.Quantity(),
			Price:       item.Product().Price(),
			Revenue:     item.Revenue(),
		}
	}
	return OrderResponse{
		Number:       o.Number(),
		ClientNumber: o.Client().Number(),
		ClientFIO:    o.Client().FIO(),
		Date:         o.Date(),
		Items:        lines,
		TotalCost:    o.TotalCost(),
		Total:        o.TotalMoney().Display(),
	}
}

// ToOrderResponses converts a list of orders
func ToOrderResponses(orders []*trade.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = ToOrderResponse(o)
	}
	return responses
}
