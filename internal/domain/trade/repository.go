package trade

import "time"

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// AddOrder appends an order and persists the order collection
	AddOrder(order *Order) error

	// CreateOrder builds an order under the next free number for a known client and adds it
	CreateOrder(clientNumber int, items []LineItem, date time.Time) (*Order, error)

	// Orders returns a copy of all orders in insertion order
	Orders() []*Order

	// NextOrderNumber returns the number the next created order will get
	NextOrderNumber() int
}
