// Package models contains the JSON document models persisted by the file repository.
// These models are separate from domain entities to keep the domain layer pure and free
// from storage concerns.
//
// Key Principles:
// 1. Domain entities carry no json tags and expose no setters
// 2. Document models mirror the on-disk JSON layout exactly
// 3. FromDomain / ToDomain convert between the two; ToDomain re-runs domain validation
// 4. Orders reference clients by number and products by name, never by embedding them
//
// Structure:
// - client.go: ClientDocument
// - product.go: ProductDocument (unit and per-kg, legacy price_per_kg)
// - order.go: OrderDocument with schema version
// - validation.go: structural checks shared by all documents
package models
