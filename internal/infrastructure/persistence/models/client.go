package models

import (
	"github.com/erp/retail/internal/domain/partner"
)

// ClientDocument is one record of the clients document
type ClientDocument struct {
	Number int    `json:"number" validate:"gt=0"`
	FIO    string `json:"fio" validate:"required"`
	Phone  string `json:"phone" validate:"omitempty,ru_phone"`
	Email  string `json:"email" validate:"omitempty,shop_email"`
}

// ToDomain converts the document to a validated domain Client.
// A tampered record fails here rather than producing an invalid client.
func (d *ClientDocument) ToDomain() (*partner.Client, error) {
	if err := validateDocument(d); err != nil {
		return nil, err
	}
	return partner.NewClient(d.Number, d.FIO, d.Phone, d.Email)
}

// FromDomain populates the document from a domain Client
func (d *ClientDocument) FromDomain(c *partner.Client) {
	d.Number = c.Number()
	d.FIO = c.FIO()
	d.Phone = c.Phone()
	d.Email = c.Email()
}

// ClientDocumentFromDomain creates a new document from a domain Client
func ClientDocumentFromDomain(c *partner.Client) *ClientDocument {
	d := &ClientDocument{}
	d.FromDomain(c)
	return d
}
