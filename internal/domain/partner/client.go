package partner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/retail/internal/domain/shared"
)

// Client is a shop customer identified by a positive number.
// A Client is immutable once constructed; orders share it by reference.
type Client struct {
	number int
	fio    string
	phone  string
	email  string
}

// NewClient creates a validated client.
// The full name and phone are trimmed; the email is trimmed and lower-cased.
// Phone and email may be empty.
func NewClient(number int, fio, phone, email string) (*Client, error) {
	fio = strings.TrimSpace(fio)
	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))

	if number <= 0 {
		return nil, shared.NewFieldError(shared.CodeInvalidNumber, "number", strconv.Itoa(number),
			fmt.Sprintf("Client number must be positive, got %d", number))
	}
	if fio == "" {
		return nil, shared.NewFieldError(shared.CodeInvalidName, "fio", fio, "Client full name cannot be empty")
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	return &Client{
		number: number,
		fio:    fio,
		phone:  phone,
		email:  email,
	}, nil
}

// Number returns the client identifier
func (c *Client) Number() int {
	return c.number
}

// FIO returns the client's full name
func (c *Client) FIO() string {
	return c.fio
}

// Phone returns the phone number, possibly empty
func (c *Client) Phone() string {
	return c.phone
}

// Email returns the lower-cased email, possibly empty
func (c *Client) Email() string {
	return c.email
}

// String returns a short human-readable representation
func (c *Client) String() string {
	return fmt.Sprintf("Client(%d: %s)", c.number, c.fio)
}
