package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	RUB Currency = "RUB" // Russian Ruble (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = RUB

// MoneyPlaces is the number of decimal places totals are rounded to
const MoneyPlaces int32 = 2

var currencySymbols = map[Currency]string{
	RUB: "₽",
	USD: "$",
	EUR: "€",
}

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromFloat creates Money from a float64 value
func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// NewMoneyRUB creates Money in rubles
func NewMoneyRUB(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: RUB}
}

// NewMoneyRUBFromFloat creates Money in rubles from float64
func NewMoneyRUBFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: RUB}
}

// ZeroRUB returns a zero-value Money in rubles
func ZeroRUB() Money {
	return Money{amount: decimal.Zero, currency: RUB}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Add(other.amount),
		currency: m.currency,
	}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(factor),
		currency: m.currency,
	}
}

// Round returns a new Money rounded half away from zero to the specified decimal places
func (m Money) Round(places int32) Money {
	return Money{
		amount:   m.amount.Round(places),
		currency: m.currency,
	}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MoneyPlaces), m.currency)
}

// Float64 returns the amount as a float64 (may lose precision)
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Display formats the amount for people: grouped digits in the Russian convention
// followed by the currency symbol, e.g. "75 175,00 ₽".
func (m Money) Display() string {
	return FormatAmount(m.amount, m.currency)
}

// FormatAmount renders a bare decimal in the display convention of the given currency
func FormatAmount(amount decimal.Decimal, currency Currency) string {
	p := message.NewPrinter(language.Russian)
	f, _ := amount.Round(MoneyPlaces).Float64()
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = string(currency)
	}
	return p.Sprintf("%.2f %s", f, symbol)
}
