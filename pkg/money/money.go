// Package money holds the currency and fixed-point amount value objects
// shared by the origination service. Amounts are shopspring decimals; binary
// floating point never touches a monetary value.
package money

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places of a minor currency unit.
const CentPlaces int32 = 2

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string { return c.code }

// String returns the currency code.
func (c Currency) String() string { return c.code }

// IsZero reports whether the currency was never set.
func (c Currency) IsZero() bool { return c.code == "" }

// Common currencies.
var (
	MXN = MustCurrency("MXN")
	USD = MustCurrency("USD")
	EUR = MustCurrency("EUR")
)

// Money is an immutable amount tagged with its currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates a Money value from a decimal amount and currency.
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// RoundCents rounds half-up to the minor unit.
func (m Money) RoundCents() Money {
	return Money{amount: RoundCents(m.amount), currency: m.currency}
}

// String formats the value as "<amount> <currency>" with two decimals, e.g. "2412.47 MXN".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(CentPlaces), m.currency.Code())
}

// RoundCents rounds d half-up (away from zero) to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// Cent is one minor currency unit.
var Cent = decimal.New(1, -CentPlaces)
