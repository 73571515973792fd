package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units of a currency.
// The zero value is not meaningful; construct with NewMoney.
type Money struct {
	cents    int64
	currency Currency
}

// NewMoney creates a Money of cents minor units.
func NewMoney(cents int64, currency Currency) Money {
	return Money{cents: cents, currency: currency}
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return m.cents
}

// Currency returns the currency of the amount.
func (m Money) Currency() Currency {
	return m.currency
}

// CurrencyCode returns the uppercase ISO code.
func (m Money) CurrencyCode() string {
	return m.currency.Code
}

// Amount returns the amount in major units.
func (m Money) Amount() decimal.Decimal {
	return decimal.New(m.cents, -m.currency.Exponent)
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m.cents == other.cents && m.currency.Code == other.currency.Code
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// String formats as "25.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount().StringFixed(m.currency.Exponent), m.currency.Code)
}

// Format formats with the currency symbol, e.g. "$25.00".
func (m Money) Format() string {
	amount := m.Amount()
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	symbol := m.currency.Symbol
	if symbol == "" {
		symbol = m.currency.Code + " "
	}
	return sign + symbol + amount.StringFixed(m.currency.Exponent)
}
