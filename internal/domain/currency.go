package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes an ISO 4217 currency and its minor unit.
type Currency struct {
	Code     string
	Name     string
	Symbol   string
	Exponent int32
}

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// SubunitToUnit returns how many minor units make one major unit.
func (c Currency) SubunitToUnit() int64 {
	n := int64(1)
	for i := int32(0); i < c.Exponent; i++ {
		n *= 10
	}
	return n
}

// maxMinorDigits is the digit count of math.MaxInt64.
const maxMinorDigits = 19

// ToMinor converts a major-unit amount to minor units, rounding half to even.
// The magnitude is checked from digit count and exponent before any rescaling,
// so inputs like 1e20000000 fail without materializing the value.
func (c Currency) ToMinor(major decimal.Decimal) (int64, error) {
	if major.IsZero() {
		return 0, nil
	}
	// |major| * 10^Exponent < 10^magnitude
	magnitude := int64(major.NumDigits()) + int64(major.Exponent()) + int64(c.Exponent)
	if magnitude > maxMinorDigits {
		return 0, fmt.Errorf("%w: %s %s", ErrAmountOutOfRange, major, c.Code)
	}
	if magnitude < 0 {
		// below 0.1 minor units, rounds to zero
		return 0, nil
	}

	minor := major.Shift(c.Exponent).RoundBank(0)
	if minor.LessThan(minCents) || minor.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s %s", ErrAmountOutOfRange, major, c.Code)
	}
	return minor.IntPart(), nil
}

// ParseMajor parses a major-unit amount such as "25", "25.50", "$25.50", "-$25.50",
// "USD 25.50" or "25.50 USD" and converts it to minor units. It reads back
// both String and Format output.
func (c Currency) ParseMajor(text string) (int64, error) {
	s := strings.TrimSpace(text)
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], strings.TrimSpace(s[1:])
	}
	if c.Symbol != "" {
		s = strings.TrimPrefix(s, c.Symbol)
	}
	if len(s) > len(c.Code) && strings.EqualFold(s[:len(c.Code)], c.Code) {
		s = s[len(c.Code):]
	}
	if len(s) > len(c.Code) && strings.EqualFold(s[len(s)-len(c.Code):], c.Code) {
		s = s[:len(s)-len(c.Code)]
	}
	s = sign + strings.TrimSpace(s)

	major, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, text)
	}

	return c.ToMinor(major)
}

// String returns the ISO code.
func (c Currency) String() string {
	return c.Code
}

// StandardCurrencies returns the ISO 4217 currencies known out of the box.
func StandardCurrencies() []Currency {
	return []Currency{
		{Code: "AUD", Name: "Australian Dollar", Symbol: "A$", Exponent: 2},
		{Code: "BHD", Name: "Bahraini Dinar", Symbol: "BD", Exponent: 3},
		{Code: "BRL", Name: "Brazilian Real", Symbol: "R$", Exponent: 2},
		{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$", Exponent: 2},
		{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF", Exponent: 2},
		{Code: "CLP", Name: "Chilean Peso", Symbol: "CLP$", Exponent: 0},
		{Code: "CNY", Name: "Chinese Renminbi Yuan", Symbol: "¥", Exponent: 2},
		{Code: "EUR", Name: "Euro", Symbol: "€", Exponent: 2},
		{Code: "GBP", Name: "British Pound", Symbol: "£", Exponent: 2},
		{Code: "HKD", Name: "Hong Kong Dollar", Symbol: "HK$", Exponent: 2},
		{Code: "INR", Name: "Indian Rupee", Symbol: "₹", Exponent: 2},
		{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Exponent: 0},
		{Code: "KRW", Name: "South Korean Won", Symbol: "₩", Exponent: 0},
		{Code: "KWD", Name: "Kuwaiti Dinar", Symbol: "KD", Exponent: 3},
		{Code: "MXN", Name: "Mexican Peso", Symbol: "MX$", Exponent: 2},
		{Code: "NOK", Name: "Norwegian Krone", Symbol: "kr", Exponent: 2},
		{Code: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$", Exponent: 2},
		{Code: "RUB", Name: "Russian Ruble", Symbol: "₽", Exponent: 2},
		{Code: "SEK", Name: "Swedish Krona", Symbol: "kr", Exponent: 2},
		{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$", Exponent: 2},
		{Code: "TRY", Name: "Turkish Lira", Symbol: "₺", Exponent: 2},
		{Code: "USD", Name: "United States Dollar", Symbol: "$", Exponent: 2},
		{Code: "ZAR", Name: "South African Rand", Symbol: "R", Exponent: 2},
	}
}
