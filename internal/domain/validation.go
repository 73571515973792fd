package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	identifierRegex   = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// CentsSuffix is the conventional suffix of backing columns.
const CentsSuffix = "_cents"

// ValidateCurrencyCode checks the shape of an ISO 4217 alphabetic code.
func ValidateCurrencyCode(code string) error {
	if !currencyCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: %q is not a three-letter currency code", ErrUnknownCurrency, code)
	}
	return nil
}

// ValidateIdentifier checks that name can serve as a column or accessor name.
func ValidateIdentifier(name string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %q is not a valid identifier", ErrConfiguration, name)
	}
	return nil
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
