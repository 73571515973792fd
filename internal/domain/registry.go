package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Registry resolves currency codes to currency metadata.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	currencies map[string]Currency
	def        Currency
}

// NewRegistry creates a registry holding currencies, falling back to
// StandardCurrencies when none are given. defaultCode must be one of them.
func NewRegistry(defaultCode string, currencies ...Currency) (*Registry, error) {
	if len(currencies) == 0 {
		currencies = StandardCurrencies()
	}

	r := &Registry{currencies: make(map[string]Currency, len(currencies))}
	for _, c := range currencies {
		code := normalizeCode(c.Code)
		if err := ValidateCurrencyCode(code); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		if c.Exponent < 0 {
			return nil, fmt.Errorf("%w: negative exponent for %s", ErrConfiguration, code)
		}
		if _, dup := r.currencies[code]; dup {
			return nil, fmt.Errorf("%w: duplicate currency %s", ErrConfiguration, code)
		}
		c.Code = code
		r.currencies[code] = c
	}

	def, err := r.Find(defaultCode)
	if err != nil {
		return nil, fmt.Errorf("%w: default currency: %w", ErrConfiguration, err)
	}
	r.def = def

	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(defaultCode string, currencies ...Currency) *Registry {
	r, err := NewRegistry(defaultCode, currencies...)
	if err != nil {
		panic(err)
	}
	return r
}

// Find looks a currency up by code, ignoring case and surrounding whitespace.
func (r *Registry) Find(code string) (Currency, error) {
	c, ok := r.currencies[normalizeCode(code)]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

// Default returns the process-wide default currency.
func (r *Registry) Default() Currency {
	return r.def
}

// List returns all currencies sorted by code.
func (r *Registry) List() []Currency {
	list := lo.Values(r.currencies)
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
