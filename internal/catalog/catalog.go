// Package catalog defines the example record types that exercise every
// currency source: model currency, field currency, registry default and a
// per-row currency column.
package catalog

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/monetize"
	"github.com/iho/moneyfield/internal/record"
)

// Table names.
const (
	Products      = "products"
	Services      = "services"
	Transactions  = "transactions"
	DummyProducts = "dummy_products"
)

// Catalog holds the example models.
type Catalog struct {
	Product      *monetize.Model
	Service      *monetize.Model
	Transaction  *monetize.Model
	DummyProduct *monetize.Model

	models map[string]*monetize.Model
}

// New defines every model against registry. opts are applied to each model
// before its own options.
func New(registry *domain.Registry, opts ...monetize.ModelOption) (*Catalog, error) {
	c := &Catalog{models: make(map[string]*monetize.Model)}
	var err error

	if c.Product, err = newProduct(registry, opts); err != nil {
		return nil, err
	}
	if c.Service, err = newService(registry, opts); err != nil {
		return nil, err
	}
	if c.Transaction, err = newTransaction(registry, opts); err != nil {
		return nil, err
	}
	if c.DummyProduct, err = newDummyProduct(registry, opts); err != nil {
		return nil, err
	}

	for _, m := range []*monetize.Model{c.Product, c.Service, c.Transaction, c.DummyProduct} {
		c.models[m.Name()] = m
	}

	return c, nil
}

// Model looks a model up by table name.
func (c *Catalog) Model(table string) (*monetize.Model, error) {
	m, ok := c.models[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownModel, table)
	}
	return m, nil
}

// Names returns the table names in alphabetical order.
func (c *Catalog) Names() []string {
	names := lo.Keys(c.models)
	sort.Strings(names)
	return names
}

func newProduct(registry *domain.Registry, opts []monetize.ModelOption) (*monetize.Model, error) {
	schema, err := record.NewSchema(Products,
		record.Integer("price_cents"),
		record.Integer("discount"),
		record.Integer("bonus_cents"),
		record.Integer("optional_price_cents"),
	)
	if err != nil {
		return nil, err
	}

	m, err := monetize.NewModel(schema, registry, append(opts[:len(opts):len(opts)], monetize.WithModelCurrency("USD"))...)
	if err != nil {
		return nil, err
	}

	err = m.DeclareAll(
		monetize.FieldSpec{Column: "price_cents"},
		monetize.FieldSpec{Column: "discount", As: "discount_value"},
		monetize.FieldSpec{Column: "bonus_cents", Currency: "GBP"},
		monetize.FieldSpec{Column: "optional_price_cents", AllowNil: true},
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func newService(registry *domain.Registry, opts []monetize.ModelOption) (*monetize.Model, error) {
	schema, err := record.NewSchema(Services,
		record.Integer("charge_cents"),
		record.Integer("discount_cents"),
	)
	if err != nil {
		return nil, err
	}

	m, err := monetize.NewModel(schema, registry, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := m.Monetize("charge_cents", monetize.WithCurrency("USD")); err != nil {
		return nil, err
	}
	if _, err := m.Monetize("discount_cents"); err != nil {
		return nil, err
	}

	return m, nil
}

func newTransaction(registry *domain.Registry, opts []monetize.ModelOption) (*monetize.Model, error) {
	schema, err := record.NewSchema(Transactions,
		record.Integer("amount_cents"),
		record.Integer("tax_cents"),
		record.Text("currency"),
	)
	if err != nil {
		return nil, err
	}

	m, err := monetize.NewModel(schema, registry, append(opts[:len(opts):len(opts)],
		monetize.WithCurrencyColumn("currency"),
		monetize.WithStrictAssignment(),
	)...)
	if err != nil {
		return nil, err
	}

	if _, err := m.Monetize("amount_cents"); err != nil {
		return nil, err
	}
	if _, err := m.Monetize("tax_cents"); err != nil {
		return nil, err
	}

	return m, nil
}

func newDummyProduct(registry *domain.Registry, opts []monetize.ModelOption) (*monetize.Model, error) {
	schema, err := record.NewSchema(DummyProducts,
		record.Integer("price_cents"),
		record.Text("currency"),
	)
	if err != nil {
		return nil, err
	}

	m, err := monetize.NewModel(schema, registry, append(opts[:len(opts):len(opts)],
		monetize.WithCurrencyColumn("currency"),
		monetize.WithModelCurrency("GBP"),
	)...)
	if err != nil {
		return nil, err
	}

	if _, err := m.Monetize("price_cents"); err != nil {
		return nil, err
	}

	return m, nil
}
