package monetize_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/monetize"
	"github.com/iho/moneyfield/internal/record"
)

func newRegistry(t *testing.T, def string) *domain.Registry {
	t.Helper()
	r, err := domain.NewRegistry(def)
	require.NoError(t, err)
	return r
}

func newSchema(t *testing.T, columns ...record.Column) *record.Schema {
	t.Helper()
	s, err := record.NewSchema("items", columns...)
	require.NoError(t, err)
	return s
}

type recordingObserver struct {
	assignments []string
	failures    []string
	errs        []error
}

func (o *recordingObserver) ObserveAssignment(model, field, input string, err error) {
	o.assignments = append(o.assignments, model+"."+field+":"+input)
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) ObserveValidationFailure(model, column string) {
	o.failures = append(o.failures, model+"."+column)
}

type memStore struct {
	saved []*record.Record
}

func (s *memStore) Save(_ context.Context, r *record.Record) error {
	s.saved = append(s.saved, r)
	return nil
}

func (s *memStore) Find(context.Context, *record.Schema, string) (*record.Record, error) {
	return nil, domain.ErrRecordNotFound
}

func TestNewModel(t *testing.T) {
	reg := newRegistry(t, "EUR")
	schema := newSchema(t, record.Integer("price_cents"), record.Text("currency"))

	t.Run("requires schema and registry", func(t *testing.T) {
		_, err := monetize.NewModel(nil, reg)
		assert.ErrorIs(t, err, domain.ErrConfiguration)

		_, err = monetize.NewModel(schema, nil)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("unknown model currency", func(t *testing.T) {
		_, err := monetize.NewModel(schema, reg, monetize.WithModelCurrency("XYZ"))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.ErrorIs(t, err, domain.ErrUnknownCurrency)
	})

	t.Run("currency column must exist", func(t *testing.T) {
		_, err := monetize.NewModel(schema, reg, monetize.WithCurrencyColumn("code"))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("currency column must be text", func(t *testing.T) {
		_, err := monetize.NewModel(schema, reg, monetize.WithCurrencyColumn("price_cents"))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("accessors", func(t *testing.T) {
		m, err := monetize.NewModel(schema, reg, monetize.WithCurrencyColumn("currency"))
		require.NoError(t, err)
		assert.Equal(t, "items", m.Name())
		assert.Same(t, schema, m.Schema())
		assert.Same(t, reg, m.Registry())
		assert.Equal(t, "currency", m.CurrencyColumn())
	})
}

func TestRegisterCurrency(t *testing.T) {
	reg := newRegistry(t, "EUR")
	m, err := monetize.NewModel(newSchema(t, record.Integer("price_cents")), reg)
	require.NoError(t, err)

	assert.Equal(t, "EUR", m.Currency().Code, "registry default without registration")

	require.NoError(t, m.RegisterCurrency("usd"))
	assert.Equal(t, "USD", m.Currency().Code)

	require.NoError(t, m.RegisterCurrency("usd"))
	assert.Equal(t, "USD", m.Currency().Code, "registration is idempotent")

	require.NoError(t, m.RegisterCurrency("GBP"))
	assert.Equal(t, "GBP", m.Currency().Code, "last registration wins")

	err = m.RegisterCurrency("nope")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, "GBP", m.Currency().Code, "failed registration keeps the previous currency")
}

func TestRegisterCurrencyDoesNotAffectMaterializedMoney(t *testing.T) {
	reg := newRegistry(t, "EUR")
	m, err := monetize.NewModel(newSchema(t, record.Integer("price_cents")), reg, monetize.WithModelCurrency("USD"))
	require.NoError(t, err)
	_, err = m.Monetize("price_cents")
	require.NoError(t, err)

	r := record.New(m.Schema())
	require.NoError(t, r.SetInt("price_cents", 100))

	before, err := m.Get(r, "price")
	require.NoError(t, err)

	require.NoError(t, m.RegisterCurrency("GBP"))

	after, err := m.Get(r, "price")
	require.NoError(t, err)
	assert.Equal(t, "USD", before.CurrencyCode())
	assert.Equal(t, "GBP", after.CurrencyCode())
}

func TestMonetizeDeclaration(t *testing.T) {
	reg := newRegistry(t, "EUR")

	build := func(t *testing.T) *monetize.Model {
		schema := newSchema(t,
			record.Integer("price_cents"),
			record.Integer("discount"),
			record.Integer("price"),
			record.Text("note"),
		)
		m, err := monetize.NewModel(schema, reg)
		require.NoError(t, err)
		return m
	}

	t.Run("derives accessor from cents suffix", func(t *testing.T) {
		m := build(t)
		_, err := m.Monetize("discount", monetize.As("discount_value"))
		require.NoError(t, err)

		f, ok := m.Field("discount_value")
		require.True(t, ok)
		assert.Equal(t, "discount", f.Column())
		assert.False(t, f.AllowNil())
		assert.False(t, f.Strict())
		_, fixed := f.FixedCurrency()
		assert.False(t, fixed)
	})

	tests := []struct {
		name   string
		column string
		opts   []monetize.FieldOption
	}{
		{"unknown column", "missing_cents", nil},
		{"text column", "note", nil},
		{"no cents suffix and no accessor", "discount", nil},
		{"accessor collides with column", "price_cents", nil},
		{"invalid accessor", "discount", []monetize.FieldOption{monetize.As("Discount Value")}},
		{"unknown fixed currency", "discount", []monetize.FieldOption{monetize.As("d"), monetize.WithCurrency("XYZ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := build(t)
			_, err := m.Monetize(tt.column, tt.opts...)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Empty(t, m.Fields())
		})
	}

	t.Run("duplicate accessor", func(t *testing.T) {
		m := build(t)
		_, err := m.Monetize("discount", monetize.As("amount"))
		require.NoError(t, err)
		_, err = m.Monetize("price_cents", monetize.As("amount"))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("column monetized twice", func(t *testing.T) {
		m := build(t)
		_, err := m.Monetize("discount", monetize.As("a"))
		require.NoError(t, err)
		_, err = m.Monetize("discount", monetize.As("b"))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("fixed currency is resolved at declaration", func(t *testing.T) {
		m := build(t)
		f, err := m.Monetize("discount", monetize.As("d"), monetize.WithCurrency("gbp"))
		require.NoError(t, err)
		c, ok := f.FixedCurrency()
		require.True(t, ok)
		assert.Equal(t, "GBP", c.Code)
	})
}

func TestDeclareAll(t *testing.T) {
	reg := newRegistry(t, "EUR")

	tests := []struct {
		name string
		spec monetize.FieldSpec
	}{
		{"missing column", monetize.FieldSpec{}},
		{"accessor equal to column", monetize.FieldSpec{Column: "amount", As: "amount"}},
		{"malformed currency", monetize.FieldSpec{Column: "amount_cents", Currency: "DOLLAR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := monetize.NewModel(newSchema(t, record.Integer("amount_cents"), record.Integer("amount")), reg)
			require.NoError(t, err)
			assert.ErrorIs(t, m.DeclareAll(tt.spec), domain.ErrConfiguration)
		})
	}

	t.Run("declares every spec", func(t *testing.T) {
		m, err := monetize.NewModel(newSchema(t, record.Integer("amount_cents"), record.Integer("tax_cents")), reg)
		require.NoError(t, err)
		require.NoError(t, m.DeclareAll(
			monetize.FieldSpec{Column: "amount_cents", Currency: "USD", Strict: true},
			monetize.FieldSpec{Column: "tax_cents", AllowNil: true},
		))

		names := []string{}
		for _, f := range m.Fields() {
			names = append(names, f.Name())
		}
		assert.Equal(t, []string{"amount", "tax"}, names)

		amount, _ := m.Field("amount")
		assert.True(t, amount.Strict())
		tax, _ := m.Field("tax")
		assert.True(t, tax.AllowNil())
	})
}

func TestStrictModelAndLenientField(t *testing.T) {
	reg := newRegistry(t, "EUR")
	m, err := monetize.NewModel(newSchema(t, record.Integer("a_cents"), record.Integer("b_cents")), reg, monetize.WithStrictAssignment())
	require.NoError(t, err)

	a, err := m.Monetize("a_cents")
	require.NoError(t, err)
	b, err := m.Monetize("b_cents", monetize.Lenient())
	require.NoError(t, err)

	assert.True(t, a.Strict())
	assert.False(t, b.Strict())
}

func TestAssign(t *testing.T) {
	reg := newRegistry(t, "USD")
	schema := newSchema(t, record.Integer("price_cents"), record.Integer("optional_cents"), record.Text("currency"))
	m, err := monetize.NewModel(schema, reg, monetize.WithCurrencyColumn("currency"))
	require.NoError(t, err)
	_, err = m.Monetize("price_cents")
	require.NoError(t, err)
	_, err = m.Monetize("optional_cents", monetize.AllowNil())
	require.NoError(t, err)

	t.Run("columns are assigned before accessors", func(t *testing.T) {
		r, err := m.New(map[string]any{"price": 5, "currency": "EUR", "optional": ""})
		require.NoError(t, err)

		cents, ok := r.Int("price_cents")
		require.True(t, ok)
		assert.Equal(t, int64(500), cents)

		price, err := m.Get(r, "price")
		require.NoError(t, err)
		assert.Equal(t, "EUR", price.CurrencyCode())

		optional, err := m.Get(r, "optional")
		require.NoError(t, err)
		assert.Nil(t, optional)
	})

	t.Run("raw column assignment", func(t *testing.T) {
		r, err := m.New(map[string]any{"price_cents": "3000"})
		require.NoError(t, err)
		cents, _ := r.Int("price_cents")
		assert.Equal(t, int64(3000), cents)
	})

	t.Run("unknown attribute", func(t *testing.T) {
		_, err := m.New(map[string]any{"colour": "red"})
		assert.ErrorIs(t, err, domain.ErrUnknownField)
	})

	t.Run("unsupported value type", func(t *testing.T) {
		_, err := m.New(map[string]any{"price": struct{}{}})
		assert.ErrorIs(t, err, domain.ErrInvalidAssignment)
	})

	t.Run("unknown accessor on Get and Set", func(t *testing.T) {
		r := record.New(schema)
		_, err := m.Get(r, "nope")
		assert.ErrorIs(t, err, domain.ErrUnknownField)
		assert.ErrorIs(t, m.Set(r, "nope", 1), domain.ErrUnknownField)
	})
}

func TestSaveReportsToObserver(t *testing.T) {
	reg := newRegistry(t, "USD")
	obs := &recordingObserver{}
	m, err := monetize.NewModel(newSchema(t, record.Integer("price_cents")), reg, monetize.WithObserver(obs))
	require.NoError(t, err)
	_, err = m.Monetize("price_cents")
	require.NoError(t, err)

	store := &memStore{}
	r := record.New(m.Schema())

	require.NoError(t, m.Set(r, "price", "foo"))
	err = m.Save(context.Background(), store, r)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"items.price_cents"}, obs.failures)
	assert.Empty(t, store.saved)

	require.NoError(t, m.Set(r, "price", 25))
	require.NoError(t, m.Save(context.Background(), store, r))
	assert.Len(t, store.saved, 1)

	assert.Equal(t, []string{"items.price:text", "items.price:integer"}, obs.assignments)

	err = m.Set(r, "price", 1.5)
	require.Error(t, err)
	assert.Equal(t, "items.price:other", obs.assignments[2])
	assert.True(t, errors.Is(obs.errs[2], domain.ErrInvalidAssignment))
}

func TestSaveRejectsForeignRecord(t *testing.T) {
	reg := newRegistry(t, "USD")
	m, err := monetize.NewModel(newSchema(t, record.Integer("price_cents")), reg)
	require.NoError(t, err)

	other := record.New(newSchema(t, record.Integer("price_cents")))
	err = m.Save(context.Background(), &memStore{}, other)
	assert.ErrorIs(t, err, domain.ErrInvalidAssignment)
}
