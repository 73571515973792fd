// Package monetize maps integer minor-unit columns of a record to Money
// accessors, resolving the currency per row, field, model or registry.
package monetize

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/record"
)

// Observer receives assignment and validation outcomes, e.g. for metrics.
type Observer interface {
	ObserveAssignment(model, field, input string, err error)
	ObserveValidationFailure(model, column string)
}

type nopObserver struct{}

func (nopObserver) ObserveAssignment(string, string, string, error) {}
func (nopObserver) ObserveValidationFailure(string, string)         {}

// Model holds the monetized field descriptors of one record type.
type Model struct {
	schema         *record.Schema
	registry       *domain.Registry
	currency       atomic.Pointer[domain.Currency]
	currencyColumn string
	strict         bool
	fields         []*Field
	byName         map[string]*Field
	byColumn       map[string]*Field
	logger         zerolog.Logger
	observer       Observer
}

// ModelOption configures a Model.
type ModelOption func(*Model) error

// WithModelCurrency registers the model-level default currency.
func WithModelCurrency(code string) ModelOption {
	return func(m *Model) error {
		return m.RegisterCurrency(code)
	}
}

// WithCurrencyColumn names the text column holding each row's currency.
func WithCurrencyColumn(column string) ModelOption {
	return func(m *Model) error {
		col, ok := m.schema.Column(column)
		if !ok {
			return fmt.Errorf("%w: %s: currency column %q does not exist", domain.ErrConfiguration, m.schema.Table(), column)
		}
		if col.Kind != record.KindText {
			return fmt.Errorf("%w: %s: currency column %q must be text", domain.ErrConfiguration, m.schema.Table(), column)
		}
		m.currencyColumn = column
		return nil
	}
}

// WithStrictAssignment makes every field declared afterwards accept only
// Money or empty input, unless the field opts out with Lenient.
func WithStrictAssignment() ModelOption {
	return func(m *Model) error {
		m.strict = true
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ModelOption {
	return func(m *Model) error {
		m.logger = logger
		return nil
	}
}

// WithObserver sets the observer.
func WithObserver(o Observer) ModelOption {
	return func(m *Model) error {
		if o != nil {
			m.observer = o
		}
		return nil
	}
}

// NewModel creates a model over schema. The registry supplies currency
// lookups and the fallback default currency.
func NewModel(schema *record.Schema, registry *domain.Registry, opts ...ModelOption) (*Model, error) {
	if schema == nil || registry == nil {
		return nil, fmt.Errorf("%w: schema and registry are required", domain.ErrConfiguration)
	}

	m := &Model{
		schema:   schema,
		registry: registry,
		byName:   make(map[string]*Field),
		byColumn: make(map[string]*Field),
		logger:   zerolog.Nop(),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	m.logger = m.logger.With().Str("model", schema.Table()).Logger()

	return m, nil
}

// Name returns the table name of the model.
func (m *Model) Name() string {
	return m.schema.Table()
}

// Schema returns the record schema.
func (m *Model) Schema() *record.Schema {
	return m.schema
}

// Registry returns the currency registry.
func (m *Model) Registry() *domain.Registry {
	return m.registry
}

// CurrencyColumn returns the per-row currency column, empty when none.
func (m *Model) CurrencyColumn() string {
	return m.currencyColumn
}

// RegisterCurrency sets the model-level default currency. The last
// registration wins.
func (m *Model) RegisterCurrency(code string) error {
	c, err := m.registry.Find(code)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, m.schema.Table(), err)
	}
	m.currency.Store(&c)
	return nil
}

// Currency returns the model-level currency, or the registry default when
// none was registered.
func (m *Model) Currency() domain.Currency {
	if c := m.currency.Load(); c != nil {
		return *c
	}
	return m.registry.Default()
}

// Field looks up a monetized field by accessor name.
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.byName[name]
	return f, ok
}

// Fields returns the declared fields in declaration order.
func (m *Model) Fields() []*Field {
	out := make([]*Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// New builds a record from attrs, see Assign.
func (m *Model) New(attrs map[string]any) (*record.Record, error) {
	r := record.New(m.schema)
	if err := m.Assign(r, attrs); err != nil {
		return nil, err
	}
	return r, nil
}

// Assign mass-assigns attrs. Keys naming a monetized accessor go through the
// field setter, keys naming a column are written directly. Columns are
// assigned first so a currency given in the same call applies to amounts.
func (m *Model) Assign(r *record.Record, attrs map[string]any) error {
	keys := lo.Keys(attrs)
	sort.Strings(keys)

	var accessors []string
	for _, key := range keys {
		if _, ok := m.byName[key]; ok {
			accessors = append(accessors, key)
			continue
		}
		if _, ok := m.schema.Column(key); !ok {
			return fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, m.schema.Table(), key)
		}
		if err := r.Set(key, attrs[key]); err != nil {
			return err
		}
	}

	for _, key := range accessors {
		if err := m.Set(r, key, attrs[key]); err != nil {
			return err
		}
	}

	return nil
}

// Get reads the monetized accessor name.
func (m *Model) Get(r *record.Record, name string) (*domain.Money, error) {
	f, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, m.schema.Table(), name)
	}
	return f.Get(r)
}

// Set assigns a dynamically typed value to the monetized accessor name.
func (m *Model) Set(r *record.Record, name string, v any) error {
	f, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, m.schema.Table(), name)
	}
	in, err := InputOf(v)
	if err != nil {
		err = fmt.Errorf("%s.%s: %w", m.schema.Table(), name, err)
		m.observer.ObserveAssignment(m.Name(), name, "other", err)
		return err
	}
	return f.Set(r, in)
}

// Save validates r and stores it, reporting validation failures to the observer.
func (m *Model) Save(ctx context.Context, store record.Store, r *record.Record) error {
	if r.Schema() != m.schema {
		return fmt.Errorf("%w: record of %s saved through %s", domain.ErrInvalidAssignment, r.Schema().Table(), m.Name())
	}

	err := r.Save(ctx, store)

	var verrs record.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			m.observer.ObserveValidationFailure(m.Name(), fe.Column)
		}
		m.logger.Debug().Err(err).Msg("record failed validation")
	}

	return err
}
