package monetize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/record"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Field is the descriptor of one monetized attribute. It is created at
// model-definition time and never changes afterwards.
type Field struct {
	model    *Model
	name     string
	column   string
	currency *domain.Currency
	allowNil bool
	strict   bool
}

type fieldConfig struct {
	as       string
	currency string
	allowNil bool
	strict   bool
}

// FieldOption configures a monetized field.
type FieldOption func(*fieldConfig)

// As names the accessor. The default strips the "_cents" suffix from the column.
func As(name string) FieldOption {
	return func(c *fieldConfig) { c.as = name }
}

// WithCurrency fixes the field currency, overriding model and registry defaults.
func WithCurrency(code string) FieldOption {
	return func(c *fieldConfig) { c.currency = code }
}

// AllowNil lets nil and blank input clear the column instead of failing validation.
func AllowNil() FieldOption {
	return func(c *fieldConfig) { c.allowNil = true }
}

// Strict rejects integer and text input; only Money or empty input is accepted.
func Strict() FieldOption {
	return func(c *fieldConfig) { c.strict = true }
}

// Lenient accepts integer and text input even on a strict model.
func Lenient() FieldOption {
	return func(c *fieldConfig) { c.strict = false }
}

// FieldSpec is the declarative form of a Monetize call.
type FieldSpec struct {
	Column   string `validate:"required"`
	As       string `validate:"omitempty,nefield=Column"`
	Currency string `validate:"omitempty,len=3,alpha"`
	AllowNil bool
	Strict   bool
}

func (s FieldSpec) options() []FieldOption {
	var opts []FieldOption
	if s.As != "" {
		opts = append(opts, As(s.As))
	}
	if s.Currency != "" {
		opts = append(opts, WithCurrency(s.Currency))
	}
	if s.AllowNil {
		opts = append(opts, AllowNil())
	}
	if s.Strict {
		opts = append(opts, Strict())
	}
	return opts
}

// DeclareAll validates and declares every spec, stopping at the first error.
func (m *Model) DeclareAll(specs ...FieldSpec) error {
	for _, spec := range specs {
		if err := validate.Struct(spec); err != nil {
			return fmt.Errorf("%w: %s.%s: %w", domain.ErrConfiguration, m.Name(), spec.Column, err)
		}
		if _, err := m.Monetize(spec.Column, spec.options()...); err != nil {
			return err
		}
	}
	return nil
}

// Monetize declares a Money accessor backed by the integer column and
// attaches a numericality validation to that column.
func (m *Model) Monetize(column string, opts ...FieldOption) (*Field, error) {
	cfg := fieldConfig{strict: m.strict}
	for _, opt := range opts {
		opt(&cfg)
	}

	table := m.schema.Table()

	col, ok := m.schema.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s: column %q does not exist", domain.ErrConfiguration, table, column)
	}
	if col.Kind != record.KindInteger {
		return nil, fmt.Errorf("%w: %s: column %q must be an integer column", domain.ErrConfiguration, table, column)
	}
	if _, dup := m.byColumn[column]; dup {
		return nil, fmt.Errorf("%w: %s: column %q is already monetized", domain.ErrConfiguration, table, column)
	}

	name := cfg.as
	if name == "" {
		name = strings.TrimSuffix(column, domain.CentsSuffix)
		if name == column {
			return nil, fmt.Errorf("%w: %s: column %q does not end in %q, name the accessor with As", domain.ErrConfiguration, table, column, domain.CentsSuffix)
		}
	}
	if err := domain.ValidateIdentifier(name); err != nil {
		return nil, fmt.Errorf("%s: accessor: %w", table, err)
	}
	if _, clash := m.schema.Column(name); clash {
		return nil, fmt.Errorf("%w: %s: accessor %q collides with a column", domain.ErrConfiguration, table, name)
	}
	if _, dup := m.byName[name]; dup {
		return nil, fmt.Errorf("%w: %s: accessor %q is already declared", domain.ErrConfiguration, table, name)
	}

	f := &Field{
		model:    m,
		name:     name,
		column:   column,
		allowNil: cfg.allowNil,
		strict:   cfg.strict,
	}

	if cfg.currency != "" {
		c, err := m.registry.Find(cfg.currency)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %w", domain.ErrConfiguration, table, name, err)
		}
		f.currency = &c
	}

	m.fields = append(m.fields, f)
	m.byName[name] = f
	m.byColumn[column] = f
	m.schema.AddValidator(record.Numericality(column, cfg.allowNil))

	m.logger.Debug().
		Str("field", name).
		Str("column", column).
		Bool("allow_nil", cfg.allowNil).
		Bool("strict", cfg.strict).
		Msg("monetized field declared")

	return f, nil
}

// Name returns the accessor name.
func (f *Field) Name() string { return f.name }

// Column returns the backing column.
func (f *Field) Column() string { return f.column }

// AllowNil reports whether nil input is valid.
func (f *Field) AllowNil() bool { return f.allowNil }

// Strict reports whether only Money input is accepted.
func (f *Field) Strict() bool { return f.strict }

// FixedCurrency returns the currency declared with WithCurrency.
func (f *Field) FixedCurrency() (domain.Currency, bool) {
	if f.currency == nil {
		return domain.Currency{}, false
	}
	return *f.currency, true
}

// Currency resolves the currency in effect for r: the row currency column,
// then the field currency, then the model currency, then the registry default.
func (f *Field) Currency(r *record.Record) (domain.Currency, error) {
	if col := f.model.currencyColumn; col != "" {
		if code, ok := r.Text(col); ok && !domain.IsBlank(code) {
			c, err := f.model.registry.Find(code)
			if err != nil {
				f.model.logger.Warn().Str("field", f.name).Str("currency", code).Str("id", r.ID()).Msg("row currency cannot be resolved")
				return domain.Currency{}, fmt.Errorf("%s.%s: %w", f.model.Name(), col, err)
			}
			return c, nil
		}
	}
	return f.fixedCurrency(), nil
}

func (f *Field) fixedCurrency() domain.Currency {
	if f.currency != nil {
		return *f.currency
	}
	return f.model.Currency()
}

// Get returns the Money view of the backing column, or nil when the column
// is nil or holds input that failed to typecast.
func (f *Field) Get(r *record.Record) (*domain.Money, error) {
	if err := f.checkRecord(r); err != nil {
		return nil, err
	}

	cents, ok := r.Int(f.column)
	if !ok {
		return nil, nil
	}

	c, err := f.Currency(r)
	if err != nil {
		return nil, err
	}

	m := domain.NewMoney(cents, c)
	return &m, nil
}

// Set writes in to the backing column. Type errors are returned at once;
// unparseable amounts are left for validation to report on save.
func (f *Field) Set(r *record.Record, in Input) error {
	err := f.checkRecord(r)
	if err == nil {
		err = f.set(r, in)
	}
	if err != nil {
		f.model.logger.Debug().Err(err).Str("field", f.name).Str("input", in.Kind().String()).Msg("assignment rejected")
	}
	f.model.observer.ObserveAssignment(f.model.Name(), f.name, in.Kind().String(), err)
	return err
}

func (f *Field) set(r *record.Record, in Input) error {
	switch in.kind {
	case InputMoney:
		return f.setMoney(r, in.money)
	case InputInteger:
		if f.strict {
			return f.rejectStrict(in)
		}
		c, err := f.Currency(r)
		if err != nil {
			return err
		}
		cents, err := c.ToMinor(decimal.NewFromInt(in.integer))
		if err != nil {
			return r.SetInvalid(f.column, strconv.FormatInt(in.integer, 10))
		}
		return r.SetInt(f.column, cents)
	case InputText:
		blank := domain.IsBlank(in.text)
		if blank && f.allowNil {
			return r.SetNull(f.column)
		}
		if f.strict {
			return f.rejectStrict(in)
		}
		if blank {
			return r.SetInvalid(f.column, in.text)
		}
		c, err := f.Currency(r)
		if err != nil {
			return err
		}
		cents, err := c.ParseMajor(in.text)
		if err != nil {
			return r.SetInvalid(f.column, in.text)
		}
		return r.SetInt(f.column, cents)
	case InputEmpty:
		return r.SetNull(f.column)
	default:
		return fmt.Errorf("%w: %s.%s: unknown input kind %d", domain.ErrInvalidAssignment, f.model.Name(), f.name, in.kind)
	}
}

func (f *Field) setMoney(r *record.Record, m domain.Money) error {
	c, err := f.model.registry.Find(m.CurrencyCode())
	if err != nil {
		return fmt.Errorf("%w: %s.%s: %w", domain.ErrInvalidAssignment, f.model.Name(), f.name, err)
	}

	if col := f.model.currencyColumn; col != "" {
		if err := r.SetText(col, c.Code); err != nil {
			return err
		}
		return r.SetInt(f.column, m.Cents())
	}

	if fixed := f.fixedCurrency(); fixed.Code != c.Code {
		return fmt.Errorf("%w: %w: %s.%s holds %s, got %s", domain.ErrInvalidAssignment, domain.ErrCurrencyMismatch, f.model.Name(), f.name, fixed.Code, c.Code)
	}
	return r.SetInt(f.column, m.Cents())
}

func (f *Field) rejectStrict(in Input) error {
	return fmt.Errorf("%w: %s.%s accepts only Money, got %s input", domain.ErrInvalidAssignment, f.model.Name(), f.name, in.Kind())
}

func (f *Field) checkRecord(r *record.Record) error {
	if r == nil || r.Schema() != f.model.schema {
		return fmt.Errorf("%w: record does not belong to %s", domain.ErrInvalidAssignment, f.model.Name())
	}
	return nil
}
