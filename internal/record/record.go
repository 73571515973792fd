package record

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/moneyfield/internal/domain"
)

type state int

const (
	stateNull state = iota
	stateInt
	stateText
	stateInvalid
)

type cell struct {
	state state
	i     int64
	s     string
}

// Store persists records.
type Store interface {
	Save(ctx context.Context, r *Record) error
	Find(ctx context.Context, schema *Schema, id string) (*Record, error)
}

// Record is an instance of a schema. Columns start out nil.
// A record is not safe for concurrent mutation.
type Record struct {
	schema    *Schema
	id        string
	cells     map[string]cell
	persisted bool
	errors    ValidationErrors
}

// New creates an empty record.
func New(schema *Schema) *Record {
	return &Record{
		schema: schema,
		cells:  make(map[string]cell, len(schema.columns)),
	}
}

// Load rebuilds a persisted record from stored values (int64, string or nil).
func Load(schema *Schema, id string, values map[string]any) (*Record, error) {
	r := New(schema)
	r.id = id
	for name, v := range values {
		if err := r.Set(name, v); err != nil {
			return nil, err
		}
	}
	r.persisted = true
	return r, nil
}

// Schema returns the record's schema.
func (r *Record) Schema() *Schema {
	return r.schema
}

// ID returns the primary key, empty until assigned.
func (r *Record) ID() string {
	return r.id
}

// SetID assigns the primary key.
func (r *Record) SetID(id string) {
	r.id = id
}

// Persisted reports whether the record has been saved or loaded from a store.
func (r *Record) Persisted() bool {
	return r.persisted
}

// Set assigns v to column, typecasting it to the column kind the way an
// ORM attribute writer does. Integer strings are parsed, blank strings become
// nil and other strings are kept as invalid input for validation to report.
func (r *Record) Set(column string, v any) error {
	col, err := r.column(column)
	if err != nil {
		return err
	}

	if v == nil {
		r.cells[column] = cell{state: stateNull}
		return nil
	}

	if col.Kind == KindText {
		switch t := v.(type) {
		case string:
			r.cells[column] = cell{state: stateText, s: t}
		case fmt.Stringer:
			r.cells[column] = cell{state: stateText, s: t.String()}
		default:
			return fmt.Errorf("%w: %s.%s: cannot assign %T to text column", domain.ErrInvalidAssignment, r.schema.table, column, v)
		}
		return nil
	}

	switch t := v.(type) {
	case int:
		r.cells[column] = cell{state: stateInt, i: int64(t)}
	case int8:
		r.cells[column] = cell{state: stateInt, i: int64(t)}
	case int16:
		r.cells[column] = cell{state: stateInt, i: int64(t)}
	case int32:
		r.cells[column] = cell{state: stateInt, i: int64(t)}
	case int64:
		r.cells[column] = cell{state: stateInt, i: t}
	case uint8:
		r.cells[column] = cell{state: stateInt, i: int64(t)}
	case uint16:
		r.cells[column] = cell{state: stateInt, i: int64(t)}
	case uint32:
		r.cells[column] = cell{state: stateInt, i: int64(t)}
	case uint:
		r.setUnsigned(column, uint64(t))
	case uint64:
		r.setUnsigned(column, t)
	case decimal.Decimal:
		if t.IsInteger() && t.GreaterThanOrEqual(decimal.NewFromInt(math.MinInt64)) && t.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
			r.cells[column] = cell{state: stateInt, i: t.IntPart()}
		} else {
			r.cells[column] = cell{state: stateInvalid, s: t.String()}
		}
	case string:
		r.setString(column, t)
	default:
		return fmt.Errorf("%w: %s.%s: cannot assign %T to integer column", domain.ErrInvalidAssignment, r.schema.table, column, v)
	}

	return nil
}

func (r *Record) setUnsigned(column string, v uint64) {
	if v > math.MaxInt64 {
		r.cells[column] = cell{state: stateInvalid, s: strconv.FormatUint(v, 10)}
		return
	}
	r.cells[column] = cell{state: stateInt, i: int64(v)}
}

func (r *Record) setString(column, v string) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		r.cells[column] = cell{state: stateNull}
		return
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		r.cells[column] = cell{state: stateInvalid, s: v}
		return
	}
	r.cells[column] = cell{state: stateInt, i: n}
}

// SetInt assigns an integer to an integer column.
func (r *Record) SetInt(column string, v int64) error {
	if _, err := r.columnOfKind(column, KindInteger); err != nil {
		return err
	}
	r.cells[column] = cell{state: stateInt, i: v}
	return nil
}

// SetText assigns a string to a text column.
func (r *Record) SetText(column, v string) error {
	if _, err := r.columnOfKind(column, KindText); err != nil {
		return err
	}
	r.cells[column] = cell{state: stateText, s: v}
	return nil
}

// SetNull sets column to nil.
func (r *Record) SetNull(column string) error {
	if _, err := r.column(column); err != nil {
		return err
	}
	r.cells[column] = cell{state: stateNull}
	return nil
}

// SetInvalid stores raw input that could not be typecast, so that
// validation reports it on save.
func (r *Record) SetInvalid(column, raw string) error {
	if _, err := r.columnOfKind(column, KindInteger); err != nil {
		return err
	}
	r.cells[column] = cell{state: stateInvalid, s: raw}
	return nil
}

// Int returns the value of an integer column; ok is false when it is nil or invalid.
func (r *Record) Int(column string) (v int64, ok bool) {
	c := r.cells[column]
	if c.state != stateInt {
		return 0, false
	}
	return c.i, true
}

// Text returns the value of a text column; ok is false when it is nil.
func (r *Record) Text(column string) (v string, ok bool) {
	c := r.cells[column]
	if c.state != stateText {
		return "", false
	}
	return c.s, true
}

// IsNull reports whether column is nil.
func (r *Record) IsNull(column string) bool {
	return r.cells[column].state == stateNull
}

// Raw returns the input kept for an invalid integer column.
func (r *Record) Raw(column string) (raw string, invalid bool) {
	c := r.cells[column]
	if c.state != stateInvalid {
		return "", false
	}
	return c.s, true
}

// Values returns the storable value of every column: int64, string or nil.
// Invalid integer input is reported as its raw string.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.schema.columns))
	for _, col := range r.schema.columns {
		c := r.cells[col.Name]
		switch c.state {
		case stateInt:
			out[col.Name] = c.i
		case stateText, stateInvalid:
			out[col.Name] = c.s
		default:
			out[col.Name] = nil
		}
	}
	return out
}

// Validate runs every schema validator and collects all failures.
func (r *Record) Validate() error {
	errs := ValidationErrors{}
	for _, v := range r.schema.validators {
		if err := v.Validate(r); err != nil {
			errs = append(errs, asFieldErrors(err)...)
		}
	}
	r.errors = errs
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Errors returns the failures collected by the last validation.
func (r *Record) Errors() ValidationErrors {
	return r.errors
}

// Save validates the record and hands it to store. Validation failures are
// returned as ValidationErrors and the store is not called.
func (r *Record) Save(ctx context.Context, store Store) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := store.Save(ctx, r); err != nil {
		return fmt.Errorf("save %s: %w", r.schema.table, err)
	}
	r.persisted = true
	return nil
}

func (r *Record) column(name string) (Column, error) {
	col, ok := r.schema.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %s.%s", domain.ErrUnknownColumn, r.schema.table, name)
	}
	return col, nil
}

func (r *Record) columnOfKind(name string, kind Kind) (Column, error) {
	col, err := r.column(name)
	if err != nil {
		return Column{}, err
	}
	if col.Kind != kind {
		return Column{}, fmt.Errorf("%w: %s.%s is a %s column", domain.ErrInvalidAssignment, r.schema.table, name, col.Kind)
	}
	return col, nil
}
