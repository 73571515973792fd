package record

import (
	"fmt"

	"github.com/iho/moneyfield/internal/domain"
)

// IDColumn is the implicit primary key of every schema.
const IDColumn = "id"

// Kind is the storage type of a column.
type Kind int

const (
	KindInteger Kind = iota + 1
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Column describes one persisted attribute.
type Column struct {
	Name string
	Kind Kind
}

// Integer declares an integer column.
func Integer(name string) Column {
	return Column{Name: name, Kind: KindInteger}
}

// Text declares a text column.
func Text(name string) Column {
	return Column{Name: name, Kind: KindText}
}

// Validator checks a record before it is saved.
type Validator interface {
	Validate(r *Record) error
}

// Schema describes the table a record type is persisted to.
// Schemas are built once at model-definition time.
type Schema struct {
	table      string
	columns    []Column
	index      map[string]Column
	validators []Validator
}

// NewSchema creates a schema for table with the given columns.
func NewSchema(table string, columns ...Column) (*Schema, error) {
	if err := domain.ValidateIdentifier(table); err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	s := &Schema{
		table: table,
		index: make(map[string]Column, len(columns)),
	}

	for _, c := range columns {
		if err := domain.ValidateIdentifier(c.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", table, err)
		}
		if c.Name == IDColumn {
			return nil, fmt.Errorf("%w: %s: column %q is reserved", domain.ErrConfiguration, table, IDColumn)
		}
		if c.Kind != KindInteger && c.Kind != KindText {
			return nil, fmt.Errorf("%w: %s.%s: unknown column kind", domain.ErrConfiguration, table, c.Name)
		}
		if _, dup := s.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate column %q", domain.ErrConfiguration, table, c.Name)
		}
		s.index[c.Name] = c
		s.columns = append(s.columns, c)
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(table string, columns ...Column) *Schema {
	s, err := NewSchema(table, columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Table returns the table name.
func (s *Schema) Table() string {
	return s.table
}

// Columns returns the declared columns in declaration order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks a column up by name.
func (s *Schema) Column(name string) (Column, bool) {
	c, ok := s.index[name]
	return c, ok
}

// AddValidator attaches a save-time validation rule.
func (s *Schema) AddValidator(v Validator) {
	s.validators = append(s.validators, v)
}
