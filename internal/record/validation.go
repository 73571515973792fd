package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/moneyfield/internal/domain"
)

// FieldError is a validation failure of one column.
type FieldError struct {
	Column string
	Err    error
}

func (e FieldError) Error() string {
	return e.Column + " " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every failure found while validating a record.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("%s: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

// Unwrap exposes domain.ErrValidation and every field failure to errors.Is.
func (e ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(e)+1)
	out = append(out, domain.ErrValidation)
	for _, fe := range e {
		out = append(out, fe)
	}
	return out
}

// On returns the failures of column.
func (e ValidationErrors) On(column string) []FieldError {
	var out []FieldError
	for _, fe := range e {
		if fe.Column == column {
			out = append(out, fe)
		}
	}
	return out
}

func asFieldErrors(err error) []FieldError {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	var fe FieldError
	if errors.As(err, &fe) {
		return []FieldError{fe}
	}
	return []FieldError{{Column: "base", Err: err}}
}

// NumericalityValidator requires an integer column to hold an integer.
// Fractional numeric input such as "12.5" fails with ErrNotAnInteger, any
// other unusable input with ErrNotANumber.
type NumericalityValidator struct {
	Column   string
	AllowNil bool
}

// Numericality builds a NumericalityValidator for column.
func Numericality(column string, allowNil bool) NumericalityValidator {
	return NumericalityValidator{Column: column, AllowNil: allowNil}
}

// Validate implements Validator.
func (v NumericalityValidator) Validate(r *Record) error {
	switch c := r.cells[v.Column]; c.state {
	case stateInt:
		return nil
	case stateNull:
		if v.AllowNil {
			return nil
		}
		return FieldError{Column: v.Column, Err: domain.ErrNotANumber}
	case stateInvalid:
		if d, err := decimal.NewFromString(strings.TrimSpace(c.s)); err == nil && d.Exponent() < 0 {
			return FieldError{Column: v.Column, Err: fmt.Errorf("%w: %q", domain.ErrNotAnInteger, c.s)}
		}
		return FieldError{Column: v.Column, Err: fmt.Errorf("%w: %q", domain.ErrNotANumber, c.s)}
	}
	return nil
}
