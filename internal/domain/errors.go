package domain

import "errors"

var (
	// Declaration errors
	ErrConfiguration   = errors.New("invalid monetize configuration")
	ErrUnknownCurrency = errors.New("unknown currency")

	// Assignment errors
	ErrInvalidAssignment = errors.New("invalid assignment")
	ErrCurrencyMismatch  = errors.New("currency does not match field currency")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrUnknownField      = errors.New("unknown attribute")
	ErrUnknownModel      = errors.New("unknown model")

	// Validation errors
	ErrValidation       = errors.New("validation failed")
	ErrNotANumber       = errors.New("is not a number")
	ErrNotAnInteger     = errors.New("must be an integer")
	ErrAmountOutOfRange = errors.New("amount out of range")

	// Store errors
	ErrRecordNotFound = errors.New("record not found")
)
