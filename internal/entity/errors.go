package entity

import "errors"

var (
	// ErrMalformedName marks names that cannot be parsed as BIDS base names
	// or that are missing required entities.
	ErrMalformedName = errors.New("malformed bids name")

	// ErrInvalidCharacter marks entity values or suffixes that fall outside
	// the allowed alphanumeric character set.
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrProtectedAttribute marks attempts to remove the mandatory sub entity.
	ErrProtectedAttribute = errors.New("protected entity")

	// ErrEmptyValue marks entity assignments with a blank value.
	ErrEmptyValue = errors.New("empty entity value")
)
