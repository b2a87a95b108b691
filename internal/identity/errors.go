package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyIdentifier is returned when an identifier has no digits after
	// stripping formatting characters.
	ErrEmptyIdentifier = errors.New("identifier is empty")

	// ErrUnknownDocumentType is returned for a document type code outside the
	// published catalog.
	ErrUnknownDocumentType = errors.New("unknown identity document type")

	// ErrCheckDigitMismatch is returned when a supplied check digit does not
	// match the computed one.
	ErrCheckDigitMismatch = errors.New("check digit does not match")
)

// ValidationError reports a malformed identifier. It is never defaulted to a
// zero digit; callers always see the failure.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("identity: invalid %s %q: %s", e.Field, e.Value, e.Message)
}
