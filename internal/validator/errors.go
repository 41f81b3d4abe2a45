package validator

import (
	"errors"
	"fmt"
)

// Error is a validation failure naming the offending attribute. Validation
// errors are always recoverable by correcting input and are never retried
// internally.
type Error struct {
	// Attribute is the path of the failing attribute, e.g. "title" or
	// "identifiers.nestedUnique.slug".
	Attribute string
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Attribute, e.Message)
}

// NewError creates a validation error for an attribute path.
func NewError(attribute, message string) *Error {
	return &Error{Attribute: attribute, Message: message}
}

// IsValidationError reports whether err is (or wraps, or aggregates)
// validation failures.
func IsValidationError(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

// Upstream-compatible message for uniqueness collisions.
const uniqueMessage = "This attribute must be unique"
