package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced operation does not exist.
var ErrNotFound = errors.New("request not found")

// ValidationError is a client-visible rule violation (bad enum value,
// disallowed transition, empty comment).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
