package stats

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a calculation is given inputs that violate
// its constraints. Nothing is computed for a call that fails this way.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which input was rejected and why.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
