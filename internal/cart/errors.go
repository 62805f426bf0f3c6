package cart

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every constraint violation on cart mutators.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which argument was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}
