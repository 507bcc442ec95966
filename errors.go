// FILE: lixenwraith/envconfig/errors.go
package envconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingValue is returned when a lookup key is absent from its source
	// and the field has no default.
	ErrMissingValue = errors.New("required value is not set")

	// ErrInvalidValue is returned when the transform rejects a raw value.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidOptions is returned when an options bundle carries an unknown knob
	// or cannot be completed (e.g. no source).
	ErrInvalidOptions = errors.New("invalid options")
)

// ResolveError reports a failed field resolution.
// errors.Is matches both the error kind (ErrMissingValue, ErrInvalidValue, ErrInvalidOptions)
// and the wrapped cause.
type ResolveError struct {
	// Field is the declared field name.
	Field string

	// Key is the effective lookup key.
	Key string

	// Kind is one of the package sentinels.
	Kind error

	// Err is the underlying cause, nil for missing values.
	Err error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrMissingValue):
		return fmt.Sprintf("configuration error: %q is not set (field %s)", e.Key, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("%v for %q (field %s): %v", e.Kind, e.Key, e.Field, e.Err)
	default:
		return fmt.Sprintf("%v for %q (field %s)", e.Kind, e.Key, e.Field)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ResolveError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
