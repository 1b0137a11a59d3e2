package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrBuilder wraps configuration-authoring mistakes detected at
	// declaration or Build time: duplicate keys, duplicate properties,
	// missing required properties, defaults that fail their own validator.
	ErrBuilder = errors.New("settings: builder error")
	// ErrValidation wraps a candidate value rejected by an item's declared
	// constraints.
	ErrValidation = errors.New("settings: validation failed")
	// ErrTypeMismatch wraps a value whose runtime type disagrees with the
	// item's declared type. This indicates a wiring bug, not bad input.
	ErrTypeMismatch = errors.New("settings: type mismatch")
	// ErrUnknownKey wraps lookups for keys that were never registered.
	ErrUnknownKey = errors.New("settings: unknown key")
	// ErrValueUnset wraps reads of an item that has no committed value and
	// no default factory to fall back to.
	ErrValueUnset = errors.New("settings: value not set")
	// ErrNoDefault wraps GetDefault calls on items declared without a
	// default factory.
	ErrNoDefault = errors.New("settings: no default declared")
	// ErrAuthoring wraps validator-side misuse of the checker API surfaced
	// during a validation run.
	ErrAuthoring = errors.New("settings: validator misuse")
)

// KeyError ties a failure to the registry key it occurred on, along with the
// sentinel classifying the failure kind. errors.Is matches both the sentinel
// and the wrapped error.
type KeyError struct {
	Key  string
	Base error
	Err  error
	Meta map[string]any
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%q: %v", e.Key, e.Err)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *KeyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether the target matches either the kind sentinel or the
// wrapped error.
func (e *KeyError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if errors.Is(e.Base, target) {
		return true
	}
	return errors.Is(e.Err, target)
}

func keyError(key string, base, err error, meta map[string]any) error {
	if err == nil {
		return nil
	}
	return &KeyError{
		Key:  key,
		Base: base,
		Err:  err,
		Meta: meta,
	}
}

func keyErrorf(key string, base error, format string, args ...any) error {
	return keyError(key, base, fmt.Errorf(format, args...), nil)
}
