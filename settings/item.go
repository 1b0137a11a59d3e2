package settings

import (
	"reflect"

	"github.com/goliatone/go-settings/check"
)

// Item carries one registered key's metadata: the declared type, the
// validator, the default-value factory, and the current committed value.
// Items are owned exclusively by the Config that contains them.
type Item struct {
	key       string
	typ       reflect.Type
	validator check.Validator
	defaultFn func() any

	value    any
	hasValue bool
}

// Key returns the item's registry key.
func (i *Item) Key() string {
	return i.key
}

// Type returns the item's declared type.
func (i *Item) Type() reflect.Type {
	return i.typ
}

// HasDefault reports whether a default factory was declared.
func (i *Item) HasDefault() bool {
	return i.defaultFn != nil
}

// Validate checks a candidate value against the item's declared type and
// validator without committing it. A fresh checker is bound per call so
// validations stay isolated and reads remain re-entrant.
func (i *Item) Validate(value any) error {
	cast, err := i.cast(value)
	if err != nil {
		return err
	}

	if i.validator == nil {
		return nil
	}

	checker := check.New().Bind(cast)
	i.validator(checker)

	if err := checker.Err(); err != nil {
		if check.IsUsageError(err) {
			return keyError(i.key, ErrAuthoring, err, nil)
		}
		return keyError(i.key, ErrValidation, err, map[string]any{
			"value": value,
		})
	}
	return nil
}

// SetValue validates the candidate and commits it as the current value.
// On failure the previously committed value is left unchanged.
func (i *Item) SetValue(value any) error {
	if err := i.Validate(value); err != nil {
		return err
	}
	i.value = value
	i.hasValue = true
	return nil
}

// Value returns the current committed value. Until the first successful
// SetValue it falls back to the default factory; an unset item with no
// default is an error.
func (i *Item) Value() (any, error) {
	if i.hasValue {
		return i.value, nil
	}
	if i.defaultFn != nil {
		return i.CreateDefault()
	}
	return nil, keyErrorf(i.key, ErrValueUnset, "value not set and no default declared")
}

// CreateDefault invokes the default factory and returns its result cast to
// the declared type. The factory output was validated once at Build time;
// it is not re-validated here.
func (i *Item) CreateDefault() (any, error) {
	if i.defaultFn == nil {
		return nil, keyErrorf(i.key, ErrNoDefault, "no default declared")
	}
	return i.cast(i.defaultFn())
}

func (i *Item) cast(value any) (any, error) {
	if value == nil || i.typ == nil {
		return value, nil
	}
	vt := reflect.TypeOf(value)
	if !vt.AssignableTo(i.typ) {
		return nil, keyError(i.key, ErrTypeMismatch,
			typeMismatchError(i.typ, vt),
			map[string]any{
				"declared_type": i.typ.String(),
				"actual_type":   vt.String(),
			})
	}
	return value, nil
}

func typeMismatchError(want, got reflect.Type) error {
	return &mismatch{want: want, got: got}
}

type mismatch struct {
	want reflect.Type
	got  reflect.Type
}

func (m *mismatch) Error() string {
	return "value must be of type " + m.want.String() + ", currently: " + m.got.String()
}
