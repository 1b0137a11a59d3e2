package settings

import (
	"fmt"
	"reflect"
	"sort"
)

// Config is the frozen registry produced by Builder.Build: a mapping from
// key to typed item, read-only in shape after construction. Concurrent
// reads (GetValue, GetDefault, HasEntry) are safe; concurrent SetValue
// calls on the same key require external serialization.
type Config struct {
	items map[string]*Item
}

// HasEntry reports whether the key was registered. Pure probe, no side
// effects.
func (c *Config) HasEntry(key string) bool {
	_, ok := c.items[key]
	return ok
}

// GetValue returns the current committed value for the key, falling back to
// the item's default until the first successful SetValue.
func (c *Config) GetValue(key string) (any, error) {
	item, err := c.item(key)
	if err != nil {
		return nil, err
	}
	return item.Value()
}

// GetDefault re-invokes the item's default factory and returns its result.
// Non-constant defaults produce a fresh value per call.
func (c *Config) GetDefault(key string) (any, error) {
	item, err := c.item(key)
	if err != nil {
		return nil, err
	}
	return item.CreateDefault()
}

// SetValue validates the candidate against the item's declared type and
// constraints and commits it. On failure the prior committed value is left
// unchanged and the error reports the key and the requirement that failed.
func (c *Config) SetValue(key string, value any) error {
	item, err := c.item(key)
	if err != nil {
		return err
	}
	return item.SetValue(value)
}

// Validate checks a candidate against the item's constraints without
// committing it.
func (c *Config) Validate(key string, value any) error {
	item, err := c.item(key)
	if err != nil {
		return err
	}
	return item.Validate(value)
}

// Type returns the declared type for the key.
func (c *Config) Type(key string) (reflect.Type, error) {
	item, err := c.item(key)
	if err != nil {
		return nil, err
	}
	return item.Type(), nil
}

// Keys returns every registered key in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered items.
func (c *Config) Len() int {
	return len(c.items)
}

func (c *Config) item(key string) (*Item, error) {
	item, ok := c.items[key]
	if !ok {
		return nil, keyErrorf(key, ErrUnknownKey, "no item registered for key %q", key)
	}
	return item, nil
}

// Value reads the current value for the key typed as T. A committed value
// whose type does not assert to T is a type-mismatch error.
func Value[T any](c *Config, key string) (T, error) {
	return typed[T](c, key, c.GetValue)
}

// Default reads the item's default typed as T.
func Default[T any](c *Config, key string) (T, error) {
	return typed[T](c, key, c.GetDefault)
}

// MustValue is like Value but panics on error. Meant for startup paths
// where a missing or invalid value is fatal anyway.
func MustValue[T any](c *Config, key string) T {
	v, err := Value[T](c, key)
	if err != nil {
		panic(fmt.Sprintf("settings: reading %q: %v", key, err))
	}
	return v
}

// MustDefault is like Default but panics on error.
func MustDefault[T any](c *Config, key string) T {
	v, err := Default[T](c, key)
	if err != nil {
		panic(fmt.Sprintf("settings: reading default for %q: %v", key, err))
	}
	return v
}

func typed[T any](c *Config, key string, read func(string) (any, error)) (T, error) {
	var zero T
	raw, err := read(key)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, nil
	}
	cast, ok := raw.(T)
	if !ok {
		return zero, keyError(key, ErrTypeMismatch,
			typeMismatchError(reflect.TypeFor[T](), reflect.TypeOf(raw)), nil)
	}
	return cast, nil
}
