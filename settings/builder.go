package settings

import (
	"reflect"

	"github.com/goliatone/go-settings/check"
	"github.com/mitchellh/copystructure"
)

// Builder assembles a Config out of fluent item declarations. Authoring
// mistakes (duplicate properties, nil arguments) are recorded as they
// happen and surfaced by Build; the first recorded error wins.
type Builder struct {
	items []*ItemBuilder
	err   error
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// AddItem starts the declaration of a new item under the given key and
// returns the handle all subsequent property calls for that item scope to.
func (b *Builder) AddItem(key string) *ItemBuilder {
	if key == "" {
		b.fail(keyErrorf("", ErrBuilder, "item key cannot be empty"))
	}
	ib := &ItemBuilder{builder: b, key: key}
	b.items = append(b.items, ib)
	return ib
}

// AddCopy declares a new item under newKey with every property already set
// on originalKey replayed onto it. The copy owns independent property
// slots; later changes to either item never alias the other.
func (b *Builder) AddCopy(newKey, originalKey string) *ItemBuilder {
	var original *ItemBuilder
	for _, ib := range b.items {
		if ib.key == originalKey {
			original = ib
			break
		}
	}
	if original == nil {
		b.fail(keyErrorf(originalKey, ErrBuilder, "no previous item with key %q has been declared", originalKey))
		return b.AddItem(newKey)
	}

	ib := b.AddItem(newKey)
	if original.typ != nil {
		ib.OfType(original.typ)
	}
	if original.validator != nil {
		ib.WithValidator(original.validator)
	}
	if original.defaultFn != nil {
		ib.withDefaultFn(original.defaultFn)
	}
	return ib
}

// AddCopyOfPrevious copies the most recently declared item under a new key.
func (b *Builder) AddCopyOfPrevious(newKey string) *ItemBuilder {
	if len(b.items) == 0 {
		b.fail(keyErrorf(newKey, ErrBuilder, "no previous item has been declared"))
		return b.AddItem(newKey)
	}
	return b.AddCopy(newKey, b.items[len(b.items)-1].key)
}

// Build freezes the declared items into an immutable Config. Duplicate
// keys, missing types, and defaults that fail their own validator are all
// reported here, before the registry is handed to any consumer. An empty
// registry is valid.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	items := make(map[string]*Item, len(b.items))
	for _, ib := range b.items {
		if _, dup := items[ib.key]; dup {
			return nil, keyErrorf(ib.key, ErrBuilder, "duplicate item key %q", ib.key)
		}
		if ib.typ == nil {
			return nil, keyErrorf(ib.key, ErrBuilder, "no type declared for item %q", ib.key)
		}

		item := &Item{
			key:       ib.key,
			typ:       ib.typ,
			validator: ib.validator,
			defaultFn: ib.defaultFn,
		}

		// a bad default surfaces now, not lazily at first read
		if item.HasDefault() {
			def, err := item.CreateDefault()
			if err != nil {
				return nil, keyError(ib.key, ErrBuilder, err, nil)
			}
			if err := item.Validate(def); err != nil {
				return nil, keyError(ib.key, ErrBuilder, err, nil)
			}
		}

		items[ib.key] = item
	}

	return &Config{items: items}, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// ItemBuilder scopes property declarations to one item. Each property may
// be set at most once; a second attempt is a builder error naming the key
// and the property.
type ItemBuilder struct {
	builder *Builder

	key       string
	typ       reflect.Type
	validator check.Validator
	defaultFn func() any
}

// OfType declares the item's value type. reflect.TypeFor[T]() is the usual
// way to produce the argument.
func (ib *ItemBuilder) OfType(t reflect.Type) *ItemBuilder {
	if t == nil {
		ib.builder.fail(keyErrorf(ib.key, ErrBuilder, "type cannot be nil for item %q", ib.key))
		return ib
	}
	if ib.typ != nil {
		ib.duplicate("type")
		return ib
	}
	ib.typ = t
	return ib
}

// WithValidator declares the item's constraint rule.
func (ib *ItemBuilder) WithValidator(v check.Validator) *ItemBuilder {
	if v == nil {
		ib.builder.fail(keyErrorf(ib.key, ErrBuilder, "validator cannot be nil for item %q", ib.key))
		return ib
	}
	if ib.validator != nil {
		ib.duplicate("validator")
		return ib
	}
	ib.validator = v
	return ib
}

// WithDefault declares a constant default value. The value is deep-cloned
// on every read so callers cannot mutate shared state through it.
func (ib *ItemBuilder) WithDefault(value any) *ItemBuilder {
	if value == nil {
		ib.builder.fail(keyErrorf(ib.key, ErrBuilder, "default value cannot be nil for item %q", ib.key))
		return ib
	}
	return ib.withDefaultFn(func() any {
		cloned, err := copystructure.Copy(value)
		if err != nil {
			return value
		}
		return cloned
	})
}

// WithDefaultFunc declares a default-value factory, re-invoked on every
// default read. Factories may be non-deterministic.
func (ib *ItemBuilder) WithDefaultFunc(fn func() any) *ItemBuilder {
	if fn == nil {
		ib.builder.fail(keyErrorf(ib.key, ErrBuilder, "default factory cannot be nil for item %q", ib.key))
		return ib
	}
	return ib.withDefaultFn(fn)
}

func (ib *ItemBuilder) withDefaultFn(fn func() any) *ItemBuilder {
	if ib.defaultFn != nil {
		ib.duplicate("default")
		return ib
	}
	ib.defaultFn = fn
	return ib
}

// AddItem finishes this item and starts declaring the next one on the
// parent builder.
func (ib *ItemBuilder) AddItem(key string) *ItemBuilder {
	return ib.builder.AddItem(key)
}

// AddCopy finishes this item and declares a copy of an earlier one.
func (ib *ItemBuilder) AddCopy(newKey, originalKey string) *ItemBuilder {
	return ib.builder.AddCopy(newKey, originalKey)
}

// AddCopyOfPrevious finishes this item and declares a copy of it under a
// new key.
func (ib *ItemBuilder) AddCopyOfPrevious(newKey string) *ItemBuilder {
	return ib.builder.AddCopyOfPrevious(newKey)
}

// Build finishes this item and freezes the parent builder.
func (ib *ItemBuilder) Build() (*Config, error) {
	return ib.builder.Build()
}

func (ib *ItemBuilder) duplicate(property string) {
	ib.builder.fail(keyError(ib.key, ErrBuilder,
		&duplicateProperty{key: ib.key, property: property},
		map[string]any{
			"key":      ib.key,
			"property": property,
		}))
}

type duplicateProperty struct {
	key      string
	property string
}

func (d *duplicateProperty) Error() string {
	return d.property + " has already been specified for item " + d.key
}
