// Package settings implements a typed configuration registry: named items
// are declared once through a fluent builder (key, value type, validation
// rule, default factory), frozen into an immutable Config, and thereafter
// looked up or updated by key with runtime type checking.
//
// Declaration:
//
//	cfg, err := settings.New().
//		AddItem("server.port").
//		OfType(reflect.TypeFor[int]()).
//		WithDefault(8080).
//		WithValidator(func(c *check.Checker) {
//			c.RequireIntegerBetween(1, 65535)
//		}).
//		AddItem("server.host").
//		OfType(reflect.TypeFor[string]()).
//		WithValidator(func(c *check.Checker) {
//			c.RequireNonEmptyString()
//		}).
//		Build()
//
// Every item's default is validated against its own rule during Build, so
// authoring mistakes surface before the registry reaches any consumer.
// After Build the key set never changes; values move only through SetValue,
// which re-runs the item's validator and refuses to commit on failure.
//
// Reads: Config.GetValue falls back to the item's default until the first
// committed value; the generic settings.Value[T] and settings.Default[T]
// add a checked type assertion on top. Failure kinds are distinguished by
// sentinel (ErrBuilder, ErrValidation, ErrTypeMismatch, ErrUnknownKey,
// ErrValueUnset) and match with errors.Is.
//
// Obtaining raw values from files, the environment, or flags is the binder
// package's job; it routes everything through SetValue so no value enters
// the registry unvalidated.
package settings
