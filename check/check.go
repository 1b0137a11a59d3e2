package check

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
)

// Validator is the rule a configuration item declares: it receives a checker
// already bound to the candidate value and invokes whichever requirement
// methods express the domain constraint. A validator must not retain the
// checker past the call and never sees a nil candidate; the checker filters
// nil per its policy before any predicate runs.
type Validator func(*Checker)

// Checker holds one candidate value and lets a validator express
// "value must satisfy P" as a chained sequence of calls, each returning the
// checker for further chaining. The first requirement that rejects the value
// records a *Failure and turns every later call in the chain into a no-op;
// Err reports the outcome once the validator returns.
//
// A checker is scoped to one validation: Bind resets it (nil forbidden, no
// recorded error) and must be called before each independent validation. It
// is not safe for concurrent use.
type Checker struct {
	value      any
	nilAllowed bool
	err        error
}

// New returns an unbound checker. Bind must be called before any checks.
func New() *Checker {
	return &Checker{}
}

// Bind rebinds the checker to a new candidate value and resets the nil
// policy to "nil forbidden". Typed nil pointers, maps, slices, and funcs
// are normalized to a plain nil candidate.
func (c *Checker) Bind(value any) *Checker {
	if isNil(value) {
		value = nil
	}
	c.value = value
	c.nilAllowed = false
	c.err = nil
	return c
}

// AllowNil permits a nil candidate for the remainder of this binding.
// Calling it twice on the same binding signals a contradictory declaration
// and is recorded as a usage error.
func (c *Checker) AllowNil() *Checker {
	if c.err != nil {
		return c
	}
	if c.nilAllowed {
		return c.usage("nil values are already allowed")
	}
	c.nilAllowed = true
	return c
}

// Check runs a custom predicate against the bound value. A nil candidate
// short-circuits: it passes silently when AllowNil was called, otherwise it
// fails with "value cannot be nil". The predicate only ever sees a non-nil
// value and may call further Require methods or Fail on the checker.
func (c *Checker) Check(fn func(value any)) *Checker {
	if c.err != nil {
		return c
	}
	if fn == nil {
		return c.usage("check predicate cannot be nil")
	}
	if c.value == nil {
		if !c.nilAllowed {
			c.Fail("value cannot be nil")
		}
		return c
	}
	fn(c.value)
	return c
}

// CheckAgainst runs the predicate once per element, in slice order, stopping
// at the first recorded failure. An empty element set or a nil element is an
// authoring error, not a validation failure.
func (c *Checker) CheckAgainst(elements []any, fn func(value, elem any)) *Checker {
	if c.err != nil {
		return c
	}
	if fn == nil {
		return c.usage("check predicate cannot be nil")
	}
	if len(elements) == 0 {
		return c.usage("element list cannot be empty")
	}
	return c.Check(func(value any) {
		for _, elem := range elements {
			if isNil(elem) {
				c.usage("element in list cannot be nil")
				return
			}
			fn(value, elem)
			if c.err != nil {
				return
			}
		}
	})
}

// Fail records a validation failure with the formatted, human-readable
// reason. The first recorded error wins; later calls are no-ops.
func (c *Checker) Fail(format string, args ...any) {
	if c.err != nil {
		return
	}
	c.err = newFailure(format, args...)
}

// Err returns the error recorded during this binding: a *Failure when a
// requirement rejected the value, a *UsageError when the validator misused
// the checker, or nil when the value passed.
func (c *Checker) Err() error {
	return c.err
}

// RequireType requires the value's dynamic type to be assignable to at
// least one of the given types.
func (c *Checker) RequireType(types ...reflect.Type) *Checker {
	if c.err != nil {
		return c
	}
	if len(types) == 0 {
		return c.usage("type list cannot be empty")
	}
	for _, t := range types {
		if t == nil {
			return c.usage("type in list cannot be nil")
		}
	}
	return c.Check(func(value any) {
		vt := reflect.TypeOf(value)
		for _, t := range types {
			if vt.AssignableTo(t) {
				return
			}
		}
		c.Fail("value must be of type %s, currently: %s", typeNames(types), vt)
	})
}

// RequireString requires the value to be a string.
func (c *Checker) RequireString() *Checker {
	return c.RequireType(stringType)
}

// RequireNonEmptyString requires the value to be a string with a length
// greater than zero.
func (c *Checker) RequireNonEmptyString() *Checker {
	return c.RequireString().Check(func(value any) {
		if value.(string) == "" {
			c.Fail("value must be a non-empty string")
		}
	})
}

// RequireMatch requires the value to be a string matching the given regular
// expression. An invalid pattern is a usage error.
func (c *Checker) RequireMatch(pattern string) *Checker {
	return c.RequireMatchMessage(pattern, fmt.Sprintf("value must match %s, currently: %v", pattern, c.value))
}

// RequireMatchMessage does the same as RequireMatch with a caller-supplied
// failure message.
func (c *Checker) RequireMatchMessage(pattern, message string) *Checker {
	if c.err != nil {
		return c
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return c.usage("invalid match pattern %q: %v", pattern, err)
	}
	return c.RequireString().Check(func(value any) {
		if !re.MatchString(value.(string)) {
			c.Fail("%s", message)
		}
	})
}

// RequireInteger requires the value to carry an integer: any integer kind,
// a float with no fractional part, or a string that parses as a base-10
// integer.
func (c *Checker) RequireInteger() *Checker {
	return c.Check(func(value any) {
		if _, ok := intValue(value); !ok {
			c.Fail("value must be an integer, currently: %v", value)
		}
	})
}

// RequireIntegerBetween requires an integer within the given range,
// inclusive on both ends.
func (c *Checker) RequireIntegerBetween(min, max int64) *Checker {
	return c.RequireInteger().Check(func(value any) {
		n, _ := intValue(value)
		if n < min || n > max {
			c.Fail("value must be an integer between %d and %d, currently: %v", min, max, value)
		}
	})
}

// RequireIntegerMin requires an integer greater than or equal to min.
func (c *Checker) RequireIntegerMin(min int64) *Checker {
	return c.RequireInteger().Check(func(value any) {
		if n, _ := intValue(value); n < min {
			c.Fail("value must be an integer greater than or equal to %d, currently: %v", min, value)
		}
	})
}

// RequireIntegerMax requires an integer less than or equal to max.
func (c *Checker) RequireIntegerMax(max int64) *Checker {
	return c.RequireInteger().Check(func(value any) {
		if n, _ := intValue(value); n > max {
			c.Fail("value must be an integer less than or equal to %d, currently: %v", max, value)
		}
	})
}

// RequirePositiveInteger requires an integer greater than or equal to zero.
func (c *Checker) RequirePositiveInteger() *Checker {
	return c.RequireInteger().Check(func(value any) {
		if n, _ := intValue(value); n < 0 {
			c.Fail("value must be a positive integer, currently: %v", value)
		}
	})
}

// RequireNaturalInteger requires an integer greater than zero.
func (c *Checker) RequireNaturalInteger() *Checker {
	return c.RequireInteger().Check(func(value any) {
		if n, _ := intValue(value); n <= 0 {
			c.Fail("value must be an integer greater than zero, currently: %v", value)
		}
	})
}

// RequireNegativeInteger requires an integer less than zero.
func (c *Checker) RequireNegativeInteger() *Checker {
	return c.RequireInteger().Check(func(value any) {
		if n, _ := intValue(value); n >= 0 {
			c.Fail("value must be a negative integer, currently: %v", value)
		}
	})
}

// RequireIn requires the value to equal one of the given values.
func (c *Checker) RequireIn(values ...any) *Checker {
	if c.err != nil {
		return c
	}
	if len(values) == 0 {
		return c.usage("value list cannot be empty")
	}
	return c.Check(func(value any) {
		for _, candidate := range values {
			if reflect.DeepEqual(value, candidate) {
				return
			}
		}
		c.Fail("value must be one of %v, currently: %v", values, value)
	})
}

// RequireNot requires the value to equal none of the given values.
func (c *Checker) RequireNot(values ...any) *Checker {
	return c.CheckAgainst(values, func(value, elem any) {
		if reflect.DeepEqual(value, elem) {
			c.Fail("value cannot be %v", elem)
		}
	})
}

// RequireComparable requires the value's type to support the == operator.
func (c *Checker) RequireComparable() *Checker {
	return c.Check(func(value any) {
		if !reflect.TypeOf(value).Comparable() {
			c.Fail("value must be comparable, currently: %T", value)
		}
	})
}

// RequireThat requires the value to pass an arbitrary predicate, failing
// with the formatted message when it does not.
func (c *Checker) RequireThat(pred func(value any) bool, format string, args ...any) *Checker {
	if c.err != nil {
		return c
	}
	if pred == nil {
		return c.usage("predicate cannot be nil")
	}
	return c.Check(func(value any) {
		if !pred(value) {
			c.Fail(format, args...)
		}
	})
}

func (c *Checker) usage(format string, args ...any) *Checker {
	if c.err == nil {
		c.err = newUsageError(format, args...)
	}
	return c
}

var stringType = reflect.TypeFor[string]()

func typeNames(types []reflect.Type) string {
	if len(types) == 1 {
		return types[0].String()
	}
	names := ""
	for i, t := range types {
		if i > 0 {
			names += " or "
		}
		names += t.String()
	}
	return names
}

// intValue extracts an int64 from the integer shapes raw config values
// arrive in: native integer kinds, whole floats from JSON decoding, and
// base-10 numeric strings.
func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float32:
		return int64(n), float32(int64(n)) == n
	case float64:
		return int64(n), float64(int64(n)) == n
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		return parsed, err == nil
	}
	return 0, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
