package check

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerNilForbiddenByDefault(t *testing.T) {
	invoked := false
	c := New().Bind(nil)
	c.Check(func(value any) {
		invoked = true
	})

	err := c.Err()
	require.Error(t, err)
	assert.True(t, IsFailure(err))
	assert.Contains(t, err.Error(), "value cannot be nil")
	assert.False(t, invoked, "predicate must not run for a nil candidate")
}

func TestCheckerAllowNil(t *testing.T) {
	invoked := false
	c := New().Bind(nil)
	c.AllowNil().Check(func(value any) {
		invoked = true
	})

	assert.NoError(t, c.Err())
	assert.False(t, invoked, "predicate must not run for an allowed nil candidate")
}

func TestCheckerAllowNilTwiceIsUsageError(t *testing.T) {
	c := New().Bind(nil)
	c.AllowNil().AllowNil()

	err := c.Err()
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
}

func TestCheckerAllowNilResetsOnBind(t *testing.T) {
	c := New().Bind(nil)
	c.AllowNil()
	require.NoError(t, c.Err())

	// a fresh binding is back to "nil forbidden"
	c.Bind(nil).Check(func(any) {})
	assert.True(t, IsFailure(c.Err()))
}

func TestCheckerTypedNilCountsAsNil(t *testing.T) {
	var p *struct{}
	c := New().Bind(p)
	c.Check(func(any) {
		t.Fatal("predicate ran on a typed nil pointer")
	})
	assert.True(t, IsFailure(c.Err()))
}

func TestCheckerChainShortCircuits(t *testing.T) {
	calls := 0
	c := New().Bind("not a number")
	c.RequireInteger().Check(func(any) {
		calls++
	})

	require.Error(t, c.Err())
	assert.Equal(t, 0, calls, "checks after the first failure must not run")
}

func TestRequireIntegerBetween(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
		want    []string
	}{
		{name: "within range", value: 5},
		{name: "lower bound", value: 1},
		{name: "upper bound", value: 10},
		{name: "above range", value: 11, wantErr: true, want: []string{"10", "11"}},
		{name: "below range", value: 0, wantErr: true, want: []string{"1", "0"}},
		{name: "whole float", value: 7.0},
		{name: "numeric string", value: "9"},
		{name: "not an integer", value: "abc", wantErr: true, want: []string{"integer"}},
		{name: "fractional float", value: 5.5, wantErr: true, want: []string{"integer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New().Bind(tt.value)
			c.RequireIntegerBetween(1, 10)
			err := c.Err()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsFailure(err))
			for _, fragment := range tt.want {
				assert.Contains(t, err.Error(), fragment)
			}
		})
	}
}

func TestRequireIntegerBounds(t *testing.T) {
	assert.NoError(t, New().Bind(3).RequireIntegerMin(3).Err())
	assert.Error(t, New().Bind(2).RequireIntegerMin(3).Err())
	assert.NoError(t, New().Bind(3).RequireIntegerMax(3).Err())
	assert.Error(t, New().Bind(4).RequireIntegerMax(3).Err())

	assert.NoError(t, New().Bind(0).RequirePositiveInteger().Err())
	assert.Error(t, New().Bind(-1).RequirePositiveInteger().Err())
	assert.NoError(t, New().Bind(1).RequireNaturalInteger().Err())
	assert.Error(t, New().Bind(0).RequireNaturalInteger().Err())
	assert.NoError(t, New().Bind(-1).RequireNegativeInteger().Err())
	assert.Error(t, New().Bind(0).RequireNegativeInteger().Err())
}

func TestRequireNonEmptyString(t *testing.T) {
	assert.NoError(t, New().Bind("x").RequireNonEmptyString().Err())
	assert.Error(t, New().Bind("").RequireNonEmptyString().Err())
	assert.Error(t, New().Bind(42).RequireNonEmptyString().Err())
}

func TestRequireMatch(t *testing.T) {
	assert.NoError(t, New().Bind("prod").RequireMatch(`^[a-z]+$`).Err())

	err := New().Bind("PROD").RequireMatch(`^[a-z]+$`).Err()
	require.Error(t, err)
	assert.True(t, IsFailure(err))

	err = New().Bind("anything").RequireMatch(`([`).Err()
	require.Error(t, err)
	assert.True(t, IsUsageError(err), "an invalid pattern is an authoring error")

	err = New().Bind("bad-host!").RequireMatchMessage(`^[\w.-]+$`, "value must be a hostname").Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value must be a hostname")
}

func TestRequireType(t *testing.T) {
	intType := reflect.TypeFor[int]()
	strType := reflect.TypeFor[string]()

	assert.NoError(t, New().Bind(1).RequireType(intType, strType).Err())
	assert.NoError(t, New().Bind("a").RequireType(intType, strType).Err())

	err := New().Bind(1.5).RequireType(intType, strType).Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int or string")

	assert.True(t, IsUsageError(New().Bind(1).RequireType().Err()))
}

func TestRequireInAndNot(t *testing.T) {
	assert.NoError(t, New().Bind("b").RequireIn("a", "b", "c").Err())
	assert.Error(t, New().Bind("d").RequireIn("a", "b", "c").Err())

	assert.NoError(t, New().Bind("d").RequireNot("a", "b", "c").Err())
	err := New().Bind("b").RequireNot("a", "b", "c").Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
}

func TestRequireComparable(t *testing.T) {
	assert.NoError(t, New().Bind("a").RequireComparable().Err())
	assert.Error(t, New().Bind([]int{1}).RequireComparable().Err())
}

func TestRequireThat(t *testing.T) {
	even := func(v any) bool {
		n, ok := v.(int)
		return ok && n%2 == 0
	}

	assert.NoError(t, New().Bind(4).RequireThat(even, "value must be even").Err())

	err := New().Bind(3).RequireThat(even, "value must be even, currently: %v", 3).Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value must be even, currently: 3")
}

func TestCheckAgainst(t *testing.T) {
	var seen []string
	c := New().Bind("value")
	c.CheckAgainst([]any{"a", "b", "c"}, func(value, elem any) {
		seen = append(seen, elem.(string))
	})
	require.NoError(t, c.Err())
	assert.Equal(t, []string{"a", "b", "c"}, seen, "elements visit in slice order")

	// stops at the first failure
	seen = nil
	c = New().Bind("value")
	c.CheckAgainst([]any{"a", "b", "c"}, func(value, elem any) {
		seen = append(seen, elem.(string))
		if elem == "b" {
			c.Fail("rejected at %v", elem)
		}
	})
	require.Error(t, c.Err())
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestCheckAgainstAuthoringErrors(t *testing.T) {
	noop := func(value, elem any) {}

	err := New().Bind("x").CheckAgainst(nil, noop).Err()
	require.Error(t, err)
	assert.True(t, IsUsageError(err), "empty element set is an authoring error")

	err = New().Bind("x").CheckAgainst([]any{}, noop).Err()
	assert.True(t, IsUsageError(err))

	err = New().Bind("x").CheckAgainst([]any{"a", nil}, noop).Err()
	assert.True(t, IsUsageError(err))
}

func TestFailFirstErrorWins(t *testing.T) {
	c := New().Bind("x")
	c.Fail("first reason")
	c.Fail("second reason")

	err := c.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first reason")
	assert.False(t, strings.Contains(err.Error(), "second reason"))
}

func TestCustomCheckComposesWithRequire(t *testing.T) {
	validator := func(c *Checker) {
		c.RequireInteger().Check(func(value any) {
			n, _ := value.(int)
			if n%2 != 0 {
				c.Fail("value must be an even integer, currently: %v", n)
			}
		})
	}

	c := New().Bind(4)
	validator(c)
	assert.NoError(t, c.Err())

	c.Bind(3)
	validator(c)
	require.Error(t, c.Err())
	assert.Contains(t, c.Err().Error(), "even integer")
}
