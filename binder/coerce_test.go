package binder

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		target reflect.Type
		want   any
	}{
		{name: "passthrough", raw: 42, target: reflect.TypeFor[int](), want: 42},
		{name: "string to int", raw: "42", target: reflect.TypeFor[int](), want: 42},
		{name: "float to int", raw: 42.0, target: reflect.TypeFor[int](), want: 42},
		{name: "string to bool", raw: "true", target: reflect.TypeFor[bool](), want: true},
		{name: "string to duration", raw: "1m30s", target: reflect.TypeFor[time.Duration](), want: 90 * time.Second},
		{name: "int to string", raw: 42, target: reflect.TypeFor[string](), want: "42"},
		{name: "nil passthrough", raw: nil, target: reflect.TypeFor[int](), want: nil},
		{
			name:   "slice of strings",
			raw:    []any{"a", "b"},
			target: reflect.TypeFor[[]string](),
			want:   []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceValue(tt.raw, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceValueFailure(t *testing.T) {
	_, err := coerceValue("not a number", reflect.TypeFor[int]())
	assert.Error(t, err)

	_, err = coerceValue("not a duration", reflect.TypeFor[time.Duration]())
	assert.Error(t, err)
}

func TestCoerceValueNilTarget(t *testing.T) {
	got, err := coerceValue("raw", nil)
	require.NoError(t, err)
	assert.Equal(t, "raw", got)
}
