// Package envprovider implements a koanf provider over environment
// variables that assembles a nested JSON document, so indexed keys turn
// into arrays:
//
//	APP_DATABASE__0__PASSWORD=pw_1
//	APP_DATABASE__1__PASSWORD=pw_2
package envprovider

import (
	"errors"
	"os"
	"strings"

	"github.com/tidwall/sjson"
)

// Env reads os.Environ into a JSON document whose nesting follows delim.
type Env struct {
	prefix string
	delim  string
	cb     func(key, value string) (string, any)
}

// Provider returns an environment variable provider. Only variables
// carrying the prefix (case-sensitive) are captured. cb, when non-nil,
// rewrites each variable name (lowercase it, strip the prefix, map the
// delimiter to dots); returning an empty string drops the variable.
func Provider(prefix, delim string, cb func(s string) string) *Env {
	e := &Env{prefix: prefix, delim: delim}
	if cb != nil {
		e.cb = func(key, value string) (string, any) {
			return cb(key), value
		}
	}
	return e
}

// ProviderWithValue works like Provider with a callback over both name and
// value, letting callers substitute richer types than the raw string.
func ProviderWithValue(prefix, delim string, cb func(key, value string) (string, any)) *Env {
	return &Env{prefix: prefix, delim: delim, cb: cb}
}

// ReadBytes assembles the environment into a JSON document.
func (e *Env) ReadBytes() ([]byte, error) {
	out := "{}"

	for _, entry := range os.Environ() {
		if e.prefix != "" && !strings.HasPrefix(entry, e.prefix) {
			continue
		}

		name, rawValue, _ := strings.Cut(entry, "=")
		key := name
		var value any = rawValue

		if e.cb != nil {
			key, value = e.cb(name, rawValue)
			if key == "" {
				continue
			}
		}

		path := strings.Replace(key, e.delim, ".", -1)
		next, err := sjson.Set(out, path, value)
		if err != nil {
			return nil, err
		}
		out = next
	}

	return []byte(out), nil
}

// Read is not supported; the provider emits bytes for a JSON parser.
func (e *Env) Read() (map[string]any, error) {
	return nil, errors.New("envprovider does not support this method")
}
