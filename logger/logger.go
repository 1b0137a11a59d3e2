// Package logger defines the minimal leveled logging surface the binder
// reports progress through. The registry core never logs; failures there
// propagate as errors.
package logger

import (
	"log/slog"
)

// Logger accepts a message plus alternating key-value pairs, slog style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefaultLogger forwards to slog.Default with a component name attached.
type DefaultLogger struct {
	name string
}

func NewDefaultLogger(name string) *DefaultLogger {
	return &DefaultLogger{name: name}
}

func (d *DefaultLogger) Debug(msg string, args ...any) {
	slog.Default().With("component", d.name).Debug(msg, args...)
}

func (d *DefaultLogger) Info(msg string, args ...any) {
	slog.Default().With("component", d.name).Info(msg, args...)
}

func (d *DefaultLogger) Error(msg string, args ...any) {
	slog.Default().With("component", d.name).Error(msg, args...)
}

// Noop discards everything. Useful in tests.
type Noop struct{}

func (Noop) Debug(string, ...any) {}
func (Noop) Info(string, ...any)  {}
func (Noop) Error(string, ...any) {}
