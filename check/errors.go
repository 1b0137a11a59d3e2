package check

import "fmt"

// Failure reports a candidate value rejected by a declared constraint.
// It carries the human-readable reason the requirement produced.
type Failure struct {
	Reason string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return "invalid value: " + f.Reason
}

// UsageError reports a misuse of the checker API by the validator author,
// as opposed to a bad candidate value: AllowNil called twice on one binding,
// CheckAgainst over an empty element set, a nil predicate, a nil element.
type UsageError struct {
	Msg string
}

// Error implements the error interface.
func (u *UsageError) Error() string {
	if u == nil {
		return ""
	}
	return "checker misuse: " + u.Msg
}

func newFailure(format string, args ...any) *Failure {
	return &Failure{Reason: fmt.Sprintf(format, args...)}
}

func newUsageError(format string, args ...any) *UsageError {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// IsFailure reports whether err is a constraint violation rather than an
// authoring mistake or an unrelated error.
func IsFailure(err error) bool {
	_, ok := err.(*Failure)
	return ok
}

// IsUsageError reports whether err indicates checker API misuse.
func IsUsageError(err error) bool {
	_, ok := err.(*UsageError)
	return ok
}
