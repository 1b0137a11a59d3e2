// Package check provides the chainable value-checking engine the settings
// registry validates candidate values with.
//
// A Checker is bound to one candidate at a time; validators express
// constraints by chaining Require calls or by running custom predicates via
// Check/CheckAgainst. The first rejected requirement records a *Failure and
// short-circuits the rest of the chain, so a validator reads as a straight
// sequence of assertions:
//
//	checker.Bind(value).
//		RequireNonEmptyString().
//		RequireMatch(`^[a-z]+$`)
//	if err := checker.Err(); err != nil { ... }
//
// Nil candidates are handled before any predicate runs: by default a nil
// value fails with "value cannot be nil"; AllowNil switches the policy for
// the current binding so a nil candidate passes without invoking predicates.
// Predicates therefore never need their own nil guards.
//
// Misusing the API (AllowNil twice on one binding, CheckAgainst over an
// empty set) records a *UsageError instead of a *Failure; callers can tell
// the two apart with IsFailure/IsUsageError.
package check
