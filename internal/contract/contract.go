// Package contract reports programming errors in graph construction.
//
// A contract violation (wrong arity, mismatched shapes, growing a view,
// out-of-range sparse indices) is never a runtime condition to recover from:
// it panics with an error that wraps ErrViolation and carries a stack trace.
package contract

import (
	"github.com/pkg/errors"
)

// ErrViolation is the root cause of every contract violation panic.
var ErrViolation = errors.New("contract violation")

// Require panics with a violation built from format and args when cond is false.
func Require(cond bool, format string, args ...any) {
	if !cond {
		Fail(format, args...)
	}
}

// Fail panics with a violation built from format and args.
func Fail(format string, args ...any) {
	panic(errors.Wrapf(ErrViolation, format, args...))
}

// IsViolation reports whether a recovered panic value is a contract violation.
func IsViolation(r any) bool {
	err, ok := r.(error)
	return ok && errors.Is(err, ErrViolation)
}
