// Package authz defines the error taxonomy shared by every guard and
// resolver: denial is returned as a value, only store/network failures are
// wrapped as Unavailable. Callers must never conflate "could not determine
// access" with "access denied".
package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no valid identity could be resolved. Always
	// recoverable by redirecting to the appropriate login page.
	ErrUnauthenticated = errors.New("no authenticated identity")

	// ErrForbidden means a valid identity lacks the capability or scope for
	// the action.
	ErrForbidden = errors.New("insufficient capability for this action")
)

// Error is a specialized forbidden for guarded mutations: it carries a
// machine code and a user-facing reason so callers can render a specific
// message instead of a generic denial. errors.Is(err, ErrForbidden) holds.
type Error struct {
	Code   string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// Is makes every authz.Error match ErrForbidden
func (e *Error) Is(target error) bool {
	return target == ErrForbidden
}

// Denied builds an authorization error with a machine code and reason
func Denied(code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

// AsAuthzError extracts an *Error if err carries one
func AsAuthzError(err error) (*Error, bool) {
	var authzErr *Error
	if errors.As(err, &authzErr) {
		return authzErr, true
	}
	return nil, false
}

// UnavailableError means the backing store could not be consulted. Distinct
// from denial: callers should retry or surface a transient-error message.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps a store/network failure with the operation that failed
func Unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
