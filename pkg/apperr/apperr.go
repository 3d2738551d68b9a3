// Package apperr defines the error taxonomy shared by all features.
//
// Services return *Error values so handlers can map each kind to a distinct
// HTTP status and message instead of guessing from opaque error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the presentation layer.
type Kind string

const (
	// KindValidation marks malformed or missing input. Never retried.
	KindValidation Kind = "VALIDATION"

	// KindNotFound marks a missing group, participant, or invitation.
	KindNotFound Kind = "NOT_FOUND"

	// KindAuthorization marks a caller lacking rights for a mutation.
	// Distinct from NotFound so the client can explain why, not just what.
	KindAuthorization Kind = "AUTHORIZATION"

	// KindPersistence marks a failed store operation (network, constraint).
	KindPersistence Kind = "PERSISTENCE"

	// KindAggregationUnavailable marks the absent balance RPC fast path.
	// Services absorb it by falling back to raw-row aggregation; it must
	// never surface to a client.
	KindAggregationUnavailable Kind = "AGGREGATION_UNAVAILABLE"
)

// Error is a typed domain error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apperr values by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Validation builds a validation error with a human-readable message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Authorization builds an authorization error.
func Authorization(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a store failure. The wrapped error is kept for logs;
// only Message is safe to show to a client.
func Persistence(err error, format string, args ...any) *Error {
	return &Error{Kind: KindPersistence, Message: fmt.Sprintf(format, args...), Err: err}
}

// AggregationUnavailable wraps a missing balance-RPC fast path.
func AggregationUnavailable(err error) *Error {
	return &Error{Kind: KindAggregationUnavailable, Message: "balance aggregation unavailable", Err: err}
}

// KindOf returns the kind of err, or "" if err is not an apperr.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
