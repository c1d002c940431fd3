package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// FailureKind classifies why a recipe operation failed. All kinds are
// handled the same way (logged, fallback returned); the kind only lets the
// presentation layer word its error state.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureDecode    FailureKind = "decode"
	FailureTimeout   FailureKind = "timeout"
	FailureCanceled  FailureKind = "canceled"
	FailureInvalid   FailureKind = "invalid"
)

// OperationError describes a failed recipe operation.
type OperationError struct {
	Op   string
	Kind FailureKind
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status reported by the API, or 0 when the
// failure did not come from a response.
func (e *OperationError) StatusCode() int {
	var statusErr *driven.StatusError
	if errors.As(e.Err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Result is the outcome of a recipe operation. Value always holds something
// usable: the API payload on success, the operation's fallback on failure.
type Result[T any] struct {
	Value T
	Err   *OperationError
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// ValueOr returns Value on success and def on failure.
func (r Result[T]) ValueOr(def T) T {
	if r.Err != nil {
		return def
	}
	return r.Value
}

// AsError returns the failure as an error, or nil on success.
func (r Result[T]) AsError() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// classify maps an adapter error onto a FailureKind.
func classify(err error) FailureKind {
	var statusErr *driven.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.As(err, &statusErr):
		return FailureStatus
	case errors.Is(err, driven.ErrMalformedPayload):
		return FailureDecode
	default:
		return FailureTransport
	}
}
