// Package storekit holds the building blocks shared by the per-domain
// console stores: the action result envelope and the fenced keyed cache.
package storekit

import "strings"

// Origin tags where a successful result came from, so a demo-dataset
// answer is never mistaken for a platform one.
type Origin string

const (
	OriginReal     Origin = "real"
	OriginFallback Origin = "fallback"
)

// DefaultErrorMessage stands in when a failure carries no message.
const DefaultErrorMessage = "operation failed"

// Result is the envelope every store action returns. Stores never
// propagate Go errors to the console layer; failures land here as a
// user-safe message.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Err     string `json:"error,omitempty"`
	Origin  Origin `json:"origin,omitempty"`

	cause error
}

// Cause returns the error behind a failed envelope. It is not part of
// the wire shape; the HTTP layer uses it to pick a status code.
func (r Result[T]) Cause() error {
	return r.cause
}

// OK wraps a successful result with its origin.
func OK[T any](data T, origin Origin) Result[T] {
	return Result[T]{Success: true, Data: data, Origin: origin}
}

// Fail wraps an error into a failed envelope.
func Fail[T any](err error) Result[T] {
	message := DefaultErrorMessage
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		message = err.Error()
	}
	return Result[T]{Success: false, Err: message, cause: err}
}
