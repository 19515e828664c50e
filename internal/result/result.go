// Package result provides the success/failure container used at every
// handler boundary. Expected domain failures travel as typed errors inside a
// Result instead of crossing boundaries as control-flow errors.
package result

import "github.com/finsend/transfer-service/internal/domain"

// Result holds either a value or a domain error, never both.
type Result[T any] struct {
	value T
	err   *domain.DomainError
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail wraps a domain error.
func Fail[T any](err *domain.DomainError) Result[T] {
	return Result[T]{err: err}
}

// FailErr coerces any error into a failed Result, typing untyped errors as
// StorageUnavailable.
func FailErr[T any](err error) Result[T] {
	return Result[T]{err: domain.AsDomainError(err)}
}

// IsOk reports whether the result carries a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the wrapped value. Only meaningful when IsOk.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the wrapped domain error, or nil on success.
func (r Result[T]) Err() *domain.DomainError {
	return r.err
}

// Kind returns the error kind, or "" on success.
func (r Result[T]) Kind() domain.ErrorKind {
	if r.err == nil {
		return ""
	}
	return r.err.Kind
}

// Unpack returns the value and error in Go's usual two-value shape.
func (r Result[T]) Unpack() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
