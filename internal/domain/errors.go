package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies expected domain failures. Callers map kinds to
// user-visible messages and status codes; the core's contract ends here.
type ErrorKind string

const (
	KindInvalidTransfer         ErrorKind = "INVALID_TRANSFER"
	KindTransferNotFound        ErrorKind = "TRANSFER_NOT_FOUND"
	KindInvalidStatusTransition ErrorKind = "INVALID_STATUS_TRANSITION"
	KindConversionUnavailable   ErrorKind = "CONVERSION_UNAVAILABLE"
	KindConcurrentModification  ErrorKind = "CONCURRENT_MODIFICATION"
	KindStorageUnavailable      ErrorKind = "STORAGE_UNAVAILABLE"
)

// DomainError is a typed, expected failure returned through Result.Fail.
// Only programming errors propagate as plain errors or panics.
type DomainError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewError creates a DomainError with the given kind and message.
func NewError(kind ErrorKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// Errorf creates a DomainError with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a DomainError that preserves the underlying cause.
func WrapError(kind ErrorKind, message string, cause error) *DomainError {
	return &DomainError{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the ErrorKind from err, or "" when err is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// AsDomainError converts err into a *DomainError, falling back to
// StorageUnavailable for untyped failures crossing the handler boundary.
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return WrapError(KindStorageUnavailable, "unexpected storage failure", err)
}
