package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewError(KindTransferNotFound, "transfer not found")
	assert.Equal(t, "TRANSFER_NOT_FOUND: transfer not found", err.Error())

	wrapped := WrapError(KindStorageUnavailable, "insert transfer", errors.New("connection refused"))
	assert.Equal(t, "STORAGE_UNAVAILABLE: insert transfer: connection refused", wrapped.Error())
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(KindStorageUnavailable, "insert transfer", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestKindOf(t *testing.T) {
	err := Errorf(KindInvalidTransfer, "amount must be positive, got %d", -1)
	assert.Equal(t, KindInvalidTransfer, KindOf(err))

	// Kind survives fmt wrapping.
	wrapped := fmt.Errorf("create transfer: %w", err)
	assert.Equal(t, KindInvalidTransfer, KindOf(wrapped))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestAsDomainError(t *testing.T) {
	typed := NewError(KindConcurrentModification, "lost the race")
	assert.Same(t, typed, AsDomainError(typed))

	coerced := AsDomainError(errors.New("socket closed"))
	assert.Equal(t, KindStorageUnavailable, coerced.Kind)
}
