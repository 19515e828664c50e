package result

import (
	"errors"
	"testing"

	"github.com/finsend/transfer-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOk(t *testing.T) {
	res := Ok("hello")
	assert.True(t, res.IsOk())
	assert.Equal(t, "hello", res.Value())
	assert.Nil(t, res.Err())
	assert.Equal(t, domain.ErrorKind(""), res.Kind())

	value, err := res.Unpack()
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestFail(t *testing.T) {
	res := Fail[string](domain.NewError(domain.KindTransferNotFound, "transfer not found"))
	assert.False(t, res.IsOk())
	assert.Equal(t, domain.KindTransferNotFound, res.Kind())

	value, err := res.Unpack()
	require.Error(t, err)
	assert.Empty(t, value)
	assert.True(t, domain.IsKind(err, domain.KindTransferNotFound))
}

func TestFailErr_TypedError(t *testing.T) {
	res := FailErr[int](domain.NewError(domain.KindInvalidTransfer, "amount must be positive"))
	assert.Equal(t, domain.KindInvalidTransfer, res.Kind())
}

func TestFailErr_UntypedError(t *testing.T) {
	// Untyped errors crossing the boundary surface as storage failures.
	res := FailErr[int](errors.New("connection reset"))
	assert.Equal(t, domain.KindStorageUnavailable, res.Kind())
}
