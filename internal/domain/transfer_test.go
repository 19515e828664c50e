package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransfer(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	transfer, err := NewTransfer(sender, receiver, NewMoney(100_000_000, "USD"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, transfer.ID)
	assert.True(t, strings.HasPrefix(transfer.TransactionCode, "TRF-"))
	assert.Equal(t, sender, transfer.SenderCustomerID)
	assert.Equal(t, receiver, transfer.ReceiverCustomerID)
	assert.Equal(t, StatusPending, transfer.Status)
	assert.Nil(t, transfer.ConvertedAmount)
	assert.Nil(t, transfer.FXRate)
	assert.Nil(t, transfer.DeletedAt)
	assert.Equal(t, transfer.CreatedAt, transfer.UpdatedAt)
}

func TestNewTransfer_Validation(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	cases := []struct {
		name     string
		sender   uuid.UUID
		receiver uuid.UUID
		amount   Money
	}{
		{"zero amount", sender, receiver, NewMoney(0, "USD")},
		{"negative amount", sender, receiver, NewMoney(-5_000_000, "USD")},
		{"nil sender", uuid.Nil, receiver, NewMoney(1_000_000, "USD")},
		{"nil receiver", sender, uuid.Nil, NewMoney(1_000_000, "USD")},
		{"self transfer", sender, sender, NewMoney(1_000_000, "USD")},
		{"missing currency", sender, receiver, NewMoney(1_000_000, "")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTransfer(tc.sender, tc.receiver, tc.amount)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindInvalidTransfer))
		})
	}
}

func TestNewTransactionCode_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code := NewTransactionCode()
		require.True(t, strings.HasPrefix(code, "TRF-"))
		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusFailed},
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusFailed},
		{StatusCompleted, StatusReversed},
	}
	for _, tc := range legal {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct{ from, to Status }{
		{StatusPending, StatusReversed},
		{StatusProcessing, StatusPending},
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusProcessing},
		{StatusFailed, StatusPending},
		{StatusFailed, StatusCompleted},
		{StatusReversed, StatusCompleted},
		{StatusPending, StatusPending},
	}
	for _, tc := range illegal {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal()) // can still be reversed
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusReversed.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("  processing ")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, status)

	_, err = ParseStatus("SHIPPED")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidStatusTransition))
}

func TestTransfer_TransitionTo(t *testing.T) {
	transfer, err := NewTransfer(uuid.New(), uuid.New(), NewMoney(50_000_000, "USD"))
	require.NoError(t, err)

	ev, err := transfer.TransitionTo(StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, transfer.Status)
	assert.Equal(t, StatusPending, ev.OldStatus)
	assert.Equal(t, StatusProcessing, ev.NewStatus)
	assert.Equal(t, transfer.ID, ev.AggregateID())
	assert.Equal(t, EventKindTransferStatusChanged, ev.Kind())
}

func TestTransfer_TransitionTo_Illegal(t *testing.T) {
	transfer, err := NewTransfer(uuid.New(), uuid.New(), NewMoney(50_000_000, "USD"))
	require.NoError(t, err)

	_, err = transfer.TransitionTo(StatusCompleted)
	require.NoError(t, err)

	// COMPLETED never returns to PENDING.
	_, err = transfer.TransitionTo(StatusPending)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidStatusTransition))
	assert.Equal(t, StatusCompleted, transfer.Status)
}

func TestTransfer_TransitionTo_Deleted(t *testing.T) {
	transfer, err := NewTransfer(uuid.New(), uuid.New(), NewMoney(50_000_000, "USD"))
	require.NoError(t, err)

	_, err = transfer.MarkDeleted()
	require.NoError(t, err)

	_, err = transfer.TransitionTo(StatusProcessing)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransferNotFound))
}

func TestTransfer_ApplyConversion(t *testing.T) {
	transfer, err := NewTransfer(uuid.New(), uuid.New(), NewMoney(100_000_000, "USD"))
	require.NoError(t, err)

	rate := decimal.NewFromFloat(0.92)
	require.NoError(t, transfer.ApplyConversion(NewMoney(92_000_000, "EUR"), rate))
	require.NotNil(t, transfer.ConvertedAmount)
	assert.Equal(t, int64(92_000_000), transfer.ConvertedAmount.Amount)
	assert.Equal(t, "EUR", transfer.ConvertedAmount.Currency)
	require.NotNil(t, transfer.FXRate)
	assert.True(t, transfer.FXRate.Equal(rate))

	// Conversion is applied at most once.
	err = transfer.ApplyConversion(NewMoney(79_000_000, "GBP"), decimal.NewFromFloat(0.79))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidTransfer))
}

func TestTransfer_ApplyConversion_SameCurrency(t *testing.T) {
	transfer, err := NewTransfer(uuid.New(), uuid.New(), NewMoney(100_000_000, "USD"))
	require.NoError(t, err)

	err = transfer.ApplyConversion(NewMoney(100_000_000, "USD"), decimal.NewFromInt(1))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidTransfer))
	assert.Nil(t, transfer.ConvertedAmount)
}

func TestTransfer_MarkDeleted(t *testing.T) {
	transfer, err := NewTransfer(uuid.New(), uuid.New(), NewMoney(25_000_000, "USD"))
	require.NoError(t, err)

	ev, err := transfer.MarkDeleted()
	require.NoError(t, err)
	require.NotNil(t, transfer.DeletedAt)
	assert.Equal(t, EventKindTransferDeleted, ev.Kind())
	assert.Equal(t, transfer.ID, ev.AggregateID())

	_, err = transfer.MarkDeleted()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransferNotFound))
}
