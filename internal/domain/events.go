package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds double as AMQP routing keys.
const (
	EventKindTransferCreated       = "transfer.created"
	EventKindTransferStatusChanged = "transfer.status_changed"
	EventKindTransferDeleted       = "transfer.deleted"
)

// Event is the closed set of domain events raised by a Transfer. New cases
// are added here, never by open subclassing; consumers switch exhaustively
// on the concrete type or Kind.
type Event interface {
	Kind() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time

	isEvent()
}

// TransferCreated is raised exactly once, when a transfer is persisted.
type TransferCreated struct {
	TransferID         uuid.UUID `json:"transfer_id"`
	TransactionCode    string    `json:"transaction_code"`
	SenderCustomerID   uuid.UUID `json:"sender_customer_id"`
	ReceiverCustomerID uuid.UUID `json:"receiver_customer_id"`
	AmountMicros       int64     `json:"amount_micros"`
	Currency           string    `json:"currency"`
	ConvertedMicros    *int64    `json:"converted_micros,omitempty"`
	ConvertedCurrency  *string   `json:"converted_currency,omitempty"`
	Status             Status    `json:"status"`
	At                 time.Time `json:"occurred_at"`
}

// TransferStatusChanged carries the before and after status of a transition.
type TransferStatusChanged struct {
	TransferID      uuid.UUID `json:"transfer_id"`
	TransactionCode string    `json:"transaction_code"`
	OldStatus       Status    `json:"old_status"`
	NewStatus       Status    `json:"new_status"`
	At              time.Time `json:"occurred_at"`
}

// TransferDeleted is raised when a transfer is tombstoned.
type TransferDeleted struct {
	TransferID      uuid.UUID `json:"transfer_id"`
	TransactionCode string    `json:"transaction_code"`
	At              time.Time `json:"occurred_at"`
}

// NewTransferCreated snapshots the freshly created transfer.
func NewTransferCreated(t *Transfer) *TransferCreated {
	ev := &TransferCreated{
		TransferID:         t.ID,
		TransactionCode:    t.TransactionCode,
		SenderCustomerID:   t.SenderCustomerID,
		ReceiverCustomerID: t.ReceiverCustomerID,
		AmountMicros:       t.Amount.Amount,
		Currency:           t.Amount.Currency,
		Status:             t.Status,
		At:                 t.CreatedAt,
	}
	if t.ConvertedAmount != nil {
		micros := t.ConvertedAmount.Amount
		currency := t.ConvertedAmount.Currency
		ev.ConvertedMicros = &micros
		ev.ConvertedCurrency = &currency
	}
	return ev
}

func NewTransferStatusChanged(t *Transfer, old, next Status) *TransferStatusChanged {
	return &TransferStatusChanged{
		TransferID:      t.ID,
		TransactionCode: t.TransactionCode,
		OldStatus:       old,
		NewStatus:       next,
		At:              t.UpdatedAt,
	}
}

func NewTransferDeleted(t *Transfer) *TransferDeleted {
	return &TransferDeleted{
		TransferID:      t.ID,
		TransactionCode: t.TransactionCode,
		At:              t.UpdatedAt,
	}
}

func (e *TransferCreated) Kind() string              { return EventKindTransferCreated }
func (e *TransferCreated) AggregateID() uuid.UUID    { return e.TransferID }
func (e *TransferCreated) OccurredAt() time.Time     { return e.At }
func (e *TransferCreated) isEvent()                  {}
func (e *TransferStatusChanged) Kind() string        { return EventKindTransferStatusChanged }
func (e *TransferStatusChanged) AggregateID() uuid.UUID { return e.TransferID }
func (e *TransferStatusChanged) OccurredAt() time.Time  { return e.At }
func (e *TransferStatusChanged) isEvent()               {}
func (e *TransferDeleted) Kind() string              { return EventKindTransferDeleted }
func (e *TransferDeleted) AggregateID() uuid.UUID    { return e.TransferID }
func (e *TransferDeleted) OccurredAt() time.Time     { return e.At }
func (e *TransferDeleted) isEvent()                  {}
