package domain

import (
	"encoding/base32"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a transfer.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusReversed   Status = "REVERSED"
)

// statusTransitions is the full legal-transition graph. Transitions are
// monotonic: once a transfer leaves PENDING it can never return to it.
var statusTransitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusProcessing: {},
		StatusCompleted:  {},
		StatusFailed:     {},
	},
	StatusProcessing: {
		StatusCompleted: {},
		StatusFailed:    {},
	},
	StatusCompleted: {
		StatusReversed: {},
	},
	StatusFailed:   {},
	StatusReversed: {},
}

// ParseStatus normalizes and validates a status token.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statusTransitions[status]; !ok {
		return "", Errorf(KindInvalidStatusTransition, "unknown status %q", s)
	}
	return status, nil
}

// CanTransitionTo reports whether the graph allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	targets, ok := statusTransitions[s]
	if !ok {
		return false
	}
	_, ok = targets[next]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// Transfer represents one money movement between two customers.
// Customers are weak references by identifier only; their lifecycle is owned
// by the customer service.
type Transfer struct {
	ID                 uuid.UUID
	TransactionCode    string
	SenderCustomerID   uuid.UUID
	ReceiverCustomerID uuid.UUID
	Amount             Money
	ConvertedAmount    *Money // present iff currency conversion applied
	FXRate             *decimal.Decimal
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time // soft-delete tombstone, rows are never removed
}

// NewTransfer validates creation invariants and builds a PENDING transfer
// with a fresh id and transaction code.
func NewTransfer(sender, receiver uuid.UUID, amount Money) (*Transfer, error) {
	if !amount.IsPositive() {
		return nil, Errorf(KindInvalidTransfer, "amount must be positive, got %s", amount)
	}
	if sender == uuid.Nil || receiver == uuid.Nil {
		return nil, NewError(KindInvalidTransfer, "sender and receiver are required")
	}
	if sender == receiver {
		return nil, NewError(KindInvalidTransfer, "sender and receiver must differ")
	}
	if strings.TrimSpace(amount.Currency) == "" {
		return nil, NewError(KindInvalidTransfer, "currency is required")
	}

	now := time.Now().UTC()
	return &Transfer{
		ID:                 uuid.New(),
		TransactionCode:    NewTransactionCode(),
		SenderCustomerID:   sender,
		ReceiverCustomerID: receiver,
		Amount:             amount,
		Status:             StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// ApplyConversion records the converted amount and rate. Set exactly once at
// creation time, and only when the target currency differs from the source.
func (t *Transfer) ApplyConversion(converted Money, rate decimal.Decimal) error {
	if t.ConvertedAmount != nil {
		return NewError(KindInvalidTransfer, "conversion already applied")
	}
	if converted.Currency == t.Amount.Currency {
		return NewError(KindInvalidTransfer, "converted currency equals source currency")
	}
	t.ConvertedAmount = &converted
	t.FXRate = &rate
	return nil
}

// TransitionTo validates the move against the transition graph, applies it,
// and returns the status-changed event the caller must record.
func (t *Transfer) TransitionTo(next Status) (*TransferStatusChanged, error) {
	if t.DeletedAt != nil {
		return nil, Errorf(KindTransferNotFound, "transfer %s is deleted", t.ID)
	}
	if !t.Status.CanTransitionTo(next) {
		return nil, Errorf(KindInvalidStatusTransition, "cannot transition %s -> %s", t.Status, next)
	}
	old := t.Status
	t.Status = next
	t.UpdatedAt = time.Now().UTC()
	return NewTransferStatusChanged(t, old, next), nil
}

// MarkDeleted tombstones the transfer. The row is retained for audit.
func (t *Transfer) MarkDeleted() (*TransferDeleted, error) {
	if t.DeletedAt != nil {
		return nil, Errorf(KindTransferNotFound, "transfer %s is already deleted", t.ID)
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	t.UpdatedAt = now
	return NewTransferDeleted(t), nil
}

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewTransactionCode generates a globally unique, URL-safe transaction code.
// 128 bits of UUID entropy encoded as base32; collisions are vanishingly rare
// and the unique index on transaction_code is the final arbiter.
func NewTransactionCode() string {
	id := uuid.New()
	return "TRF-" + codeEncoding.EncodeToString(id[:])
}
