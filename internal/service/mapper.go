package service

import (
	"time"

	"github.com/finsend/transfer-service/internal/domain"
)

// TransferDTO is the outward shape of a transfer. Status and currency are
// stable string tokens; amounts are fixed-point decimal strings.
type TransferDTO struct {
	ID                 string    `json:"id"`
	TransactionCode    string    `json:"transaction_code"`
	SenderCustomerID   string    `json:"sender_customer_id"`
	ReceiverCustomerID string    `json:"receiver_customer_id"`
	Amount             string    `json:"amount"`
	Currency           string    `json:"currency"`
	ConvertedAmount    *string   `json:"converted_amount,omitempty"`
	ConvertedCurrency  *string   `json:"converted_currency,omitempty"`
	FXRate             *string   `json:"fx_rate,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ToTransferDTO maps an entity to its DTO. Pure and total: a well-formed
// transfer always maps, with no side effects and no failure path.
func ToTransferDTO(t *domain.Transfer) TransferDTO {
	dto := TransferDTO{
		ID:                 t.ID.String(),
		TransactionCode:    t.TransactionCode,
		SenderCustomerID:   t.SenderCustomerID.String(),
		ReceiverCustomerID: t.ReceiverCustomerID.String(),
		Amount:             t.Amount.ToDecimal().StringFixed(2),
		Currency:           t.Amount.Currency,
		Status:             string(t.Status),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if t.ConvertedAmount != nil {
		amount := t.ConvertedAmount.ToDecimal().StringFixed(2)
		currency := t.ConvertedAmount.Currency
		dto.ConvertedAmount = &amount
		dto.ConvertedCurrency = &currency
	}
	if t.FXRate != nil {
		rate := t.FXRate.String()
		dto.FXRate = &rate
	}
	return dto
}
