package handler

import (
	"encoding/json"
	"net/http"

	"github.com/finsend/transfer-service/internal/api/problem"
	"github.com/finsend/transfer-service/internal/domain"
	"github.com/finsend/transfer-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the transfer commands and queries over HTTP.
type TransferHandler struct {
	svc *service.TransferService
}

func NewTransferHandler(svc *service.TransferService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

type createTransferRequest struct {
	SenderCustomerID   string `json:"sender_customer_id"`
	ReceiverCustomerID string `json:"receiver_customer_id"`
	Amount             string `json:"amount"`
	Currency           string `json:"currency"`
	TargetCurrency     string `json:"target_currency,omitempty"`
}

func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-body"), http.StatusText(http.StatusBadRequest), "Invalid request body")
		return
	}

	sender, err := uuid.Parse(req.SenderCustomerID)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-field"), http.StatusText(http.StatusBadRequest), "Invalid sender_customer_id")
		return
	}
	receiver, err := uuid.Parse(req.ReceiverCustomerID)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-field"), http.StatusText(http.StatusBadRequest), "Invalid receiver_customer_id")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-field"), http.StatusText(http.StatusBadRequest), "Invalid amount")
		return
	}

	res := h.svc.CreateTransfer(r.Context(), service.CreateTransferCmd{
		SenderCustomerID:   sender,
		ReceiverCustomerID: receiver,
		AmountMicros:       domain.FromDecimal(amount),
		Currency:           req.Currency,
		TargetCurrency:     req.TargetCurrency,
	})
	if !res.IsOk() {
		RespondDomainError(w, r, res.Err())
		return
	}
	RespondJSON(w, http.StatusCreated, res.Value())
}

func (h *TransferHandler) GetTransferByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	res := h.svc.GetTransferByCode(r.Context(), code)
	if !res.IsOk() {
		RespondDomainError(w, r, res.Err())
		return
	}
	RespondJSON(w, http.StatusOK, res.Value())
}

func (h *TransferHandler) GetTransferByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-field"), http.StatusText(http.StatusBadRequest), "Invalid transfer id")
		return
	}

	res := h.svc.GetTransferByID(r.Context(), id)
	if !res.IsOk() {
		RespondDomainError(w, r, res.Err())
		return
	}
	RespondJSON(w, http.StatusOK, res.Value())
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *TransferHandler) UpdateTransferStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-field"), http.StatusText(http.StatusBadRequest), "Invalid transfer id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-body"), http.StatusText(http.StatusBadRequest), "Invalid request body")
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-field"), http.StatusText(http.StatusBadRequest), "Invalid status")
		return
	}

	res := h.svc.UpdateTransferStatus(r.Context(), id, status)
	if !res.IsOk() {
		RespondDomainError(w, r, res.Err())
		return
	}
	RespondJSON(w, http.StatusOK, res.Value())
}

func (h *TransferHandler) DeleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-field"), http.StatusText(http.StatusBadRequest), "Invalid transfer id")
		return
	}

	res := h.svc.DeleteTransfer(r.Context(), id)
	if !res.IsOk() {
		RespondDomainError(w, r, res.Err())
		return
	}
	RespondJSON(w, http.StatusOK, res.Value())
}
