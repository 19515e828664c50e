package handler

import (
	"encoding/json"
	"net/http"

	"github.com/finsend/transfer-service/internal/api/problem"
	"github.com/finsend/transfer-service/internal/domain"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondDomainError maps a typed domain failure to its HTTP representation.
func RespondDomainError(w http.ResponseWriter, r *http.Request, err *domain.DomainError) {
	status, slug := http.StatusInternalServerError, "internal"
	switch err.Kind {
	case domain.KindInvalidTransfer:
		status, slug = http.StatusBadRequest, "transfer/invalid"
	case domain.KindTransferNotFound:
		status, slug = http.StatusNotFound, "transfer/not-found"
	case domain.KindInvalidStatusTransition:
		status, slug = http.StatusConflict, "transfer/invalid-status-transition"
	case domain.KindConcurrentModification:
		status, slug = http.StatusConflict, "transfer/concurrent-modification"
	case domain.KindConversionUnavailable:
		status, slug = http.StatusServiceUnavailable, "fx/conversion-unavailable"
	case domain.KindStorageUnavailable:
		status, slug = http.StatusServiceUnavailable, "storage/unavailable"
	}
	problem.Write(w, r, status, problem.Type(slug), http.StatusText(status), err.Message)
}
