package server

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// ErrorResponse — единый формат ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("failed to encode response body")
	}
}

// writeDomainError переводит бизнес-ошибку в HTTP-статус.
// Конкурентные конфликты сюда не доходят: сервисы повторяют их внутри.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case domain.IsInsufficientInventory(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "insufficient_inventory"})
	case domain.IsInvalidTransition(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "invalid_transition"})
	case domain.IsExcessiveReturnQuantity(err):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "excessive_return_quantity"})
	case errors.Is(err, domain.ErrProductInactive):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "product_inactive"})
	case domain.IsConflict(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"})
	case isValidation(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	default:
		log.WithError(err).Error("unhandled error in http handler")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
	}
}

func isValidation(err error) bool {
	for _, sentinel := range []error{
		domain.ErrCustomerRequired,
		domain.ErrItemsRequired,
		domain.ErrItemQtyInvalid,
		domain.ErrItemPriceInvalid,
		domain.ErrItemProductRequired,
		domain.ErrItemDuplicateProduct,
		domain.ErrOrderIDRequired,
		domain.ErrProductRequired,
		domain.ErrReturnQtyInvalid,
		domain.ErrAmountNegative,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
