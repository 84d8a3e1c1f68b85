package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/gateway"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
	}

	if response.Success {
		response.Data = data
	} else {
		if apiErr, ok := data.(*APIError); ok {
			response.Error = apiErr
		}
	}

	_ = json.NewEncoder(w).Encode(response)
}

func respondWithError(w http.ResponseWriter, err error) {
	code := "INTERNAL_ERROR"
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		code = "PAYMENT_NOT_FOUND"
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		code = "INVALID_TRANSITION"
		status = http.StatusConflict
	case errors.Is(err, domain.ErrMissingReference):
		code = "MISSING_REFERENCE"
		status = http.StatusConflict
	case errors.Is(err, domain.ErrDuplicatePayment):
		code = "DUPLICATE_PAYMENT"
		status = http.StatusConflict
	case errors.Is(err, gateway.ErrUnknownGateway):
		code = "UNKNOWN_GATEWAY"
		status = http.StatusBadRequest
	}
	if _, ok := gateway.IsCommunicationError(err); ok {
		code = "GATEWAY_UNAVAILABLE"
		status = http.StatusBadGateway
	}

	respondWithJSON(w, status, &APIError{
		Code:    code,
		Message: err.Error(),
	})
}

func respondValidationError(w http.ResponseWriter, message string) {
	respondWithJSON(w, http.StatusBadRequest, &APIError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}
