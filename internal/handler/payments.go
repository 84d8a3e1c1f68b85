// Package handler exposes the REST surface: merchant-facing payment
// operations and the callback endpoint gateways redirect and notify to.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/flows"
	"github.com/hostedpay/payflow/internal/gateway"
)

// PaymentHandler serves the merchant-facing API: creating payments and
// initiating the four transaction operations against them.
type PaymentHandler struct {
	orc       *flows.Orchestrator
	authorize *flows.AuthorizeFlow
	capture   *flows.CaptureFlow
	refund    *flows.RefundFlow
	void      *flows.VoidFlow
	validate  *validator.Validate
}

func NewPaymentHandler(
	orc *flows.Orchestrator,
	authorize *flows.AuthorizeFlow,
	capture *flows.CaptureFlow,
	refund *flows.RefundFlow,
	void *flows.VoidFlow,
) *PaymentHandler {
	return &PaymentHandler{
		orc:       orc,
		authorize: authorize,
		capture:   capture,
		refund:    refund,
		void:      void,
		validate:  validator.New(),
	}
}

func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments", h.HandleCreate)
	mux.HandleFunc("GET /payments/{identifier}", h.HandleGet)
	mux.HandleFunc("GET /payments/{identifier}/interactions", h.HandleInteractions)
	mux.HandleFunc("POST /payments/{identifier}/authorize", h.HandleAuthorize)
	mux.HandleFunc("POST /payments/{identifier}/capture", h.HandleCapture)
	mux.HandleFunc("POST /payments/{identifier}/void", h.HandleVoid)
	mux.HandleFunc("POST /payments/{identifier}/refund", h.HandleRefund)
}

type CreatePaymentRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	Gateway     string `json:"gateway" validate:"required"`
}

type PaymentResponse struct {
	Identifier  string    `json:"identifier"`
	OrderID     string    `json:"order_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Gateway     string    `json:"gateway"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		Identifier:  p.Identifier,
		OrderID:     p.OrderID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Gateway:     p.GatewayName,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *PaymentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, err)
		return
	}

	var req CreatePaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondValidationError(w, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err.Error())
		return
	}

	p, err := h.orc.CreatePayment(r.Context(), req.OrderID, req.AmountCents, req.Currency, req.Gateway)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toPaymentResponse(p))
}

func (h *PaymentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.orc.GetPayment(r.Context(), r.PathValue("identifier"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toPaymentResponse(p))
}

type InteractionResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Reference string    `json:"reference,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *PaymentHandler) HandleInteractions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.orc.Interactions(r.Context(), r.PathValue("identifier"))
	if err != nil {
		respondWithError(w, err)
		return
	}

	out := make([]InteractionResponse, len(entries))
	for i, e := range entries {
		out[i] = InteractionResponse{
			ID:        e.ID,
			Kind:      string(e.Kind),
			Reference: e.Reference,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		}
	}
	respondWithJSON(w, http.StatusOK, out)
}

// HandleAuthorize initiates authorization. When the gateway requires a
// redirect, the response is the redirect itself: a 302 for GET or a
// self-submitting HTML form for POST, ready for the payer's browser.
func (h *PaymentHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	p, err := h.orc.GetPayment(r.Context(), r.PathValue("identifier"))
	if err != nil {
		respondWithError(w, err)
		return
	}

	out, err := h.authorize.Authorize(r.Context(), p, requestData(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	if out == nil {
		respondWithJSON(w, http.StatusConflict, &APIError{
			Code:    "ALREADY_PROCESSED",
			Message: "authorization was already initiated for this payment",
		})
		return
	}

	if out.Redirect != nil {
		out.Redirect.Write(w, r)
		return
	}
	h.respondOutcome(w, p, out)
}

func (h *PaymentHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	h.handleOperation(w, r, h.capture.Capture)
}

func (h *PaymentHandler) HandleVoid(w http.ResponseWriter, r *http.Request) {
	h.handleOperation(w, r, h.void.Void)
}

func (h *PaymentHandler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	h.handleOperation(w, r, h.refund.Refund)
}

func (h *PaymentHandler) handleOperation(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*flows.Outcome, error),
) {
	p, err := h.orc.GetPayment(r.Context(), r.PathValue("identifier"))
	if err != nil {
		respondWithError(w, err)
		return
	}

	out, err := op(r.Context(), p, requestData(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	h.respondOutcome(w, p, out)
}

type OutcomeResponse struct {
	Successful bool   `json:"successful"`
	Message    string `json:"message,omitempty"`
	Status     string `json:"status"`
}

// respondOutcome reports the operation result. A decline is not a transport
// error, so the body always carries the outcome and the payment status.
func (h *PaymentHandler) respondOutcome(w http.ResponseWriter, p *domain.Payment, out *flows.Outcome) {
	status := http.StatusOK
	if !out.Successful {
		status = http.StatusPaymentRequired
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: out.Successful,
		Data: OutcomeResponse{
			Successful: out.Successful,
			Message:    out.Message,
			Status:     string(p.Status),
		},
	})
}
