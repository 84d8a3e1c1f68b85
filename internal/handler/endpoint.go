package handler

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/flows"
	"github.com/hostedpay/payflow/internal/gateway"
)

// EndpointHandler serves the callback endpoint gateways send browsers and
// notifications to: /paymentendpoint/{identifier}/{action}. Both GET and
// POST are accepted because gateways differ in how they call back.
type EndpointHandler struct {
	orc       *flows.Orchestrator
	authorize *flows.AuthorizeFlow
	capture   *flows.CaptureFlow
	refund    *flows.RefundFlow
	logger    *slog.Logger
}

func NewEndpointHandler(
	orc *flows.Orchestrator,
	authorize *flows.AuthorizeFlow,
	capture *flows.CaptureFlow,
	refund *flows.RefundFlow,
	logger *slog.Logger,
) *EndpointHandler {
	return &EndpointHandler{
		orc:       orc,
		authorize: authorize,
		capture:   capture,
		refund:    refund,
		logger:    logger,
	}
}

func (h *EndpointHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /paymentendpoint/{identifier}/{action}", h.Handle)
	mux.HandleFunc("POST /paymentendpoint/{identifier}/{action}", h.Handle)
}

func (h *EndpointHandler) Handle(w http.ResponseWriter, r *http.Request) {
	p, err := h.orc.GetPayment(r.Context(), r.PathValue("identifier"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data := requestData(r)

	switch r.PathValue("action") {
	case flows.ActionComplete:
		h.handleComplete(w, r, p, data)
	case flows.ActionNotify:
		h.handleNotify(w, r, p, data)
	case flows.ActionCapture:
		h.handleCapture(w, r, p, data)
	case flows.ActionCancel:
		h.handleCancel(w, r, p)
	case flows.ActionRefund:
		h.handleRefund(w, r, p, data)
	default:
		http.NotFound(w, r)
	}
}

// handleComplete finishes the authorization for a browser returning from
// the gateway, then sends it on to the merchant's success or failure page.
func (h *EndpointHandler) handleComplete(w http.ResponseWriter, r *http.Request, p *domain.Payment, data gateway.RequestData) {
	out, err := h.authorize.CompleteAuthorize(r.Context(), p, data)
	if err != nil {
		http.Error(w, "completion failed", http.StatusInternalServerError)
		return
	}
	if out.Successful {
		http.Redirect(w, r, p.SuccessURL, http.StatusFound)
		return
	}
	http.Redirect(w, r, p.FailureURL, http.StatusFound)
}

// handleNotify is the server-to-server variant of complete. The gateway
// only cares that we received the notification, so the response is always
// 200; failures surface in the interaction log, not to the gateway.
func (h *EndpointHandler) handleNotify(w http.ResponseWriter, r *http.Request, p *domain.Payment, data gateway.RequestData) {
	if _, err := h.authorize.CompleteAuthorize(r.Context(), p, data); err != nil {
		h.logger.Error("notify completion failed",
			"payment", p.Identifier,
			"error", err,
		)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *EndpointHandler) handleCapture(w http.ResponseWriter, r *http.Request, p *domain.Payment, data gateway.RequestData) {
	out, err := h.capture.CompleteCapture(r.Context(), p, data)
	if err != nil {
		http.Error(w, "capture completion failed", http.StatusInternalServerError)
		return
	}
	if !out.Successful {
		http.Error(w, out.Message, http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleCancel voids the in-progress authorization and returns the browser
// to the merchant's failure page.
func (h *EndpointHandler) handleCancel(w http.ResponseWriter, r *http.Request, p *domain.Payment) {
	if err := h.authorize.CancelAuthorize(r.Context(), p); err != nil {
		http.Error(w, "cancellation failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, p.FailureURL, http.StatusFound)
}

func (h *EndpointHandler) handleRefund(w http.ResponseWriter, r *http.Request, p *domain.Payment, data gateway.RequestData) {
	out, err := h.refund.CompleteRefund(r.Context(), p, data)
	if err != nil {
		http.Error(w, "refund completion failed", http.StatusInternalServerError)
		return
	}
	if !out.Successful {
		http.Error(w, out.Message, http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// requestData flattens the callback's query and form parameters into the
// request data passed to the gateway, plus the caller's IP.
func requestData(r *http.Request) gateway.RequestData {
	data := gateway.RequestData{}

	_ = r.ParseForm()
	for key, values := range r.Form {
		if len(values) > 0 {
			data[key] = values[0]
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		data["clientIp"] = host
	} else {
		data["clientIp"] = r.RemoteAddr
	}
	return data
}
