package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/flows"
	"github.com/hostedpay/payflow/internal/gateway"
	"github.com/hostedpay/payflow/internal/persistence/inmemory"
)

// stubPort answers every operation with a scripted result.
type stubPort struct {
	authorizeFn func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
	completeFn  func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error)
}

func (s *stubPort) call(fn func(ctx context.Context, data gateway.RequestData) (*gateway.Result, error), ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	if fn != nil {
		return fn(ctx, data)
	}
	return &gateway.Result{Successful: true, Reference: "STUB-REF"}, nil
}

func (s *stubPort) Authorize(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	return s.call(s.authorizeFn, ctx, data)
}

func (s *stubPort) CompleteAuthorize(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	return s.call(s.completeFn, ctx, data)
}

func (s *stubPort) Capture(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	return s.call(nil, ctx, data)
}

func (s *stubPort) CompleteCapture(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	return s.call(nil, ctx, data)
}

func (s *stubPort) Cancel(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	return s.call(nil, ctx, data)
}

func (s *stubPort) CompleteCancel(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	return s.call(nil, ctx, data)
}

func (s *stubPort) Refund(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	return s.call(nil, ctx, data)
}

func (s *stubPort) CompleteRefund(ctx context.Context, data gateway.RequestData) (*gateway.Result, error) {
	return s.call(nil, ctx, data)
}

type testServer struct {
	mux  *http.ServeMux
	orc  *flows.Orchestrator
	port *stubPort
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	port := &stubPort{}
	registry := gateway.NewRegistry()
	registry.Register("testgw", port, gateway.Traits{})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orc := flows.NewOrchestrator(flows.Config{
		Payments:     inmemory.NewPaymentRepository(),
		Log:          inmemory.NewInteractionRepository(),
		Gateways:     registry,
		EndpointBase: "https://shop.example.com",
		Logger:       logger,
	})

	authorize := flows.NewAuthorizeFlow(orc)
	capture := flows.NewCaptureFlow(orc)
	refund := flows.NewRefundFlow(orc)
	void := flows.NewVoidFlow(orc)

	mux := http.NewServeMux()
	NewPaymentHandler(orc, authorize, capture, refund, void).RegisterRoutes(mux)
	NewEndpointHandler(orc, authorize, capture, refund, logger).RegisterRoutes(mux)

	return &testServer{mux: mux, orc: orc, port: port}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createPayment(t *testing.T) string {
	t.Helper()
	body := `{"order_id":"order-1","amount_cents":5000,"currency":"EUR","gateway":"testgw"}`
	rec := s.do(httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data PaymentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Identifier)
	return resp.Data.Identifier
}

func TestCreatePayment(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/payments/"+id, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data PaymentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.Data.OrderID)
	assert.Equal(t, string(domain.StatusCreated), resp.Data.Status)
}

func TestCreatePaymentValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/payments",
		strings.NewReader(`{"order_id":"","amount_cents":0,"currency":"EUR","gateway":"testgw"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodPost, "/payments",
		strings.NewReader(`{"order_id":"o","amount_cents":100,"currency":"EUR","gateway":"nope"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPaymentNotFound(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(httptest.NewRequest(http.MethodGet, "/payments/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorizeReturnsGatewayRedirect(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)

	srv.port.authorizeFn = func(_ context.Context, _ gateway.RequestData) (*gateway.Result, error) {
		return &gateway.Result{
			RedirectRequired: true,
			RedirectMethod:   http.MethodGet,
			RedirectURL:      "https://pay.example.org/session/xyz",
		}, nil
	}

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/authorize", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://pay.example.org/session/xyz", rec.Header().Get("Location"))
}

func TestAuthorizePostRedirectRendersForm(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)

	srv.port.authorizeFn = func(_ context.Context, _ gateway.RequestData) (*gateway.Result, error) {
		return &gateway.Result{
			RedirectRequired: true,
			RedirectMethod:   http.MethodPost,
			RedirectURL:      "https://pay.example.org/session",
			RedirectFields:   map[string]string{"token": "tok-1"},
		}, nil
	}

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/authorize", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `name="token" value="tok-1"`)
}

func TestAuthorizeTwiceConflicts(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/authorize", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/authorize", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthorizeDeclined(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)

	srv.port.authorizeFn = func(_ context.Context, _ gateway.RequestData) (*gateway.Result, error) {
		return &gateway.Result{Code: "51", Message: "Insufficient funds"}, nil
	}

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/authorize", nil))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error (51): Insufficient funds")
}

func authorizeOffsite(t *testing.T, srv *testServer, id string) {
	t.Helper()
	srv.port.authorizeFn = func(_ context.Context, data gateway.RequestData) (*gateway.Result, error) {
		return &gateway.Result{
			RedirectRequired: true,
			RedirectMethod:   http.MethodGet,
			RedirectURL:      "https://pay.example.org/session/xyz",
		}, nil
	}
	body := strings.NewReader("returnUrl=https://merchant.example.com/ok&cancelUrl=https://merchant.example.com/fail")
	req := httptest.NewRequest(http.MethodPost, "/payments/"+id+"/authorize", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := srv.do(req)
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestEndpointCompleteRedirectsToSuccessURL(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)
	authorizeOffsite(t, srv, id)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/paymentendpoint/"+id+"/complete?gwref=abc", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://merchant.example.com/ok", rec.Header().Get("Location"))

	p, err := srv.orc.GetPayment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAuthorized, p.Status)
}

func TestEndpointCompleteFailureRedirectsToFailureURL(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)
	authorizeOffsite(t, srv, id)

	srv.port.completeFn = func(_ context.Context, _ gateway.RequestData) (*gateway.Result, error) {
		return &gateway.Result{Code: "05", Message: "Do not honor"}, nil
	}

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/paymentendpoint/"+id+"/complete", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://merchant.example.com/fail", rec.Header().Get("Location"))
}

func TestEndpointNotifyAlwaysReturns200(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)
	authorizeOffsite(t, srv, id)

	srv.port.completeFn = func(_ context.Context, _ gateway.RequestData) (*gateway.Result, error) {
		return &gateway.Result{Code: "05", Message: "Do not honor"}, nil
	}

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/paymentendpoint/"+id+"/notify", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	// And again after success, still 200.
	srv.port.completeFn = nil
	rec = srv.do(httptest.NewRequest(http.MethodPost, "/paymentendpoint/"+id+"/notify", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(httptest.NewRequest(http.MethodPost, "/paymentendpoint/"+id+"/notify", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEndpointCancelVoidsPayment(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)
	authorizeOffsite(t, srv, id)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/paymentendpoint/"+id+"/cancel", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://merchant.example.com/fail", rec.Header().Get("Location"))

	p, err := srv.orc.GetPayment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoid, p.Status)
}

func TestEndpointUnknownPayment(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(httptest.NewRequest(http.MethodGet, "/paymentendpoint/nope/complete", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndpointUnknownAction(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)
	rec := srv.do(httptest.NewRequest(http.MethodGet, "/paymentendpoint/"+id+"/explode", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaptureAfterAuthorize(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/authorize", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/capture", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Completion callback confirms the capture.
	rec = srv.do(httptest.NewRequest(http.MethodPost, "/paymentendpoint/"+id+"/capture", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	p, err := srv.orc.GetPayment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCaptured, p.Status)
}

func TestCaptureWithoutAuthorizationConflicts(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/capture", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_REFERENCE")
}

func TestInteractionsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createPayment(t)

	rec := srv.do(httptest.NewRequest(http.MethodPost, "/payments/"+id+"/authorize", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/payments/"+id+"/interactions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []InteractionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, string(domain.KindAuthorizeRequest), resp.Data[0].Kind)
	assert.Equal(t, string(domain.KindAuthorizedResponse), resp.Data[1].Kind)
}
