package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handlerFn http.HandlerFunc) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(handlerFn)
	t.Cleanup(srv.Close)

	return NewHTTPGateway(HTTPConfig{
		Name:        "testgw",
		BaseURL:     srv.URL,
		ConnTimeout: 2 * time.Second,
	})
}

func TestHTTPGatewaySendsRequestData(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"successful": true,
			"reference":  "REF-42",
		})
	})

	res, err := gw.Authorize(context.Background(), RequestData{
		"amount":   "10.00",
		"currency": "EUR",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/authorize", gotPath)
	assert.Equal(t, "10.00", gotBody["amount"])
	assert.True(t, res.Successful)
	assert.Equal(t, "REF-42", res.Reference)
}

func TestHTTPGatewayDecodesRedirect(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"redirect":        true,
			"redirect_method": "POST",
			"redirect_url":    "https://pay.example.org/session",
			"redirect_fields": map[string]string{"token": "tok-1"},
		})
	})

	res, err := gw.Authorize(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, res.Successful)
	assert.True(t, res.RedirectRequired)
	assert.Equal(t, "POST", res.RedirectMethod)
	assert.Equal(t, "tok-1", res.RedirectFields["token"])
}

func TestHTTPGatewayNonOKStatusIsCommunicationError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := gw.Capture(context.Background(), nil)
	require.Error(t, err)

	commErr, ok := IsCommunicationError(err)
	require.True(t, ok)
	assert.Equal(t, "testgw", commErr.Gateway)
	assert.Equal(t, "capture", commErr.Op)
}

func TestHTTPGatewayConnectionRefused(t *testing.T) {
	gw := NewHTTPGateway(HTTPConfig{
		Name:        "testgw",
		BaseURL:     "http://127.0.0.1:1",
		ConnTimeout: time.Second,
	})

	_, err := gw.Refund(context.Background(), nil)
	require.Error(t, err)
	_, ok := IsCommunicationError(err)
	assert.True(t, ok)
}

func TestManualGateway(t *testing.T) {
	gw := NewManualGateway()
	ctx := context.Background()

	res, err := gw.Authorize(ctx, nil)
	require.NoError(t, err)
	assert.False(t, res.Successful)

	res, err = gw.CompleteAuthorize(ctx, nil)
	require.NoError(t, err)
	assert.True(t, res.Successful)

	res, err = gw.CompleteRefund(ctx, nil)
	require.NoError(t, err)
	assert.True(t, res.Successful)
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Register("manual", NewManualGateway(), Traits{Manual: true})

	port, traits, err := reg.Lookup("manual")
	require.NoError(t, err)
	assert.NotNil(t, port)
	assert.True(t, traits.Manual)

	_, _, err = reg.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownGateway)
}

func TestRequestDataClone(t *testing.T) {
	orig := RequestData{"a": "1"}
	cp := orig.Clone()
	cp["a"] = "2"
	cp["b"] = "3"

	assert.Equal(t, "1", orig["a"])
	assert.NotContains(t, orig, "b")
}
