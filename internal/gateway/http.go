package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPGateway talks to a remote payment endpoint over a JSON API. Every
// operation posts the normalized request map to its own path and decodes
// the endpoint's response into a Result.
type HTTPGateway struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

type HTTPConfig struct {
	Name        string
	BaseURL     string
	ConnTimeout time.Duration
}

func NewHTTPGateway(cfg HTTPConfig) *HTTPGateway {
	return &HTTPGateway{
		name:    cfg.Name,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// wireResponse is the endpoint's response envelope.
type wireResponse struct {
	Successful     bool              `json:"successful"`
	Redirect       bool              `json:"redirect"`
	RedirectMethod string            `json:"redirect_method"`
	RedirectURL    string            `json:"redirect_url"`
	RedirectFields map[string]string `json:"redirect_fields"`
	Reference      string            `json:"reference"`
	Code           string            `json:"code"`
	Message        string            `json:"message"`
}

func (g *HTTPGateway) Authorize(ctx context.Context, data RequestData) (*Result, error) {
	return g.send(ctx, "authorize", data)
}

func (g *HTTPGateway) CompleteAuthorize(ctx context.Context, data RequestData) (*Result, error) {
	return g.send(ctx, "complete-authorize", data)
}

func (g *HTTPGateway) Capture(ctx context.Context, data RequestData) (*Result, error) {
	return g.send(ctx, "capture", data)
}

func (g *HTTPGateway) CompleteCapture(ctx context.Context, data RequestData) (*Result, error) {
	return g.send(ctx, "complete-capture", data)
}

func (g *HTTPGateway) Cancel(ctx context.Context, data RequestData) (*Result, error) {
	return g.send(ctx, "cancel", data)
}

func (g *HTTPGateway) CompleteCancel(ctx context.Context, data RequestData) (*Result, error) {
	return g.send(ctx, "complete-cancel", data)
}

func (g *HTTPGateway) Refund(ctx context.Context, data RequestData) (*Result, error) {
	return g.send(ctx, "refund", data)
}

func (g *HTTPGateway) CompleteRefund(ctx context.Context, data RequestData) (*Result, error) {
	return g.send(ctx, "complete-refund", data)
}

func (g *HTTPGateway) send(ctx context.Context, op string, data RequestData) (*Result, error) {
	url := fmt.Sprintf("%s/api/v1/%s", g.baseURL, op)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, &CommunicationError{Gateway: g.name, Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &CommunicationError{Gateway: g.name, Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, &CommunicationError{Gateway: g.name, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &CommunicationError{
			Gateway: g.name,
			Op:      op,
			Err:     fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &CommunicationError{Gateway: g.name, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &Result{
		Successful:       wire.Successful,
		RedirectRequired: wire.Redirect,
		RedirectMethod:   wire.RedirectMethod,
		RedirectURL:      wire.RedirectURL,
		RedirectFields:   wire.RedirectFields,
		Reference:        wire.Reference,
		Code:             wire.Code,
		Message:          wire.Message,
	}, nil
}
