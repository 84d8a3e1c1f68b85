// Package gateway defines the boundary to external payment endpoints: the
// normalized request map, the normalized outcome, and the Port capability
// every concrete gateway adapter implements.
package gateway

import "context"

// RequestData is the normalized outbound request map. Flows merge
// caller-supplied fields with the mandatory ones (amount, currency,
// transactionId, clientIp, callback URLs) before handing it to a Port.
type RequestData map[string]string

// Clone returns an independent copy so flows can add mandatory fields
// without mutating caller-owned maps.
func (d RequestData) Clone() RequestData {
	out := make(RequestData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Result is the normalized outcome of one gateway exchange.
type Result struct {
	Successful       bool
	RedirectRequired bool

	// Redirect instruction, meaningful only when RedirectRequired is set.
	RedirectMethod string
	RedirectURL    string
	RedirectFields map[string]string

	// Reference is the gateway-assigned transaction reference, present on
	// successful responses.
	Reference string

	Code    string
	Message string
}

// Port is the capability every supported external endpoint exposes. All
// calls are synchronous; a transport or protocol failure is reported as a
// *CommunicationError, a decline as a Result with Successful false.
type Port interface {
	Authorize(ctx context.Context, data RequestData) (*Result, error)
	CompleteAuthorize(ctx context.Context, data RequestData) (*Result, error)
	Capture(ctx context.Context, data RequestData) (*Result, error)
	CompleteCapture(ctx context.Context, data RequestData) (*Result, error)
	Cancel(ctx context.Context, data RequestData) (*Result, error)
	CompleteCancel(ctx context.Context, data RequestData) (*Result, error)
	Refund(ctx context.Context, data RequestData) (*Result, error)
	CompleteRefund(ctx context.Context, data RequestData) (*Result, error)
}
