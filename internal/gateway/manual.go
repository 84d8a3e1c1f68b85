package gateway

import "context"

// ManualGateway backs offline payment methods such as bank transfer or
// invoice. It never contacts an external endpoint; the authorize flow
// treats a manual gateway's authorization as granted immediately, and the
// remaining operations confirm local bookkeeping.
type ManualGateway struct{}

func NewManualGateway() *ManualGateway {
	return &ManualGateway{}
}

func (m *ManualGateway) Authorize(ctx context.Context, data RequestData) (*Result, error) {
	return &Result{Message: "manual payment, awaiting offline confirmation"}, nil
}

func (m *ManualGateway) CompleteAuthorize(ctx context.Context, data RequestData) (*Result, error) {
	return &Result{Successful: true, Message: "manual payment confirmed"}, nil
}

func (m *ManualGateway) Capture(ctx context.Context, data RequestData) (*Result, error) {
	return &Result{Message: "manual capture requested"}, nil
}

func (m *ManualGateway) CompleteCapture(ctx context.Context, data RequestData) (*Result, error) {
	return &Result{Successful: true, Message: "manual capture confirmed"}, nil
}

func (m *ManualGateway) Cancel(ctx context.Context, data RequestData) (*Result, error) {
	return &Result{Message: "manual cancellation requested"}, nil
}

func (m *ManualGateway) CompleteCancel(ctx context.Context, data RequestData) (*Result, error) {
	return &Result{Successful: true, Message: "manual cancellation confirmed"}, nil
}

func (m *ManualGateway) Refund(ctx context.Context, data RequestData) (*Result, error) {
	return &Result{Message: "manual refund requested"}, nil
}

func (m *ManualGateway) CompleteRefund(ctx context.Context, data RequestData) (*Result, error) {
	return &Result{Successful: true, Message: "manual refund confirmed"}, nil
}
