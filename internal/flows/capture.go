package flows

import (
	"context"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/gateway"
)

// CaptureFlow transfers previously authorized funds. Capture against some
// gateways is asynchronous, so the initiating call only logs and talks to
// the gateway; the status moves to Captured when the completion callback
// confirms it.
type CaptureFlow struct {
	orc *Orchestrator
}

func NewCaptureFlow(orc *Orchestrator) *CaptureFlow {
	return &CaptureFlow{orc: orc}
}

// Capture initiates a capture against the recorded authorization
// reference. It does not change the payment status.
func (f *CaptureFlow) Capture(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*Outcome, error) {
	ref, err := f.orc.lookupReference(ctx, p)
	if err != nil {
		return nil, err
	}

	port, _, err := f.orc.gateways.Lookup(p.GatewayName)
	if err != nil {
		return nil, err
	}

	req := f.orc.buildRequest(p, data, false)
	req["transactionId"] = p.OrderID
	req["transactionReference"] = ref
	if req["notifyUrl"] == "" {
		req["notifyUrl"] = f.orc.EndpointURL(ActionCapture, p.Identifier)
	}

	res, err := f.orc.dispatch(ctx, p, opCapture, req, port.Capture)
	if err != nil {
		return nil, err
	}
	return outcomeFromResult(res), nil
}

// CompleteCapture confirms the capture. Repeat invocations after a
// successful confirmation are success no-ops.
func (f *CaptureFlow) CompleteCapture(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*Outcome, error) {
	release, err := f.orc.locks.Acquire(ctx, p.Identifier)
	if err != nil {
		return nil, err
	}
	defer release()

	cur, err := f.orc.payments.FindByIdentifier(ctx, p.Identifier)
	if err != nil {
		return nil, err
	}
	p.Status = cur.Status
	if p.Status == domain.StatusCaptured || p.Status == domain.StatusRefunded {
		return &Outcome{Successful: true, Message: "payment already captured"}, nil
	}

	port, traits, err := f.orc.gateways.Lookup(p.GatewayName)
	if err != nil {
		return nil, err
	}

	req := f.orc.buildRequest(p, data, false)

	op := opCompleteCapture
	op.forceSuccess = traits.Manual
	res, err := f.orc.dispatch(ctx, p, op, req, port.CompleteCapture)
	if err != nil {
		return nil, err
	}

	if res.Successful {
		if _, err := f.orc.transition(ctx, p,
			[]domain.Status{domain.StatusAuthorized},
			domain.StatusCaptured,
		); err != nil {
			return nil, err
		}
	}
	return outcomeFromResult(res), nil
}
