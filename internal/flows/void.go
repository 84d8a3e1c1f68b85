package flows

import (
	"context"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/gateway"
)

// VoidFlow releases an authorization before capture.
type VoidFlow struct {
	orc *Orchestrator
}

func NewVoidFlow(orc *Orchestrator) *VoidFlow {
	return &VoidFlow{orc: orc}
}

// Void initiates a void against the recorded gateway reference. It does not
// change the payment status.
func (f *VoidFlow) Void(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*Outcome, error) {
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
		req["notifyUrl"] = f.orc.EndpointURL(ActionCancel, p.Identifier)
	}

	res, err := f.orc.dispatch(ctx, p, opVoid, req, port.Cancel)
	if err != nil {
		return nil, err
	}
	return outcomeFromResult(res), nil
}

// CompleteVoid confirms the void. An already-voided payment is a success
// no-op.
func (f *VoidFlow) CompleteVoid(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*Outcome, error) {
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
	if p.Status == domain.StatusVoid {
		return &Outcome{Successful: true, Message: "payment already voided"}, nil
	}

	port, traits, err := f.orc.gateways.Lookup(p.GatewayName)
	if err != nil {
		return nil, err
	}

	req := f.orc.buildRequest(p, data, false)

	op := opCompleteVoid
	op.forceSuccess = traits.Manual
	res, err := f.orc.dispatch(ctx, p, op, req, port.CompleteCancel)
	if err != nil {
		return nil, err
	}

	if res.Successful {
		if _, err := f.orc.transition(ctx, p,
			[]domain.Status{domain.StatusAuthorized},
			domain.StatusVoid,
		); err != nil {
			return nil, err
		}
	}
	return outcomeFromResult(res), nil
}
