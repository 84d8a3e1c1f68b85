package flows

import (
	"context"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/gateway"
)

// RefundFlow returns captured funds to the payer.
type RefundFlow struct {
	orc *Orchestrator
}

func NewRefundFlow(orc *Orchestrator) *RefundFlow {
	return &RefundFlow{orc: orc}
}

// Refund initiates a refund against the recorded gateway reference. It does
// not change the payment status.
func (f *RefundFlow) Refund(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*Outcome, error) {
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
		req["notifyUrl"] = f.orc.EndpointURL(ActionRefund, p.Identifier)
	}

	res, err := f.orc.dispatch(ctx, p, opRefund, req, port.Refund)
	if err != nil {
		return nil, err
	}
	return outcomeFromResult(res), nil
}

// CompleteRefund confirms the refund. An already-refunded payment is a
// success no-op.
func (f *RefundFlow) CompleteRefund(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*Outcome, error) {
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
	if p.Status == domain.StatusRefunded {
		return &Outcome{Successful: true, Message: "payment already refunded"}, nil
	}

	port, traits, err := f.orc.gateways.Lookup(p.GatewayName)
	if err != nil {
		return nil, err
	}

	req := f.orc.buildRequest(p, data, false)

	op := opCompleteRefund
	op.forceSuccess = traits.Manual
	res, err := f.orc.dispatch(ctx, p, op, req, port.CompleteRefund)
	if err != nil {
		return nil, err
	}

	if res.Successful {
		if _, err := f.orc.transition(ctx, p,
			[]domain.Status{domain.StatusCaptured},
			domain.StatusRefunded,
		); err != nil {
			return nil, err
		}
	}
	return outcomeFromResult(res), nil
}
