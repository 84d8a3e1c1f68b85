package flows

import (
	"context"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/gateway"
	"github.com/hostedpay/payflow/internal/redirect"
)

// AuthorizeFlow reserves funds on the payer's instrument. On-site gateways
// authorize in one exchange; off-site gateways redirect the browser away
// and confirm later through the completion triggers.
type AuthorizeFlow struct {
	orc *Orchestrator
}

func NewAuthorizeFlow(orc *Orchestrator) *AuthorizeFlow {
	return &AuthorizeFlow{orc: orc}
}

// Authorize initiates authorization for a payment in Created status. On any
// other status it returns (nil, nil): an explicit no-op, not an error, so
// callers must check the returned outcome.
//
// The caller-supplied returnUrl/cancelUrl are recorded as the payment's
// success/failure URLs and then replaced in the outbound request by the
// callback endpoint URLs addressed to the payment's identifier.
func (f *AuthorizeFlow) Authorize(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*Outcome, error) {
	if p.Status != domain.StatusCreated {
		return nil, nil
	}

	port, traits, err := f.orc.gateways.Lookup(p.GatewayName)
	if err != nil {
		return nil, err
	}

	if u := data["returnUrl"]; u != "" {
		p.SuccessURL = u
	}
	if u := data["cancelUrl"]; u != "" {
		p.FailureURL = u
	}
	if err := f.orc.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	req := f.orc.buildRequest(p, data, true)

	op := opAuthorize
	op.forceSuccess = traits.Manual
	res, err := f.orc.dispatch(ctx, p, op, req, port.Authorize)
	if err != nil {
		return nil, err
	}

	switch {
	case res.Successful:
		if _, err := f.orc.transition(ctx, p, []domain.Status{domain.StatusCreated}, domain.StatusAuthorized); err != nil {
			return nil, err
		}
		return outcomeFromResult(res), nil

	case res.RedirectRequired:
		// Funds have not moved; the payment stays pending until a
		// completion trigger confirms the authorization.
		instr, err := redirect.FromResult(res)
		if err != nil {
			return nil, err
		}
		if _, err := f.orc.transition(ctx, p, []domain.Status{domain.StatusCreated}, domain.StatusPendingAuthorization); err != nil {
			return nil, err
		}
		out := outcomeFromResult(res)
		out.Redirect = instr
		return out, nil

	default:
		return outcomeFromResult(res), nil
	}
}

// CompleteAuthorize finishes an off-site authorization. It is invoked by
// both the browser-return and the async-notify triggers, in any order, any
// number of times: an already-authorized payment short-circuits to a
// success outcome without contacting the gateway or touching the log.
func (f *AuthorizeFlow) CompleteAuthorize(ctx context.Context, p *domain.Payment, data gateway.RequestData) (*Outcome, error) {
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
	if p.IsComplete() {
		return &Outcome{Successful: true, Message: "payment already authorized"}, nil
	}

	port, traits, err := f.orc.gateways.Lookup(p.GatewayName)
	if err != nil {
		return nil, err
	}

	req := f.orc.buildRequest(p, data, false)

	op := opCompleteAuthorize
	op.forceSuccess = traits.Manual
	res, err := f.orc.dispatch(ctx, p, op, req, port.CompleteAuthorize)
	if err != nil {
		return nil, err
	}

	if res.Successful {
		if _, err := f.orc.transition(ctx, p,
			[]domain.Status{domain.StatusCreated, domain.StatusPendingAuthorization},
			domain.StatusAuthorized,
		); err != nil {
			return nil, err
		}
		return outcomeFromResult(res), nil
	}

	// Stay pending so a later trigger can retry the completion.
	if p.Status == domain.StatusCreated {
		if _, err := f.orc.transition(ctx, p,
			[]domain.Status{domain.StatusCreated},
			domain.StatusPendingAuthorization,
		); err != nil {
			return nil, err
		}
	}
	return outcomeFromResult(res), nil
}

// CancelAuthorize voids an authorization-in-progress. The user declined on
// the off-site page, so this is local bookkeeping: no gateway call.
func (f *AuthorizeFlow) CancelAuthorize(ctx context.Context, p *domain.Payment) error {
	if err := f.orc.append(ctx, p, domain.KindVoidRequest, "", "The payment was cancelled."); err != nil {
		return err
	}
	_, err := f.orc.transition(ctx, p,
		[]domain.Status{domain.StatusCreated, domain.StatusPendingAuthorization},
		domain.StatusVoid,
	)
	return err
}
