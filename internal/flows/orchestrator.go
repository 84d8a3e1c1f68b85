// Package flows implements the transaction orchestration engine: the
// authorize, capture, refund and void operation pairs, built on a shared
// base that constructs outbound requests, funnels every gateway exchange
// through one logged dispatch point, and applies status transitions through
// conditional updates.
package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/events"
	"github.com/hostedpay/payflow/internal/gateway"
	"github.com/hostedpay/payflow/internal/lock"
	"github.com/hostedpay/payflow/internal/metrics"
)

// Callback endpoint actions. The HTTP layer routes
// /paymentendpoint/{identifier}/{action} back into the matching completion
// operation.
const (
	ActionComplete = "complete"
	ActionNotify   = "notify"
	ActionCapture  = "capture"
	ActionCancel   = "cancel"
	ActionRefund   = "refund"
)

// Orchestrator is the shared base of the four flows. It owns request
// construction, the dispatch choke point that records every gateway
// exchange in the interaction log, reference recovery, and serialized
// status transitions.
type Orchestrator struct {
	payments PaymentStore
	log      InteractionLog
	gateways *gateway.Registry

	endpointBase string
	hooks        *Hooks
	locks        lock.Locker
	events       events.Publisher
	recorder     *metrics.Recorder
	logger       *slog.Logger
}

type Config struct {
	Payments PaymentStore
	Log      InteractionLog
	Gateways *gateway.Registry

	// EndpointBase is the absolute base URL the callback endpoint is served
	// under, e.g. https://shop.example.com.
	EndpointBase string

	Locks    lock.Locker
	Events   events.Publisher
	Recorder *metrics.Recorder
	Logger   *slog.Logger
}

func NewOrchestrator(cfg Config) *Orchestrator {
	locks := cfg.Locks
	if locks == nil {
		locks = lock.NewKeyedMutex()
	}
	publisher := cfg.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		payments:     cfg.Payments,
		log:          cfg.Log,
		gateways:     cfg.Gateways,
		endpointBase: strings.TrimRight(cfg.EndpointBase, "/"),
		hooks:        NewHooks(),
		locks:        locks,
		events:       publisher,
		recorder:     cfg.Recorder,
		logger:       logger,
	}
}

// Hooks exposes the observer registration points.
func (o *Orchestrator) Hooks() *Hooks {
	return o.hooks
}

// CreatePayment mints and persists a new payment in Created status.
func (o *Orchestrator) CreatePayment(ctx context.Context, orderID string, amountCents int64, currency, gatewayName string) (*domain.Payment, error) {
	if _, _, err := o.gateways.Lookup(gatewayName); err != nil {
		return nil, err
	}
	p, err := domain.NewPayment(orderID, amountCents, currency, gatewayName)
	if err != nil {
		return nil, err
	}
	if err := o.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	o.logger.Info("payment created",
		"payment", p.Identifier,
		"order", p.OrderID,
		"gateway", p.GatewayName,
	)
	return p, nil
}

// GetPayment loads a payment by its identifier.
func (o *Orchestrator) GetPayment(ctx context.Context, identifier string) (*domain.Payment, error) {
	return o.payments.FindByIdentifier(ctx, identifier)
}

// Interactions returns the full audit trail for a payment in insertion
// order.
func (o *Orchestrator) Interactions(ctx context.Context, identifier string) ([]*domain.InteractionEntry, error) {
	return o.log.ListByPayment(ctx, identifier)
}

// EndpointURL builds the absolute callback URL gateways return to or
// notify: <base>/paymentendpoint/<identifier>/<action>.
func (o *Orchestrator) EndpointURL(action, identifier string) string {
	return fmt.Sprintf("%s/paymentendpoint/%s/%s", o.endpointBase, identifier, action)
}

// buildRequest merges caller-supplied fields with the mandatory ones. The
// transaction id defaults to the payment identifier; withCallbacks adds the
// three callback URLs, all addressed to the payment's identifier.
func (o *Orchestrator) buildRequest(p *domain.Payment, data gateway.RequestData, withCallbacks bool) gateway.RequestData {
	var req gateway.RequestData
	if data == nil {
		req = gateway.RequestData{}
	} else {
		req = data.Clone()
	}

	req["amount"] = formatAmount(p.AmountCents)
	req["currency"] = p.Currency
	if req["transactionId"] == "" {
		req["transactionId"] = p.Identifier
	}
	if withCallbacks {
		req["returnUrl"] = o.EndpointURL(ActionComplete, p.Identifier)
		req["cancelUrl"] = o.EndpointURL(ActionCancel, p.Identifier)
		req["notifyUrl"] = o.EndpointURL(ActionNotify, p.Identifier)
	}
	return req
}

// operation describes how one gateway call maps onto interaction log
// entries. Kinds left empty are skipped.
type operation struct {
	name         string
	requestKind  domain.EntryKind
	successKind  domain.EntryKind
	redirectKind domain.EntryKind
	errorKind    domain.EntryKind

	// forceSuccess treats any non-fault response as successful; set for
	// manual/offline gateways whose authorization needs no confirmation.
	forceSuccess bool
}

var (
	opAuthorize = operation{
		name:         "authorize",
		requestKind:  domain.KindAuthorizeRequest,
		successKind:  domain.KindAuthorizedResponse,
		redirectKind: domain.KindAuthorizeRedirectResponse,
		errorKind:    domain.KindAuthorizeError,
	}
	opCompleteAuthorize = operation{
		name:        "completeAuthorize",
		requestKind: domain.KindCompleteAuthorizeRequest,
		successKind: domain.KindAuthorizedResponse,
		errorKind:   domain.KindCompleteAuthorizeError,
	}
	opCapture = operation{
		name:        "capture",
		requestKind: domain.KindCaptureRequest,
		errorKind:   domain.KindCaptureError,
	}
	opCompleteCapture = operation{
		name:        "completeCapture",
		requestKind: domain.KindCompleteCaptureRequest,
		successKind: domain.KindCapturedResponse,
		errorKind:   domain.KindCaptureError,
	}
	opRefund = operation{
		name:        "refund",
		requestKind: domain.KindRefundRequest,
		errorKind:   domain.KindRefundError,
	}
	opCompleteRefund = operation{
		name:        "completeRefund",
		requestKind: domain.KindCompleteRefundRequest,
		successKind: domain.KindRefundedResponse,
		errorKind:   domain.KindRefundError,
	}
	opVoid = operation{
		name:        "void",
		requestKind: domain.KindVoidRequest,
		errorKind:   domain.KindVoidError,
	}
	opCompleteVoid = operation{
		name:        "completeVoid",
		requestKind: domain.KindCompleteVoidRequest,
		successKind: domain.KindVoidedResponse,
		errorKind:   domain.KindVoidError,
	}
)

// dispatch is the single choke point for gateway exchanges. It records the
// outbound request, invokes the gateway, and records exactly one outcome
// entry: the success or redirect entry on a positive response, the error
// entry on a decline or communication fault. A communication fault never
// escapes; it comes back as a failed synthetic result carrying the fault's
// message. A log write failure does escape: the entries are the only record
// the gateway reference can be recovered from, so when one cannot be
// written the exchange fails before any status transition can follow.
func (o *Orchestrator) dispatch(
	ctx context.Context,
	p *domain.Payment,
	op operation,
	data gateway.RequestData,
	call func(context.Context, gateway.RequestData) (*gateway.Result, error),
) (*gateway.Result, error) {
	o.hooks.fireBefore(op.name, p, data)
	if err := o.append(ctx, p, op.requestKind, "", describeRequest(data)); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := call(ctx, data)
	elapsed := time.Since(start)

	if err != nil {
		o.recorder.ObserveGatewayCall(op.name, "fault", elapsed)
		o.logger.Error("gateway call failed",
			"operation", op.name,
			"payment", p.Identifier,
			"error", err,
		)
		if aerr := o.append(ctx, p, op.errorKind, "", err.Error()); aerr != nil {
			return nil, aerr
		}
		return &gateway.Result{Message: err.Error()}, nil
	}

	if op.forceSuccess && !res.Successful {
		forced := *res
		forced.Successful = true
		res = &forced
	}

	switch {
	case res.Successful:
		if err := o.append(ctx, p, op.successKind, res.Reference, res.Message); err != nil {
			return nil, err
		}
		o.recorder.ObserveGatewayCall(op.name, "success", elapsed)
	case res.RedirectRequired && op.redirectKind != "":
		if err := o.append(ctx, p, op.redirectKind, res.Reference, res.Message); err != nil {
			return nil, err
		}
		o.recorder.ObserveGatewayCall(op.name, "redirect", elapsed)
	default:
		if err := o.append(ctx, p, op.errorKind, "", declineMessage(res)); err != nil {
			return nil, err
		}
		o.recorder.ObserveGatewayCall(op.name, "declined", elapsed)
	}

	o.hooks.fireAfter(op.name, p, res)
	return res, nil
}

// lookupReference recovers the gateway transaction reference from the most
// recent successful response entry. Capture, void and refund must not run
// before one exists.
func (o *Orchestrator) lookupReference(ctx context.Context, p *domain.Payment) (string, error) {
	ref, err := o.log.LastReference(ctx, p.Identifier)
	if err != nil {
		return "", fmt.Errorf("lookup reference for payment %s: %w", p.Identifier, err)
	}
	if ref == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingReference, p.Identifier)
	}
	return ref, nil
}

// transition applies a conditional status update and, when it took effect,
// publishes the change and refreshes the in-memory entity.
func (o *Orchestrator) transition(ctx context.Context, p *domain.Payment, from []domain.Status, to domain.Status) (bool, error) {
	ok, err := o.payments.UpdateStatus(ctx, p.Identifier, from, to)
	if err != nil {
		return false, fmt.Errorf("update status of payment %s: %w", p.Identifier, err)
	}
	if !ok {
		o.logger.Warn("status transition skipped, stored status moved on",
			"payment", p.Identifier,
			"target", to,
		)
		return false, nil
	}

	prev := p.Status
	p.Status = to
	o.recorder.ObserveTransition(string(to))
	o.logger.Info("payment status transition",
		"payment", p.Identifier,
		"from", prev,
		"to", to,
	)

	if err := o.events.PublishStatusChange(ctx, events.StatusChange{
		PaymentIdentifier: p.Identifier,
		From:              prev,
		To:                to,
		OccurredAt:        time.Now(),
	}); err != nil {
		o.logger.Error("failed to publish status change",
			"payment", p.Identifier,
			"error", err,
		)
	}
	return true, nil
}

// append writes one interaction entry. Kinds left empty are skipped. The
// error is never swallowed: a lost entry would break the audit trail and
// reference recovery, so callers must stop before mutating status.
func (o *Orchestrator) append(ctx context.Context, p *domain.Payment, kind domain.EntryKind, reference, payload string) error {
	if kind == "" {
		return nil
	}
	entry := domain.NewInteractionEntry(p.Identifier, kind, reference, payload)
	if err := o.log.Append(ctx, entry); err != nil {
		o.logger.Error("failed to append interaction entry",
			"payment", p.Identifier,
			"kind", kind,
			"error", err,
		)
		return fmt.Errorf("append %s entry for payment %s: %w", kind, p.Identifier, err)
	}
	return nil
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func describeRequest(data gateway.RequestData) string {
	b, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(b)
}
