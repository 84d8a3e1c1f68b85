// Package domain holds the payment entity, its status machine and the
// interaction log entries that record every exchange with a gateway.
package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a payment in its lifecycle.
type Status string

const (
	StatusCreated              Status = "Created"
	StatusPendingAuthorization Status = "PendingAuthorization"
	StatusAuthorized           Status = "Authorized"
	StatusCaptured             Status = "Captured"
	StatusRefunded             Status = "Refunded"
	StatusVoid                 Status = "Void"
)

// Payment is the transaction record. Its identifier is the correlation key
// for every external callback; status is mutated only through flow
// operations, never directly by callers.
type Payment struct {
	Identifier  string
	OrderID     string
	AmountCents int64
	Currency    string
	GatewayName string

	Status     Status
	SuccessURL string
	FailureURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPayment(orderID string, amountCents int64, currency, gatewayName string) (*Payment, error) {
	if orderID == "" {
		return nil, errors.New("order ID is required")
	}
	if amountCents <= 0 {
		return nil, NewInvalidAmountError(amountCents)
	}
	if currency == "" {
		return nil, errors.New("currency is required")
	}
	if gatewayName == "" {
		return nil, errors.New("gateway name is required")
	}

	now := time.Now()
	return &Payment{
		Identifier:  uuid.New().String(),
		OrderID:     orderID,
		AmountCents: amountCents,
		Currency:    currency,
		GatewayName: gatewayName,
		Status:      StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanTransitionTo reports whether the payment may move from its current
// status to target. Transitions are monotonic: no edge re-enters Created and
// no edge regresses a later status to an earlier one.
func (p *Payment) CanTransitionTo(target Status) error {
	switch p.Status {
	case StatusCreated:
		return p.allow(target, StatusPendingAuthorization, StatusAuthorized, StatusVoid)
	case StatusPendingAuthorization:
		return p.allow(target, StatusAuthorized, StatusVoid)
	case StatusAuthorized:
		return p.allow(target, StatusCaptured, StatusVoid)
	case StatusCaptured:
		return p.allow(target, StatusRefunded)
	}
	return NewInvalidTransitionError(p.Status, target)
}

func (p *Payment) allow(target Status, allowed ...Status) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidTransitionError(p.Status, target)
}

// IsComplete reports whether authorization has already succeeded, meaning a
// returning browser can be sent straight to the success URL.
func (p *Payment) IsComplete() bool {
	switch p.Status {
	case StatusAuthorized, StatusCaptured, StatusRefunded:
		return true
	default:
		return false
	}
}

func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case StatusRefunded, StatusVoid:
		return true
	default:
		return false
	}
}
