package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition marks a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingReference means capture/void/refund was attempted before any
	// successful authorization response was recorded for the payment.
	ErrMissingReference = errors.New("no gateway transaction reference recorded for payment")

	// ErrPaymentNotFound is returned by repositories when no payment matches
	// the given identifier.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrDuplicatePayment means a payment with the same identifier already
	// exists in storage.
	ErrDuplicatePayment = errors.New("payment already exists")
)

func NewInvalidTransitionError(from, to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func NewInvalidAmountError(amount int64) error {
	return fmt.Errorf("amount must be positive, got %d", amount)
}
