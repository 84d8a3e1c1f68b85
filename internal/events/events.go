// Package events publishes payment status-change notifications for
// downstream consumers (reporting, support tooling).
package events

import (
	"context"
	"time"

	"github.com/hostedpay/payflow/internal/domain"
)

// StatusChange is emitted after every applied status transition.
type StatusChange struct {
	PaymentIdentifier string        `json:"payment_identifier"`
	From              domain.Status `json:"previous_status"`
	To                domain.Status `json:"status"`
	OccurredAt        time.Time     `json:"timestamp"`
}

type Publisher interface {
	PublishStatusChange(ctx context.Context, ev StatusChange) error
}

// NopPublisher discards events. Used when no broker is configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) PublishStatusChange(ctx context.Context, ev StatusChange) error {
	return nil
}
