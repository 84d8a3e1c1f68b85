package flows

import (
	"context"

	"github.com/hostedpay/payflow/internal/domain"
)

// PaymentStore is the persistence port for payments. UpdateStatus is the
// single way a status reaches storage: it applies the change only when the
// stored status is still one of from, so racing completion triggers cannot
// advance a payment twice.
type PaymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
	FindByIdentifier(ctx context.Context, identifier string) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	UpdateStatus(ctx context.Context, identifier string, from []domain.Status, to domain.Status) (bool, error)
}

// InteractionLog is the append-only audit log port. ListByPayment returns
// entries in insertion order; LastReference resolves the most recent
// success-response entry carrying a non-empty gateway reference, or "" when
// none exists.
type InteractionLog interface {
	Append(ctx context.Context, entry *domain.InteractionEntry) error
	ListByPayment(ctx context.Context, identifier string) ([]*domain.InteractionEntry, error)
	LastReference(ctx context.Context, identifier string) (string, error)
}
