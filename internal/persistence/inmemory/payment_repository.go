// Package inmemory provides map-backed implementations of the persistence
// ports, used by tests and by single-process deployments that do not need a
// database.
package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hostedpay/payflow/internal/domain"
)

// PaymentRepository stores payments in a map guarded by a mutex. Entities
// are copied on the way in and out so callers cannot alias stored state.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

func (r *PaymentRepository) Create(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.Identifier]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicatePayment, p.Identifier)
	}
	cp := *p
	r.payments[p.Identifier] = &cp
	return nil
}

func (r *PaymentRepository) FindByIdentifier(_ context.Context, identifier string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentNotFound, identifier)
	}
	cp := *p
	return &cp, nil
}

func (r *PaymentRepository) Update(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.payments[p.Identifier]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPaymentNotFound, p.Identifier)
	}
	cp := *p
	cp.Status = stored.Status
	cp.UpdatedAt = time.Now()
	r.payments[p.Identifier] = &cp
	return nil
}

// FindStalePendingAuthorizations lists payments pending longer than the
// cutoff allows, oldest first.
func (r *PaymentRepository) FindStalePendingAuthorizations(_ context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Payment
	for _, p := range r.payments {
		if p.Status == domain.StatusPendingAuthorization && p.UpdatedAt.Before(cutoff) {
			cp := *p
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Payment) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus applies the change only when the stored status is still one
// of from, mirroring the conditional UPDATE of the database repository.
func (r *PaymentRepository) UpdateStatus(_ context.Context, identifier string, from []domain.Status, to domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[identifier]
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrPaymentNotFound, identifier)
	}
	if !slices.Contains(from, p.Status) {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return true, nil
}
