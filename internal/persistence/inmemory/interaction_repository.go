package inmemory

import (
	"context"
	"sync"

	"github.com/hostedpay/payflow/internal/domain"
)

// InteractionRepository is an append-only slice per payment identifier.
type InteractionRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[string][]*domain.InteractionEntry
}

func NewInteractionRepository() *InteractionRepository {
	return &InteractionRepository{
		nextID:  1,
		entries: make(map[string][]*domain.InteractionEntry),
	}
}

func (r *InteractionRepository) Append(_ context.Context, entry *domain.InteractionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	cp.ID = r.nextID
	r.nextID++
	r.entries[cp.PaymentIdentifier] = append(r.entries[cp.PaymentIdentifier], &cp)
	entry.ID = cp.ID
	return nil
}

func (r *InteractionRepository) ListByPayment(_ context.Context, identifier string) ([]*domain.InteractionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[identifier]
	out := make([]*domain.InteractionEntry, len(stored))
	for i, e := range stored {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

// LastReference walks the entries newest first and returns the reference of
// the most recent success response that carries one.
func (r *InteractionRepository) LastReference(_ context.Context, identifier string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[identifier]
	for i := len(stored) - 1; i >= 0; i-- {
		e := stored[i]
		if e.Kind.IsSuccessResponse() && e.Reference != "" {
			return e.Reference, nil
		}
	}
	return "", nil
}
