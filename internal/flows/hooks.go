package flows

import (
	"sync"

	"github.com/hostedpay/payflow/internal/domain"
	"github.com/hostedpay/payflow/internal/gateway"
)

// BeforeHook runs before the gateway call and may adjust the outbound
// request data. It cannot suppress the operation.
type BeforeHook func(p *domain.Payment, data gateway.RequestData)

// AfterHook runs after the gateway responded, before any status change.
type AfterHook func(p *domain.Payment, res *gateway.Result)

// Hooks is an ordered set of observer callbacks per operation name,
// invoked synchronously around each gateway call.
type Hooks struct {
	mu     sync.RWMutex
	before map[string][]BeforeHook
	after  map[string][]AfterHook
}

func NewHooks() *Hooks {
	return &Hooks{
		before: make(map[string][]BeforeHook),
		after:  make(map[string][]AfterHook),
	}
}

func (h *Hooks) Before(operation string, fn BeforeHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.before[operation] = append(h.before[operation], fn)
}

func (h *Hooks) After(operation string, fn AfterHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.after[operation] = append(h.after[operation], fn)
}

func (h *Hooks) fireBefore(operation string, p *domain.Payment, data gateway.RequestData) {
	h.mu.RLock()
	hooks := h.before[operation]
	h.mu.RUnlock()
	for _, fn := range hooks {
		fn(p, data)
	}
}

func (h *Hooks) fireAfter(operation string, p *domain.Payment, res *gateway.Result) {
	h.mu.RLock()
	hooks := h.after[operation]
	h.mu.RUnlock()
	for _, fn := range hooks {
		fn(p, res)
	}
}
