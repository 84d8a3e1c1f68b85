package gateway

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownGateway = errors.New("unknown gateway")

// Traits are static properties of a registered gateway. Manual marks
// offline gateways (bank transfer, invoice) whose authorization is
// considered granted the moment it is initiated.
type Traits struct {
	Manual bool
}

// Registry maps gateway names to Port implementations. A payment selects
// its gateway by name once at creation time; the binding never changes.
type Registry struct {
	mu       sync.RWMutex
	gateways map[string]registration
}

type registration struct {
	port   Port
	traits Traits
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[string]registration)}
}

func (r *Registry) Register(name string, port Port, traits Traits) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[name] = registration{port: port, traits: traits}
}

func (r *Registry) Lookup(name string) (Port, Traits, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.gateways[name]
	if !ok {
		return nil, Traits{}, fmt.Errorf("%w: %q", ErrUnknownGateway, name)
	}
	return reg.port, reg.traits, nil
}
