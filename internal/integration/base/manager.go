package base

import (
	"sync"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

// Registry holds one adapter per provider. Selection is always by the provider enum.
type Registry struct {
	providers map[types.PaymentProvider]Provider
	mu        sync.RWMutex
}

// NewRegistry creates a registry seeded with the given adapters
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[types.PaymentProvider]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Register adds or replaces the adapter for its provider
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the adapter registered for provider
func (r *Registry) Get(provider types.PaymentProvider) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[provider]
	if !ok {
		return nil, ierr.NewErrorf("provider %s not registered", provider).
			WithHintf("Unsupported payment provider %s", provider).
			WithReportableDetails(map[string]any{
				"provider":  provider,
				"supported": lo.Keys(r.providers),
			}).
			Mark(ierr.ErrValidation)
	}
	return p, nil
}

// Providers lists the registered provider names
func (r *Registry) Providers() []types.PaymentProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.providers)
}
