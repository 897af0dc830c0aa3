// Package analysis holds the provider registry and the failover orchestrator
// that routes analysis requests across providers.
package analysis

import (
	"fmt"
	"sync"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/provider"
)

type registration struct {
	prov   provider.Provider
	client Client
}

// Registry holds one client per configured provider kind.
// Registration order defines default tie-break priority. Effectively
// immutable after startup; Register is guarded for safe wiring.
type Registry struct {
	mu      sync.RWMutex
	entries []registration
	byKind  map[provider.Kind]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[provider.Kind]int)}
}

// Register adds a provider and its client. Duplicate kinds are rejected.
func (r *Registry) Register(p provider.Provider, c Client) error {
	if c == nil {
		return fmt.Errorf("%w: nil client for provider %q", domain.ErrConfiguration, p.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKind[p.Kind()]; ok {
		return fmt.Errorf("%w: provider %q already registered", domain.ErrConfiguration, p.Kind())
	}
	r.byKind[p.Kind()] = len(r.entries)
	r.entries = append(r.entries, registration{prov: p, client: c})
	return nil
}

// Get returns the client for a kind.
func (r *Registry) Get(kind provider.Kind) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q not registered", domain.ErrConfiguration, kind)
	}
	return r.entries[idx].client, nil
}

// Kinds returns all registered kinds in registration order.
func (r *Registry) Kinds() []provider.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]provider.Kind, len(r.entries))
	for i, e := range r.entries {
		kinds[i] = e.prov.Kind()
	}
	return kinds
}

// ForCapability returns the kinds offering a capability, in registration order.
func (r *Registry) ForCapability(c domain.Capability) []provider.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var kinds []provider.Kind
	for _, e := range r.entries {
		if e.prov.Supports(c) {
			kinds = append(kinds, e.prov.Kind())
		}
	}
	return kinds
}
