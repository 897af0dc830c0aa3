// Package provider defines provider identity and capability metadata.
package provider

import (
	"fmt"

	"github.com/soycharroup/memoryreel/internal/domain"
)

// Kind identifies an external AI analysis provider.
type Kind string

// Known provider kinds. All are reached through OpenAI-compatible endpoints;
// the base URL in configuration selects the actual backend.
const (
	KindOpenAI Kind = "openai"
	KindGemini Kind = "gemini"
	KindGrok   Kind = "grok"
)

// IsValid reports whether the kind is a known provider.
func (k Kind) IsValid() bool {
	switch k {
	case KindOpenAI, KindGemini, KindGrok:
		return true
	}
	return false
}

// Provider binds a provider kind to its capability set.
// Immutable after construction; owned by the registry for the process lifetime.
type Provider struct {
	kind         Kind
	capabilities map[domain.Capability]struct{}
}

// New validates and creates a Provider.
func New(kind Kind, capabilities []domain.Capability) (Provider, error) {
	if !kind.IsValid() {
		return Provider{}, fmt.Errorf("%w: unknown provider kind %q", domain.ErrConfiguration, kind)
	}
	if len(capabilities) == 0 {
		return Provider{}, fmt.Errorf("%w: provider %q has no capabilities", domain.ErrConfiguration, kind)
	}
	caps := make(map[domain.Capability]struct{}, len(capabilities))
	for _, c := range capabilities {
		if !c.IsValid() {
			return Provider{}, fmt.Errorf("%w: provider %q: unknown capability %q", domain.ErrConfiguration, kind, c)
		}
		caps[c] = struct{}{}
	}
	return Provider{kind: kind, capabilities: caps}, nil
}

// Kind returns the provider identity.
func (p *Provider) Kind() Kind { return p.kind }

// Supports reports whether the provider offers the capability.
func (p *Provider) Supports(c domain.Capability) bool {
	_, ok := p.capabilities[c]
	return ok
}
