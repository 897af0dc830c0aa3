package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed input, rejected before any I/O.
	ErrValidation = errors.New("validation failed")
	// ErrCapabilityUnsupported signals that no provider is registered for a capability.
	ErrCapabilityUnsupported = errors.New("capability unsupported")
	// ErrProviderExhausted signals that every attempted provider failed or
	// returned a sub-threshold result.
	ErrProviderExhausted = errors.New("all providers exhausted")
	// ErrServiceUnavailable signals an exceeded deadline or a failed content lookup.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrConfiguration signals a provider registry misconfiguration.
	ErrConfiguration = errors.New("configuration error")
)

// ProviderExhaustedError wraps ErrProviderExhausted with the number of
// attempts made and the last error observed from a provider.
type ProviderExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ProviderExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d attempts, last error: %v",
		ErrProviderExhausted.Error(), e.Attempts, e.LastErr)
}

func (e *ProviderExhaustedError) Unwrap() error { return ErrProviderExhausted }

// NewProviderExhausted creates a provider exhausted error.
func NewProviderExhausted(attempts int, lastErr error) error {
	return &ProviderExhaustedError{Attempts: attempts, LastErr: lastErr}
}
