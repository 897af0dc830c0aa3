package health

import (
	"context"

	"github.com/soycharroup/memoryreel/internal/domain"
)

// Prober issues a lightweight status probe against one provider.
type Prober interface {
	Status(ctx context.Context) (domain.ProviderStatus, error)
}

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}
