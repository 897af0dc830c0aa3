package analysis

import (
	"context"
	"time"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/provider"
	"github.com/soycharroup/memoryreel/internal/usecase/health"
)

// Client is the uniform capability interface implemented once per provider kind.
// The real analysis algorithms live behind this seam.
type Client interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error)
	Status(ctx context.Context) (domain.ProviderStatus, error)
}

// HealthState exposes the shared health record store to the orchestrator:
// reads for attempt ordering, outcome feed for rolling provider stats.
type HealthState interface {
	Snapshot(kind provider.Kind) health.Record
	RecordOutcome(kind provider.Kind, success bool, latency time.Duration)
}
