package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/provider"
	"github.com/soycharroup/memoryreel/internal/metrics"
)

// DefaultConfidenceThreshold is the minimum acceptance score for
// interpretation results when no threshold is configured.
const DefaultConfidenceThreshold = 0.7

// Service is the failover orchestrator. It computes a deterministic provider
// attempt order from health state and preference, then attempts providers
// strictly sequentially until one yields an acceptable result.
type Service struct {
	registry       *Registry
	health         HealthState
	threshold      float64
	attemptTimeout time.Duration
	logger         *zap.Logger
}

// New creates the orchestrator.
func New(
	registry *Registry,
	health HealthState,
	threshold float64,
	attemptTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultConfidenceThreshold
	}
	return &Service{
		registry:       registry,
		health:         health,
		threshold:      threshold,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// attempt is one resolved step of the failover sequence.
type attempt struct {
	kind    provider.Kind
	outcome string
	err     error
}

// Execute routes one analysis request. Providers are attempted in health
// order; the first acceptable result wins. Provider-level failures are
// absorbed here and never surface individually.
func (s *Service) Execute(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	capability := req.Capability()
	if !capability.IsValid() {
		return domain.AnalysisResult{}, fmt.Errorf("%w: unknown capability %q", domain.ErrValidation, capability)
	}

	candidates := s.registry.ForCapability(capability)
	if len(candidates) == 0 {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %s", domain.ErrCapabilityUnsupported, capability)
	}

	order := s.attemptOrder(candidates, provider.Kind(req.Preferred()))

	var attempts []attempt
	for _, kind := range order {
		result, att := s.attemptProvider(ctx, kind, req)
		attempts = append(attempts, att)

		if att.outcome == metrics.OutcomeSuccess {
			return result, nil
		}

		if ctx.Err() != nil {
			// Overall deadline gone; stop burning attempts.
			break
		}
	}

	lastErr := attempts[len(attempts)-1].err
	s.logger.Warn("all providers exhausted",
		zap.String("capability", string(capability)),
		zap.Int("attempts", len(attempts)),
		zap.Error(lastErr),
	)
	return domain.AnalysisResult{}, domain.NewProviderExhausted(len(attempts), lastErr)
}

// attemptOrder sorts candidates by health state (Available, Degraded,
// Unavailable), keeping registration order within each band. The preferred
// kind moves to the front of its band, so a preferred Available provider is
// always attempted first. Unavailable providers stay at the tail but are
// never dropped: under full outage the call still makes a best-effort pass.
func (s *Service) attemptOrder(candidates []provider.Kind, preferred provider.Kind) []provider.Kind {
	order := make([]provider.Kind, len(candidates))
	copy(order, candidates)

	ranks := make(map[provider.Kind]int, len(order))
	for _, k := range order {
		ranks[k] = s.health.Snapshot(k).State.Rank()
	}

	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := ranks[order[i]], ranks[order[j]]
		if ri != rj {
			return ri < rj
		}
		return order[i] == preferred && order[j] != preferred
	})

	return order
}

// attemptProvider runs a single bounded attempt and records its metrics.
func (s *Service) attemptProvider(
	ctx context.Context, kind provider.Kind, req domain.AnalysisRequest,
) (domain.AnalysisResult, attempt) {
	client, err := s.registry.Get(kind)
	if err != nil {
		return domain.AnalysisResult{}, attempt{kind: kind, outcome: metrics.OutcomeError, err: err}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()

	start := time.Now()
	result, err := client.Analyze(attemptCtx, req)
	latency := time.Since(start)

	att := attempt{kind: kind}
	switch {
	case err != nil && ctx.Err() != nil:
		// The caller's context ended, not the per-attempt timer. The
		// provider never got a fair shot.
		att.outcome = metrics.OutcomeCanceled
		att.err = fmt.Errorf("analysis canceled: %w", ctx.Err())
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		att.outcome = metrics.OutcomeTimeout
		att.err = fmt.Errorf("provider %s timed out: %w", kind, err)
	case err != nil:
		att.outcome = metrics.OutcomeError
		att.err = fmt.Errorf("provider %s failed: %w", kind, err)
	case req.Capability() == domain.CapabilityQueryInterpretation && result.Confidence() < s.threshold:
		att.outcome = metrics.OutcomeSubThreshold
		att.err = fmt.Errorf("provider %s: confidence %.2f below threshold %.2f",
			kind, result.Confidence(), s.threshold)
	default:
		att.outcome = metrics.OutcomeSuccess
		result.Provider = string(kind)
	}

	metrics.AnalysisAttemptsTotal.
		WithLabelValues(string(kind), string(req.Capability()), att.outcome).Inc()
	metrics.AnalysisAttemptDuration.
		WithLabelValues(string(kind), string(req.Capability())).Observe(latency.Seconds())

	// Health stats track transport outcomes: a sub-threshold answer still
	// means the provider itself responded. Caller cancellations say nothing
	// about the provider and stay out of its error rate.
	if att.outcome != metrics.OutcomeCanceled {
		transportOK := err == nil
		s.health.RecordOutcome(kind, transportOK, latency)
	}

	if att.outcome != metrics.OutcomeSuccess {
		s.logger.Debug("provider attempt failed",
			zap.String("provider", string(kind)),
			zap.String("capability", string(req.Capability())),
			zap.String("outcome", att.outcome),
			zap.Duration("latency", latency),
		)
		return domain.AnalysisResult{}, att
	}

	return result, att
}
