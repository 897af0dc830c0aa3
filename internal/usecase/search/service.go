// Package search implements the search coordinator: cache check, query
// interpretation via the failover orchestrator, content lookup, and ranking.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/content"
	"github.com/soycharroup/memoryreel/internal/domain/search/query"
	"github.com/soycharroup/memoryreel/internal/domain/search/result"
	"github.com/soycharroup/memoryreel/internal/metrics"
)

// analyticsTimeout bounds the fire-and-forget analytics emit.
const analyticsTimeout = 2 * time.Second

// Service is the top-level search entry point.
type Service struct {
	cache       Cache
	interpreter Interpreter
	content     ContentFinder
	analytics   AnalyticsSink
	logger      *zap.Logger
	now         func() time.Time
}

// New creates the search coordinator. analytics may be nil.
func New(
	cache Cache,
	interpreter Interpreter,
	content ContentFinder,
	analytics AnalyticsSink,
	logger *zap.Logger,
) *Service {
	return &Service{
		cache:       cache,
		interpreter: interpreter,
		content:     content,
		analytics:   analytics,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the time source for deterministic ranking tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Search executes one validated query: cache check, interpretation, lookup,
// ranking, cache write, analytics. The query is already validated by
// query.New; no further input checks happen past this point.
func (s *Service) Search(ctx context.Context, q *query.Query) (result.Set, error) {
	start := time.Now()

	if set, ok := s.cache.Get(ctx, q); ok {
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		metrics.SearchDuration.WithLabelValues("hit").Observe(time.Since(start).Seconds())
		metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
		return set, nil
	}
	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()

	set, err := s.searchFresh(ctx, q)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	metrics.SearchDuration.WithLabelValues("miss").Observe(time.Since(start).Seconds())

	return set, err
}

func (s *Service) searchFresh(ctx context.Context, q *query.Query) (result.Set, error) {
	interp, err := s.interpret(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			// The search deadline expired mid-interpretation; the caller
			// timed out, the providers did not fail.
			return result.Set{}, fmt.Errorf("%w: search deadline exceeded during interpretation", domain.ErrServiceUnavailable)
		}
		return result.Set{}, err
	}

	merged := q.Filters()
	if interp != nil {
		// Explicit filters win on conflicting fields.
		merged = merged.Merge(interp.Filters)
	}

	records, total, err := s.content.Find(ctx, q.Normalized(), merged, q.Page(), q.PageSize())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return result.Set{}, fmt.Errorf("%w: content lookup deadline exceeded", domain.ErrServiceUnavailable)
		}
		s.logger.Error("content lookup failed", zap.Error(err))
		return result.Set{}, fmt.Errorf("%w: content lookup failed", domain.ErrServiceUnavailable)
	}

	items := Rank(records, interp, s.now())
	set := result.NewSet(items, total, q.Page(), q.PageSize(), aggregate(records))

	s.cache.Set(ctx, q, set)
	s.emitAnalytics(ctx, q, set)

	return set, nil
}

// interpret resolves text into an interpretation via the orchestrator.
// Filter-only queries skip interpretation entirely.
func (s *Service) interpret(ctx context.Context, q *query.Query) (*domain.Interpretation, error) {
	if q.Text() == "" {
		return nil, nil
	}

	req, err := domain.NewInterpretationRequest(q.Text(), q.Preferred())
	if err != nil {
		return nil, err
	}

	res, err := s.interpreter.Execute(ctx, req)
	if err != nil {
		// Terminal orchestrator outcomes cross this boundary unchanged;
		// individual provider failures never reach here.
		return nil, err
	}
	return res.Query, nil
}

// aggregate summarizes the current page by content type.
func aggregate(records []content.Record) map[string]int {
	if len(records) == 0 {
		return nil
	}
	out := make(map[string]int)
	for i := range records {
		out[records[i].ContentType()]++
	}
	return out
}

// emitAnalytics publishes the search event without affecting the caller:
// detached context, own timeout, failures only logged.
func (s *Service) emitAnalytics(ctx context.Context, q *query.Query, set result.Set) {
	if s.analytics == nil {
		return
	}

	ev := Event{
		Query:       q.Normalized(),
		Filters:     q.Filters().Canonical(),
		ResultCount: set.Total(),
		Timestamp:   s.now(),
	}

	go func(parent context.Context) {
		emitCtx, cancel := context.WithTimeout(context.WithoutCancel(parent), analyticsTimeout)
		defer cancel()

		if err := s.analytics.Emit(emitCtx, ev); err != nil {
			metrics.AnalyticsEventsTotal.WithLabelValues("error").Inc()
			s.logger.Warn("analytics emit failed", zap.Error(err))
			return
		}
		metrics.AnalyticsEventsTotal.WithLabelValues("ok").Inc()
	}(ctx)
}
