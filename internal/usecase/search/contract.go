package search

import (
	"context"
	"time"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/content"
	"github.com/soycharroup/memoryreel/internal/domain/search/filter"
	"github.com/soycharroup/memoryreel/internal/domain/search/query"
	"github.com/soycharroup/memoryreel/internal/domain/search/result"
)

// Interpreter resolves free-text queries into structured interpretations.
// Backed by the failover orchestrator.
type Interpreter interface {
	Execute(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error)
}

// ContentFinder is the content lookup collaborator: filtered, paginated
// retrieval of media records plus the total match count.
type ContentFinder interface {
	Find(ctx context.Context, text string, filters filter.Set, page, pageSize int) ([]content.Record, int, error)
}

// Cache memoizes complete search responses keyed by the normalized query.
type Cache interface {
	Get(ctx context.Context, q *query.Query) (result.Set, bool)
	Set(ctx context.Context, q *query.Query, set result.Set)
}

// Event is one search analytics record.
type Event struct {
	Query       string
	Filters     string
	ResultCount int
	Timestamp   time.Time
}

// AnalyticsSink receives search events. Best-effort; failures never
// propagate to the search caller.
type AnalyticsSink interface {
	Emit(ctx context.Context, ev Event) error
}
