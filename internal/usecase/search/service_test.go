package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/content"
	"github.com/soycharroup/memoryreel/internal/domain/search/filter"
	"github.com/soycharroup/memoryreel/internal/domain/search/query"
	"github.com/soycharroup/memoryreel/internal/domain/search/result"
)

// --- Mocks ---

type mockCache struct {
	hit    result.Set
	hasHit bool
	sets   int
}

func (m *mockCache) Get(_ context.Context, _ *query.Query) (result.Set, bool) {
	return m.hit, m.hasHit
}

func (m *mockCache) Set(_ context.Context, _ *query.Query, set result.Set) {
	m.sets++
	m.hit = set
	m.hasHit = true
}

type mockInterpreter struct {
	result domain.AnalysisResult
	err    error
	calls  int
	lastIn domain.AnalysisRequest
}

func (m *mockInterpreter) Execute(_ context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	m.calls++
	m.lastIn = req
	return m.result, m.err
}

type mockFinder struct {
	records     []content.Record
	total       int
	err         error
	lastText    string
	lastFilters filter.Set
	calls       int
}

func (m *mockFinder) Find(
	_ context.Context, text string, filters filter.Set, _, _ int,
) ([]content.Record, int, error) {
	m.calls++
	m.lastText = text
	m.lastFilters = filters
	return m.records, m.total, m.err
}

type mockSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	done   chan struct{}
}

func newMockSink() *mockSink {
	return &mockSink{done: make(chan struct{}, 8)}
}

func (m *mockSink) Emit(_ context.Context, ev Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	m.done <- struct{}{}
	return m.err
}

func (m *mockSink) waitForEvent(t *testing.T) Event {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(time.Second):
		t.Fatal("analytics event not emitted")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[len(m.events)-1]
}

func mustQuery(t *testing.T, text string) *query.Query {
	t.Helper()
	q, err := query.New(text, filter.Set{}, 1, 20, "")
	if err != nil {
		t.Fatalf("query.New failed: %v", err)
	}
	return &q
}

func interpretation(conf float64, filters domain.InferredFilters) domain.AnalysisResult {
	return domain.AnalysisResult{
		Capability: domain.CapabilityQueryInterpretation,
		Query:      &domain.Interpretation{Filters: filters, Confidence: conf},
	}
}

func testRecords(now time.Time) []content.Record {
	return []content.Record{
		content.Reconstruct("a", "photo", now.AddDate(0, 0, -1), "", "", nil, nil, nil),
		content.Reconstruct("b", "video", now.AddDate(0, 0, -2), "", "", nil, nil, nil),
	}
}

// --- Tests ---

func TestSearch_CacheHitSkipsEverything(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	cached := result.NewSet(nil, 42, 1, 20, nil)

	cache := &mockCache{hit: cached, hasHit: true}
	interp := &mockInterpreter{}
	finder := &mockFinder{}

	svc := New(cache, interp, finder, nil, zap.NewNop()).WithClock(func() time.Time { return now })

	set, err := svc.Search(context.Background(), mustQuery(t, "beach"))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if set.Total() != 42 {
		t.Errorf("expected cached set, got total %d", set.Total())
	}
	if interp.calls != 0 || finder.calls != 0 {
		t.Error("cache hit must not trigger interpretation or lookup")
	}
}

func TestSearch_MissPopulatesCache(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	cache := &mockCache{}
	interp := &mockInterpreter{result: interpretation(0.9, domain.InferredFilters{})}
	finder := &mockFinder{records: testRecords(now), total: 2}

	svc := New(cache, interp, finder, nil, zap.NewNop()).WithClock(func() time.Time { return now })
	q := mustQuery(t, "Beach  Sunset")

	set, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("expected one cache write, got %d", cache.sets)
	}
	if finder.lastText != "beach sunset" {
		t.Errorf("expected normalized text passed to lookup, got %q", finder.lastText)
	}
	if len(set.Items()) != 2 || set.Total() != 2 {
		t.Errorf("expected 2 items, got %d of %d", len(set.Items()), set.Total())
	}
	if set.Aggregations()["photo"] != 1 || set.Aggregations()["video"] != 1 {
		t.Errorf("expected per-type aggregations, got %v", set.Aggregations())
	}

	// Second identical search is served from cache: still one interpretation.
	if _, err := svc.Search(context.Background(), q); err != nil {
		t.Fatalf("second Search failed: %v", err)
	}
	if interp.calls != 1 {
		t.Errorf("expected exactly one interpretation call, got %d", interp.calls)
	}
}

func TestSearch_FilterOnlySkipsInterpretation(t *testing.T) {
	f, err := filter.New(nil, nil, "photo", nil)
	if err != nil {
		t.Fatalf("filter.New failed: %v", err)
	}
	q, err := query.New("", f, 1, 20, "")
	if err != nil {
		t.Fatalf("query.New failed: %v", err)
	}

	interp := &mockInterpreter{}
	finder := &mockFinder{}
	svc := New(&mockCache{}, interp, finder, nil, zap.NewNop())

	if _, err := svc.Search(context.Background(), &q); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if interp.calls != 0 {
		t.Error("filter-only query must skip interpretation")
	}
	if finder.lastFilters.ContentType() != "photo" {
		t.Errorf("expected explicit filters passed through, got %q", finder.lastFilters.ContentType())
	}
}

func TestSearch_ExplicitFiltersWinOverInferred(t *testing.T) {
	inferredFrom := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	interp := &mockInterpreter{result: interpretation(0.9, domain.InferredFilters{
		DateFrom:    &inferredFrom,
		ContentType: "video",
	})}

	explicit, err := filter.New(nil, nil, "photo", nil)
	if err != nil {
		t.Fatalf("filter.New failed: %v", err)
	}
	q, err := query.New("summer", explicit, 1, 20, "")
	if err != nil {
		t.Fatalf("query.New failed: %v", err)
	}

	finder := &mockFinder{}
	svc := New(&mockCache{}, interp, finder, nil, zap.NewNop())

	if _, err := svc.Search(context.Background(), &q); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if finder.lastFilters.ContentType() != "photo" {
		t.Errorf("explicit content type must win, got %q", finder.lastFilters.ContentType())
	}
	if finder.lastFilters.DateFrom() == nil || !finder.lastFilters.DateFrom().Equal(inferredFrom) {
		t.Errorf("inferred date should fill the gap, got %v", finder.lastFilters.DateFrom())
	}
}

func TestSearch_OrchestratorErrorsPropagateUnchanged(t *testing.T) {
	exhausted := domain.NewProviderExhausted(3, errors.New("all down"))
	interp := &mockInterpreter{err: exhausted}
	svc := New(&mockCache{}, interp, &mockFinder{}, nil, zap.NewNop())

	_, err := svc.Search(context.Background(), mustQuery(t, "beach"))
	if !errors.Is(err, domain.ErrProviderExhausted) {
		t.Errorf("expected ErrProviderExhausted to cross the boundary, got %v", err)
	}
}

func TestSearch_DeadlineDuringInterpretationMapsToServiceUnavailable(t *testing.T) {
	// The overall search deadline expires while the orchestrator is still
	// working; the orchestrator reports exhaustion but the caller timed out.
	interp := &mockInterpreter{err: domain.NewProviderExhausted(1, context.DeadlineExceeded)}
	svc := New(&mockCache{}, interp, &mockFinder{}, nil, zap.NewNop())

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Millisecond))
	defer cancel()

	_, err := svc.Search(ctx, mustQuery(t, "beach"))
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrProviderExhausted) {
		t.Error("caller timeout must not surface as provider exhaustion")
	}
}

func TestSearch_LookupDeadlineMapsToServiceUnavailable(t *testing.T) {
	interp := &mockInterpreter{result: interpretation(0.9, domain.InferredFilters{})}
	finder := &mockFinder{err: context.DeadlineExceeded}
	svc := New(&mockCache{}, interp, finder, nil, zap.NewNop())

	_, err := svc.Search(context.Background(), mustQuery(t, "beach"))
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestSearch_LookupFailureMapsToServiceUnavailable(t *testing.T) {
	interp := &mockInterpreter{result: interpretation(0.9, domain.InferredFilters{})}
	finder := &mockFinder{err: errors.New("index missing")}
	svc := New(&mockCache{}, interp, finder, nil, zap.NewNop())

	_, err := svc.Search(context.Background(), mustQuery(t, "beach"))
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestSearch_AnalyticsEmittedWithNormalizedQuery(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	interp := &mockInterpreter{result: interpretation(0.9, domain.InferredFilters{})}
	finder := &mockFinder{records: testRecords(now), total: 7}
	sink := newMockSink()

	svc := New(&mockCache{}, interp, finder, sink, zap.NewNop()).
		WithClock(func() time.Time { return now })

	if _, err := svc.Search(context.Background(), mustQuery(t, "  Beach   Sunset ")); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	ev := sink.waitForEvent(t)
	if ev.Query != "beach sunset" {
		t.Errorf("expected normalized query in event, got %q", ev.Query)
	}
	if ev.ResultCount != 7 {
		t.Errorf("expected result count 7, got %d", ev.ResultCount)
	}
	if !ev.Timestamp.Equal(now) {
		t.Errorf("expected event timestamp from injected clock, got %v", ev.Timestamp)
	}
}

func TestSearch_AnalyticsFailureDoesNotAffectCaller(t *testing.T) {
	interp := &mockInterpreter{result: interpretation(0.9, domain.InferredFilters{})}
	sink := newMockSink()
	sink.err = errors.New("stream full")

	svc := New(&mockCache{}, interp, &mockFinder{}, sink, zap.NewNop())

	if _, err := svc.Search(context.Background(), mustQuery(t, "beach")); err != nil {
		t.Errorf("analytics failure must not surface, got %v", err)
	}
	sink.waitForEvent(t)
}

func TestSearch_NilAnalyticsSink(t *testing.T) {
	interp := &mockInterpreter{result: interpretation(0.9, domain.InferredFilters{})}
	svc := New(&mockCache{}, interp, &mockFinder{}, nil, zap.NewNop())

	if _, err := svc.Search(context.Background(), mustQuery(t, "beach")); err != nil {
		t.Errorf("Search with nil sink failed: %v", err)
	}
}
