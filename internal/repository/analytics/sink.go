// Package analytics publishes search events to a Redis stream.
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/soycharroup/memoryreel/internal/usecase/search"
)

// store is the consumer interface for the analytics sink (ISP).
type store interface {
	StreamAdd(ctx context.Context, stream string, fields map[string]string) error
}

// Sink appends search events to a capped-interest stream. Consumers
// (dashboards, trend aggregation) read it out of process.
type Sink struct {
	store  store
	stream string
}

// New creates an analytics sink writing to <keyPrefix>analytics:search.
func New(s store, keyPrefix string) *Sink {
	return &Sink{store: s, stream: keyPrefix + "analytics:search"}
}

// Emit appends one event. The caller treats failures as best-effort.
func (s *Sink) Emit(ctx context.Context, ev search.Event) error {
	fields := map[string]string{
		"event_id":     uuid.NewString(),
		"query":        ev.Query,
		"filters":      ev.Filters,
		"result_count": strconv.Itoa(ev.ResultCount),
		"ts":           ev.Timestamp.UTC().Format(time.RFC3339),
	}
	if err := s.store.StreamAdd(ctx, s.stream, fields); err != nil {
		return fmt.Errorf("append analytics event: %w", err)
	}
	return nil
}
