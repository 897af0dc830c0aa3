// Package health tracks per-provider health records and runs the periodic
// monitor that maintains them.
package health

import (
	"sync/atomic"
	"time"

	"github.com/soycharroup/memoryreel/internal/domain/provider"
)

// State is a provider health state.
type State string

const (
	// Available indicates the last probe succeeded.
	Available State = "available"
	// Degraded indicates the provider answered but reported self-degradation.
	Degraded State = "degraded"
	// Unavailable indicates the last probe timed out or failed.
	Unavailable State = "unavailable"
)

// rank orders states for failover attempt ordering (lower tries first).
func (s State) rank() int {
	switch s {
	case Available:
		return 0
	case Degraded:
		return 1
	}
	return 2
}

// Rank returns the failover ordering rank of the state (lower tries first).
func (s State) Rank() int { return s.rank() }

// Record is a point-in-time health snapshot for one provider.
// Written only by the Monitor; read by everything else.
type Record struct {
	State      State
	CheckedAt  time.Time
	ErrorRate  float64
	AvgLatency time.Duration
}

// slot holds the record pointer plus rolling outcome counters for one provider.
// Counters are fed by the orchestrator on every attempt and drained by the
// monitor each sweep, so ErrorRate and AvgLatency reflect observed traffic.
type slot struct {
	record    atomic.Pointer[Record]
	successes atomic.Int64
	failures  atomic.Int64
	latencyUS atomic.Int64
}

// Store holds one health record per registered provider.
// Single writer (the Monitor) swaps records atomically; readers never block.
type Store struct {
	slots map[provider.Kind]*slot
	kinds []provider.Kind
}

// NewStore creates a store with one slot per kind, each initialized Available
// so that providers are attempted normally before the first sweep completes.
func NewStore(kinds []provider.Kind) *Store {
	slots := make(map[provider.Kind]*slot, len(kinds))
	for _, k := range kinds {
		sl := &slot{}
		sl.record.Store(&Record{State: Available})
		slots[k] = sl
	}
	return &Store{slots: slots, kinds: kinds}
}

// Kinds returns the tracked provider kinds in registration order.
func (s *Store) Kinds() []provider.Kind { return s.kinds }

// Snapshot returns the current record for a kind.
// Unknown kinds read as Unavailable.
func (s *Store) Snapshot(kind provider.Kind) Record {
	sl, ok := s.slots[kind]
	if !ok {
		return Record{State: Unavailable}
	}
	return *sl.record.Load()
}

// SetRecord atomically replaces the record for a kind. Monitor use only.
func (s *Store) SetRecord(kind provider.Kind, r Record) {
	if sl, ok := s.slots[kind]; ok {
		sl.record.Store(&r)
	}
}

// RecordOutcome feeds one attempt outcome into the rolling counters.
// Called by the orchestrator per provider attempt.
func (s *Store) RecordOutcome(kind provider.Kind, success bool, latency time.Duration) {
	sl, ok := s.slots[kind]
	if !ok {
		return
	}
	if success {
		sl.successes.Add(1)
	} else {
		sl.failures.Add(1)
	}
	sl.latencyUS.Add(latency.Microseconds())
}

// drainOutcomes swaps the rolling counters to zero and returns their values.
func (s *Store) drainOutcomes(kind provider.Kind) (successes, failures int64, latency time.Duration) {
	sl, ok := s.slots[kind]
	if !ok {
		return 0, 0, 0
	}
	successes = sl.successes.Swap(0)
	failures = sl.failures.Swap(0)
	latency = time.Duration(sl.latencyUS.Swap(0)) * time.Microsecond
	return successes, failures, latency
}
