package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/domain/provider"
	"github.com/soycharroup/memoryreel/internal/metrics"
)

// Monitor polls every provider on a fixed interval and overwrites its health
// record. Each check fully replaces the prior state; there is no hysteresis.
type Monitor struct {
	store        *Store
	probers      map[provider.Kind]Prober
	interval     time.Duration
	probeTimeout time.Duration
	logger       *zap.Logger

	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())
}

// NewMonitor creates a health monitor over the given probers.
func NewMonitor(
	store *Store,
	probers map[provider.Kind]Prober,
	interval, probeTimeout time.Duration,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		store:        store,
		probers:      probers,
		interval:     interval,
		probeTimeout: probeTimeout,
		logger:       logger,
		now:          time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// WithClock overrides the time source and ticker factory for tests.
func (m *Monitor) WithClock(
	now func() time.Time,
	newTicker func(time.Duration) (<-chan time.Time, func()),
) *Monitor {
	m.now = now
	m.newTicker = newTicker
	return m
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.Sweep(ctx)

	tick, stop := m.newTicker(m.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			m.Sweep(ctx)
		}
	}
}

// Sweep probes all providers concurrently and replaces their records.
// Each probe is bounded by its own timeout so a slow provider cannot stall
// the sweep beyond that bound.
func (m *Monitor) Sweep(ctx context.Context) {
	var wg sync.WaitGroup
	for kind, prober := range m.probers {
		wg.Add(1)
		go func(kind provider.Kind, prober Prober) {
			defer wg.Done()
			m.check(ctx, kind, prober)
		}(kind, prober)
	}
	wg.Wait()
}

func (m *Monitor) check(ctx context.Context, kind provider.Kind, prober Prober) {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	status, err := prober.Status(probeCtx)

	state := Available
	switch {
	case err != nil:
		state = Unavailable
		if errors.Is(err, context.DeadlineExceeded) {
			m.logger.Warn("provider probe timed out", zap.String("provider", string(kind)))
		} else {
			m.logger.Warn("provider probe failed", zap.String("provider", string(kind)), zap.Error(err))
		}
	case status.Degraded:
		state = Degraded
		m.logger.Info("provider self-reports degradation",
			zap.String("provider", string(kind)), zap.String("detail", status.Detail))
	}

	successes, failures, latency := m.store.drainOutcomes(kind)

	rec := Record{State: state, CheckedAt: m.now()}
	if total := successes + failures; total > 0 {
		rec.ErrorRate = float64(failures) / float64(total)
		rec.AvgLatency = latency / time.Duration(total)
	}
	m.store.SetRecord(kind, rec)

	metrics.ProviderHealth.WithLabelValues(string(kind)).Set(healthGaugeValue(state))
	metrics.ProviderErrorRate.WithLabelValues(string(kind)).Set(rec.ErrorRate)
}

func healthGaugeValue(s State) float64 {
	switch s {
	case Available:
		return 2
	case Degraded:
		return 1
	}
	return 0
}
