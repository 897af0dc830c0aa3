package health

import (
	"sync"
	"testing"
	"time"

	"github.com/soycharroup/memoryreel/internal/domain/provider"
)

func TestStore_InitialStateAvailable(t *testing.T) {
	s := NewStore([]provider.Kind{provider.KindOpenAI, provider.KindGemini})

	for _, kind := range s.Kinds() {
		if rec := s.Snapshot(kind); rec.State != Available {
			t.Errorf("provider %s: expected initial Available, got %s", kind, rec.State)
		}
	}
}

func TestStore_UnknownKindUnavailable(t *testing.T) {
	s := NewStore([]provider.Kind{provider.KindOpenAI})

	if rec := s.Snapshot(provider.KindGrok); rec.State != Unavailable {
		t.Errorf("unknown kind should read Unavailable, got %s", rec.State)
	}
}

func TestStore_SetRecordReplacesWholeRecord(t *testing.T) {
	s := NewStore([]provider.Kind{provider.KindOpenAI})
	checked := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	s.SetRecord(provider.KindOpenAI, Record{
		State:      Degraded,
		CheckedAt:  checked,
		ErrorRate:  0.25,
		AvgLatency: 120 * time.Millisecond,
	})

	rec := s.Snapshot(provider.KindOpenAI)
	if rec.State != Degraded {
		t.Errorf("expected Degraded, got %s", rec.State)
	}
	if !rec.CheckedAt.Equal(checked) {
		t.Errorf("expected CheckedAt %v, got %v", checked, rec.CheckedAt)
	}
	if rec.ErrorRate != 0.25 {
		t.Errorf("expected error rate 0.25, got %v", rec.ErrorRate)
	}
}

func TestStore_DrainOutcomes(t *testing.T) {
	s := NewStore([]provider.Kind{provider.KindOpenAI})

	s.RecordOutcome(provider.KindOpenAI, true, 100*time.Millisecond)
	s.RecordOutcome(provider.KindOpenAI, true, 200*time.Millisecond)
	s.RecordOutcome(provider.KindOpenAI, false, 300*time.Millisecond)

	successes, failures, latency := s.drainOutcomes(provider.KindOpenAI)
	if successes != 2 || failures != 1 {
		t.Errorf("expected 2 successes and 1 failure, got %d/%d", successes, failures)
	}
	if latency != 600*time.Millisecond {
		t.Errorf("expected 600ms accumulated latency, got %v", latency)
	}

	// A drain resets the counters.
	successes, failures, latency = s.drainOutcomes(provider.KindOpenAI)
	if successes != 0 || failures != 0 || latency != 0 {
		t.Errorf("expected zeroed counters after drain, got %d/%d/%v", successes, failures, latency)
	}
}

func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	s := NewStore([]provider.Kind{provider.KindOpenAI})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.RecordOutcome(provider.KindOpenAI, j%2 == 0, time.Millisecond)
				_ = s.Snapshot(provider.KindOpenAI)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetRecord(provider.KindOpenAI, Record{State: Available, CheckedAt: time.Now()})
			}
		}()
	}
	wg.Wait()

	rec := s.Snapshot(provider.KindOpenAI)
	if rec.State != Available {
		t.Errorf("expected Available after writes, got %s", rec.State)
	}
}

func TestStateRank(t *testing.T) {
	if Available.Rank() >= Degraded.Rank() || Degraded.Rank() >= Unavailable.Rank() {
		t.Errorf("expected Available < Degraded < Unavailable, got %d/%d/%d",
			Available.Rank(), Degraded.Rank(), Unavailable.Rank())
	}
}
