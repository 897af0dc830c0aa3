package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// PartiallyDegraded indicates partial failure.
	PartiallyDegraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// Report aggregates component and provider health for the health endpoint.
type Report struct {
	Status    Status
	Checks    map[string]string
	Providers map[string]State
}

// Service aggregates database and provider health.
type Service struct {
	db    DBPinger
	store *Store
}

// New creates a Service.
func New(db DBPinger, store *Store) *Service {
	return &Service{db: db, store: store}
}

// Check assembles the aggregated health report.
// Database failure is Unhealthy; any non-available provider is degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]string)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = "error"
		status = Unhealthy
	} else {
		checks["database"] = "ok"
	}

	providers := make(map[string]State, len(s.store.Kinds()))
	for _, kind := range s.store.Kinds() {
		rec := s.store.Snapshot(kind)
		providers[string(kind)] = rec.State
		if rec.State != Available && status == Healthy {
			status = PartiallyDegraded
		}
	}

	return Report{Status: status, Checks: checks, Providers: providers}
}
