package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Unhealthy indicates the database is unreachable; no request can be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db DBPinger
}

// New creates a Service.
func New(db DBPinger) *Service {
	return &Service{db: db}
}

// Check pings the record store.
func (s *Service) Check(ctx context.Context) Report {
	if err := s.db.Ping(ctx); err != nil {
		return Report{Status: Unhealthy, Checks: map[string]CheckResult{"database": CheckError}}
	}
	return Report{Status: Healthy, Checks: map[string]CheckResult{"database": CheckOK}}
}
