package flagsearch

import (
	"context"

	healthuc "github.com/kailas-cloud/flagsearch/internal/usecase/health"
)

// HealthStatus reports whether the backing store answers.
type HealthStatus struct {
	Status string            // "ok" or "error"
	Checks map[string]string // "database" -> "ok"/"error"
}

// Healthy reports whether every check passed.
func (h HealthStatus) Healthy() bool { return h.Status == string(healthuc.Healthy) }

// Health pings the store.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
