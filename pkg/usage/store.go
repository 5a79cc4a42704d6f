package usage

import (
	"context"

	"github.com/google/uuid"
)

// Store persists per-tenant, per-period usage counters.
//
// Increment must be atomic per (tenant, period, metric): concurrent
// increments may interleave but none may be lost. The row is created lazily
// on first increment for a period.
type Store interface {
	// Increment adds delta to the named counter for the tenant's period row,
	// creating the row if it doesn't exist yet.
	Increment(ctx context.Context, tenantID uuid.UUID, period string, metric Metric, delta int64) error

	// Get returns the tenant's counter row for a period.
	// Returns ErrNotFound when nothing was recorded for that period.
	Get(ctx context.Context, tenantID uuid.UUID, period string) (*Metrics, error)
}
