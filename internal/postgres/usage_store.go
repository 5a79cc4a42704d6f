package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/envioexpress/platform/pkg/usage"
)

// metricColumns maps a metric to its counter column. The whitelist keeps
// metric names out of SQL string interpolation.
var metricColumns = map[usage.Metric]string{
	usage.MetricContacts:    "contacts_count",
	usage.MetricMessages:    "messages_count",
	usage.MetricGroups:      "groups_count",
	usage.MetricImages:      "images_count",
	usage.MetricUsers:       "users_count",
	usage.MetricAPIRequests: "api_requests",
}

// UsageStore implements usage.Store on PostgreSQL. Increments are a single
// INSERT .. ON CONFLICT DO UPDATE, so concurrent writers never lose counts
// and the period row is created lazily on first use.
type UsageStore struct {
	pool *pgxpool.Pool
}

func NewUsageStore(pool *pgxpool.Pool) *UsageStore {
	return &UsageStore{pool: pool}
}

func (s *UsageStore) Increment(ctx context.Context, tenantID uuid.UUID, period string, metric usage.Metric, delta int64) error {
	if delta < 0 {
		return usage.ErrNegativeDelta
	}
	col, ok := metricColumns[metric]
	if !ok {
		return usage.ErrUnknownMetric
	}

	query := fmt.Sprintf(`
		INSERT INTO usage_metrics (tenant_id, period, %[1]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, period) DO UPDATE
		SET %[1]s = usage_metrics.%[1]s + EXCLUDED.%[1]s,
		    updated_at = now()`, col)

	if _, err := s.pool.Exec(ctx, query, tenantID, period, delta); err != nil {
		return fmt.Errorf("increment usage %s: %w", metric, err)
	}
	return nil
}

func (s *UsageStore) Get(ctx context.Context, tenantID uuid.UUID, period string) (*usage.Metrics, error) {
	var m usage.Metrics
	err := s.pool.QueryRow(ctx, `
		SELECT tenant_id, period, contacts_count, messages_count, groups_count,
		       images_count, users_count, api_requests, storage_used
		FROM usage_metrics
		WHERE tenant_id = $1 AND period = $2`,
		tenantID, period).Scan(
		&m.TenantID, &m.Period, &m.ContactsCount, &m.MessagesCount,
		&m.GroupsCount, &m.ImagesCount, &m.UsersCount, &m.APIRequests,
		&m.StorageUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, usage.ErrNotFound
		}
		return nil, fmt.Errorf("get usage metrics: %w", err)
	}
	return &m, nil
}
