package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/envioexpress/platform/pkg/limits"
	"github.com/envioexpress/platform/pkg/plan"
)

// Counters exposes live inventory counts for the plan limit enforcer.
// These intentionally read the real tables rather than the usage ledger:
// deleting a contact frees quota immediately, while the monthly message
// counter (ledger-backed, registered elsewhere) never rolls back.
type Counters struct {
	pool *pgxpool.Pool
}

func NewCounters(pool *pgxpool.Pool) *Counters {
	return &Counters{pool: pool}
}

func (c *Counters) count(ctx context.Context, table string, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := c.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tenant_id = $1`, table),
		tenantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (c *Counters) Contacts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, "contacts", tenantID)
}

func (c *Counters) Groups(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, "contact_groups", tenantID)
}

func (c *Counters) Images(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, "images", tenantID)
}

func (c *Counters) Users(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return c.count(ctx, "tenant_users", tenantID)
}

// Options returns the limits service options registering every live
// inventory counter.
func (c *Counters) Options() []limits.Option {
	return []limits.Option{
		limits.WithCounter(plan.ResourceContacts, c.Contacts),
		limits.WithCounter(plan.ResourceGroups, c.Groups),
		limits.WithCounter(plan.ResourceImages, c.Images),
		limits.WithCounter(plan.ResourceUsers, c.Users),
	}
}
