package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/envioexpress/platform/pkg/notification"
)

// OwnerDirectory resolves a tenant to its OWNER-role member for trial
// reminder delivery.
type OwnerDirectory struct {
	pool *pgxpool.Pool
}

func NewOwnerDirectory(pool *pgxpool.Pool) *OwnerDirectory {
	return &OwnerDirectory{pool: pool}
}

func (d *OwnerDirectory) Owner(ctx context.Context, tenantID uuid.UUID) (notification.Recipient, error) {
	var (
		rcpt notification.Recipient
		name *string
	)
	err := d.pool.QueryRow(ctx, `
		SELECT u.email, u.name, t.name
		FROM tenant_users tu
		JOIN users u ON u.id = tu.user_id
		JOIN tenants t ON t.id = tu.tenant_id
		WHERE tu.tenant_id = $1 AND tu.role = 'OWNER'
		ORDER BY tu.created_at
		LIMIT 1`,
		tenantID).Scan(&rcpt.Email, &name, &rcpt.CompanyName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.Recipient{}, notification.ErrNoRecipient
		}
		return notification.Recipient{}, fmt.Errorf("resolve tenant owner: %w", err)
	}
	if name != nil {
		rcpt.Name = *name
	}
	if rcpt.Email == "" {
		return notification.Recipient{}, notification.ErrNoRecipient
	}
	return rcpt, nil
}
