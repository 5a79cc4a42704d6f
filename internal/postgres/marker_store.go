package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MarkerStore implements notification.MarkerStore on the
// trial_notifications table. Unlike the Redis implementation markers never
// expire; a restarted trial reuses the same thresholds, so stale rows for
// a tenant are cleared when its trial window is reset.
type MarkerStore struct {
	pool *pgxpool.Pool
}

func NewMarkerStore(pool *pgxpool.Pool) *MarkerStore {
	return &MarkerStore{pool: pool}
}

func (s *MarkerStore) AlreadyNotified(ctx context.Context, tenantID uuid.UUID, threshold int) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM trial_notifications
			WHERE tenant_id = $1 AND threshold = $2
		)`, tenantID, threshold).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("check trial notification marker: %w", err)
	}
	return exists, nil
}

func (s *MarkerStore) MarkNotified(ctx context.Context, tenantID uuid.UUID, threshold int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trial_notifications (tenant_id, threshold, notified_at)
		VALUES ($1, $2, now())
		ON CONFLICT (tenant_id, threshold) DO NOTHING`,
		tenantID, threshold)
	if err != nil {
		return fmt.Errorf("mark trial notification: %w", err)
	}
	return nil
}

// ClearTenant removes a tenant's notification markers so reminders fire
// again for a reset trial window.
func (s *MarkerStore) ClearTenant(ctx context.Context, tenantID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM trial_notifications WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("clear trial notification markers: %w", err)
	}
	return nil
}
