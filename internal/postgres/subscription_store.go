package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/envioexpress/platform/pkg/subscription"
)

// SubscriptionStore implements subscription.Store on PostgreSQL. The
// subscriptions table is keyed by tenant_id, so the one-row-per-tenant
// invariant is enforced by the schema, not by application code.
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

const subscriptionColumns = `tenant_id, plan_id, status, trial_starts_at, trial_ends_at,
	is_trial_used, customer_id, provider_subscription_id,
	current_period_start, current_period_end, created_at, updated_at`

func (s *SubscriptionStore) Get(ctx context.Context, tenantID uuid.UUID) (*subscription.Subscription, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE tenant_id = $1`,
		tenantID)
	return scanSubscription(row)
}

func (s *SubscriptionStore) GetByProviderSubID(ctx context.Context, providerSubID string) (*subscription.Subscription, error) {
	if providerSubID == "" {
		return nil, subscription.ErrNotFound
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE provider_subscription_id = $1`,
		providerSubID)
	return scanSubscription(row)
}

func (s *SubscriptionStore) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil || sub.TenantID == uuid.Nil {
		return subscription.ErrInvalidRecord
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (
			tenant_id, plan_id, status, trial_starts_at, trial_ends_at,
			is_trial_used, customer_id, provider_subscription_id,
			current_period_start, current_period_end, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			plan_id = EXCLUDED.plan_id,
			status = EXCLUDED.status,
			trial_starts_at = EXCLUDED.trial_starts_at,
			trial_ends_at = EXCLUDED.trial_ends_at,
			is_trial_used = EXCLUDED.is_trial_used,
			customer_id = EXCLUDED.customer_id,
			provider_subscription_id = EXCLUDED.provider_subscription_id,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = now()`,
		sub.TenantID, sub.PlanID, string(sub.Status),
		sub.TrialStartsAt, sub.TrialEndsAt, sub.IsTrialUsed,
		nullIfEmpty(sub.CustomerID), nullIfEmpty(sub.ProviderSubID),
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) ListTrials(ctx context.Context) ([]*subscription.Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE status = $1 AND trial_ends_at IS NOT NULL
		 ORDER BY trial_ends_at`,
		string(subscription.StatusTrial))
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*subscription.Subscription, error) {
	var (
		sub           subscription.Subscription
		status        string
		customerID    *string
		providerSubID *string
	)
	err := row.Scan(
		&sub.TenantID, &sub.PlanID, &status,
		&sub.TrialStartsAt, &sub.TrialEndsAt, &sub.IsTrialUsed,
		&customerID, &providerSubID,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd,
		&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, subscription.ErrNotFound
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	sub.Status = subscription.Status(status)
	if customerID != nil {
		sub.CustomerID = *customerID
	}
	if providerSubID != nil {
		sub.ProviderSubID = *providerSubID
	}
	return &sub, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
