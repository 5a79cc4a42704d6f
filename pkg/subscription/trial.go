package subscription

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/plan"
)

// TrialService owns the trial lifecycle: starting windows, deriving trial
// status, and converting overdue trials into active Free-tier subscriptions.
type TrialService struct {
	store Store
	plans plan.Catalog
	clock clock.Clock
	log   *slog.Logger
}

// NewTrialService wires the trial lifecycle manager. Panics on nil
// dependencies to fail fast during initialization.
func NewTrialService(store Store, plans plan.Catalog, clk clock.Clock, log *slog.Logger) *TrialService {
	if store == nil {
		panic("subscription: Store is required")
	}
	if plans == nil {
		panic("subscription: plan.Catalog is required")
	}
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = slog.Default()
	}
	return &TrialService{store: store, plans: plans, clock: clk, log: log}
}

// StartTrial idempotently upserts the tenant's subscription into TRIAL
// status with a fresh 7-day window parked on the Free plan, and marks the
// trial as used.
//
// Calling it again resets the window. Gating repeat trials behind an
// IsTrialUsed check is deliberately the caller's policy, not this
// operation's: the HTTP start-trial endpoint enforces it, while tenant
// provisioning calls this unconditionally for brand-new tenants.
func (s *TrialService) StartTrial(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	free, err := s.plans.ByName(ctx, plan.FreePlanName)
	if err != nil {
		return nil, ErrFreePlanMissing
	}

	now := s.clock.Now()
	trialEndsAt := now.AddDate(0, 0, TrialDays)

	sub, err := s.store.Get(ctx, tenantID)
	switch {
	case errors.Is(err, ErrNotFound):
		sub = &Subscription{
			TenantID:  tenantID,
			CreatedAt: now,
		}
	case err != nil:
		return nil, err
	}

	sub.PlanID = free.ID
	sub.Status = StatusTrial
	sub.TrialStartsAt = &now
	sub.TrialEndsAt = &trialEndsAt
	sub.IsTrialUsed = true
	sub.UpdatedAt = now

	if err := s.store.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "trial started",
		slog.String("tenant_id", tenantID.String()),
		slog.Time("trial_ends_at", trialEndsAt))

	return sub, nil
}

// GetTrialInfo derives the tenant's trial view without mutating anything.
//
// Evaluation order: no record means the tenant is still eligible for a full
// trial; a TRIAL record with a window is judged against the clock; ACTIVE
// grants full access; every other status locks features, reporting the
// trial as expired only if one was ever used.
func (s *TrialService) GetTrialInfo(ctx context.Context, tenantID uuid.UUID) (TrialInfo, error) {
	sub, err := s.store.Get(ctx, tenantID)
	if err != nil {
		return TrialInfo{
			IsOnTrial:          false,
			TrialDaysRemaining: TrialDays,
			TrialEndsAt:        nil,
			HasTrialExpired:    false,
			CanAccessFeatures:  true,
		}, nil
	}

	now := s.clock.Now()

	if sub.Status == StatusTrial && sub.TrialEndsAt != nil {
		expired := sub.IsTrialExpiredAt(now)
		return TrialInfo{
			IsOnTrial:          true,
			TrialDaysRemaining: sub.TrialDaysRemainingAt(now),
			TrialEndsAt:        sub.TrialEndsAt,
			HasTrialExpired:    expired,
			CanAccessFeatures:  !expired,
		}, nil
	}

	if sub.Status == StatusActive {
		return TrialInfo{
			IsOnTrial:          false,
			TrialDaysRemaining: 0,
			TrialEndsAt:        nil,
			HasTrialExpired:    false,
			CanAccessFeatures:  true,
		}, nil
	}

	// CANCELLED, PAST_DUE, INCOMPLETE, UNPAID
	return TrialInfo{
		IsOnTrial:          false,
		TrialDaysRemaining: 0,
		TrialEndsAt:        nil,
		HasTrialExpired:    sub.IsTrialUsed,
		CanAccessFeatures:  false,
	}, nil
}

// ExpireTrial converts the tenant's subscription into an active Free-tier
// one: status ACTIVE, Free plan, a fresh period start and no period end.
// "Expired trial" and "Free active" deliberately converge; feature access
// past this point is governed by Free-plan limits, not trial flags.
//
// Safe to call on an already-ACTIVE(Free) subscription: it stays
// ACTIVE(Free) with a refreshed period start.
func (s *TrialService) ExpireTrial(ctx context.Context, tenantID uuid.UUID) error {
	free, err := s.plans.ByName(ctx, plan.FreePlanName)
	if err != nil {
		return ErrFreePlanMissing
	}

	sub, err := s.store.Get(ctx, tenantID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	sub.Status = StatusActive
	sub.PlanID = free.ID
	sub.CurrentPeriodStart = &now
	sub.CurrentPeriodEnd = nil
	sub.UpdatedAt = now

	if err := s.store.Upsert(ctx, sub); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "trial expired, moved to free plan",
		slog.String("tenant_id", tenantID.String()))

	return nil
}

// SweepSummary reports the outcome of one expiry sweep.
type SweepSummary struct {
	Checked int `json:"checked"`
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}

// SweepExpiredTrials expires every trial whose window has passed. Failures
// are isolated per tenant so one broken record doesn't abort the batch.
func (s *TrialService) SweepExpiredTrials(ctx context.Context) (SweepSummary, error) {
	trials, err := s.store.ListTrials(ctx)
	if err != nil {
		return SweepSummary{}, err
	}

	now := s.clock.Now()
	summary := SweepSummary{Checked: len(trials)}

	for _, sub := range trials {
		if sub.TrialEndsAt.After(now) {
			continue
		}
		if err := s.ExpireTrial(ctx, sub.TenantID); err != nil {
			summary.Failed++
			s.log.ErrorContext(ctx, "failed to expire trial",
				slog.String("tenant_id", sub.TenantID.String()),
				slog.Any("error", err))
			continue
		}
		summary.Expired++
	}

	return summary, nil
}
