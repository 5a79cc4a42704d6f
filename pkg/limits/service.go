package limits

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/subscription"
	"github.com/envioexpress/platform/pkg/usage"
)

// CounterFunc returns the current usage of a resource for a tenant. Counters
// run on every guarded request, so implementations should be a single cheap
// query or a cached value.
//
// The sourcing is intentionally mixed: contacts, groups, images, and users
// count live inventory rows (they can shrink on deletion), while monthly
// messages read the strictly-additive period ledger.
type CounterFunc func(ctx context.Context, tenantID uuid.UUID) (int64, error)

// Service decides whether a tenant may perform a guarded action by
// comparing live usage against the active plan's limits document.
//
// The check is a soft limit: check-then-act without a transaction around
// the later write, so concurrent requests can overshoot a cap by at most
// the request concurrency. That is accepted for quota (not security)
// enforcement.
type Service struct {
	subs     subscription.Store
	plans    plan.Catalog
	tracker  *usage.Tracker
	counters map[plan.Resource]CounterFunc
	log      *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithCounter registers the usage counter for a resource. Checks against a
// resource with no registered counter are denied, never guessed.
func WithCounter(res plan.Resource, fn CounterFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.counters[res] = fn
		}
	}
}

// NewService wires the plan limit enforcer. Panics on nil required
// dependencies to fail fast during initialization.
func NewService(subs subscription.Store, plans plan.Catalog, tracker *usage.Tracker, log *slog.Logger, opts ...Option) *Service {
	if subs == nil {
		panic("limits: subscription.Store is required")
	}
	if plans == nil {
		panic("limits: plan.Catalog is required")
	}
	if tracker == nil {
		panic("limits: usage.Tracker is required")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		subs:     subs,
		plans:    plans,
		tracker:  tracker,
		counters: make(map[plan.Resource]CounterFunc),
		log:      log,
	}

	// Monthly messages always read the period ledger; inventory counters
	// are registered by the composition root against the live tables.
	s.counters[plan.ResourceMonthlyMessages] = func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		return tracker.MessagesThisPeriod(ctx, tenantID)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check decides whether the tenant may perform the action.
//
// Only an ACTIVE subscription passes the gate: a tenant mid-trial holds
// TRIAL status and is therefore constrained by the Free plan it is parked
// on until expiry or upgrade flips the status. Trial feature access is a
// separate gate (subscription.TrialInfo.CanAccessFeatures), not this one.
func (s *Service) Check(ctx context.Context, action Action, tenantID uuid.UUID) Result {
	sub, err := s.subs.Get(ctx, tenantID)
	if err != nil || sub.Status != subscription.StatusActive {
		return Result{Allowed: false, Reason: "subscription inactive or not found"}
	}

	pl, err := s.plans.ByID(ctx, sub.PlanID)
	if err != nil {
		s.log.ErrorContext(ctx, "subscription references unknown plan",
			slog.String("tenant_id", tenantID.String()),
			slog.String("plan_id", sub.PlanID))
		return Result{Allowed: false, Reason: "subscription plan not found"}
	}

	res, ok := actionResources[action]
	if !ok {
		// Unknown actions are not guarded.
		return Result{Allowed: true}
	}

	limit, ok := pl.Limits.Get(res)
	if !ok || limit.IsUnlimited() {
		return Result{Allowed: true}
	}

	counter, ok := s.counters[res]
	if !ok {
		s.log.ErrorContext(ctx, "no usage counter registered for resource",
			slog.String("resource", string(res)))
		return Result{Allowed: false, Reason: "internal error checking plan limits"}
	}

	current, err := counter(ctx, tenantID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to count resource usage",
			slog.String("tenant_id", tenantID.String()),
			slog.String("resource", string(res)),
			slog.Any("error", err))
		return Result{Allowed: false, Reason: "internal error checking plan limits"}
	}

	if current >= int64(limit) {
		return Result{
			Allowed: false,
			Limit:   int64(limit),
			Current: current,
			Reason:  fmt.Sprintf("limit of %d %s reached", int64(limit), resourceLabels[res]),
		}
	}

	return Result{Allowed: true, Limit: int64(limit), Current: current}
}

// UsageStats returns the tenant's usage snapshot: live inventory counts
// plus the current period's message ledger.
func (s *Service) UsageStats(ctx context.Context, tenantID uuid.UUID) (Stats, error) {
	stats := Stats{CurrentPeriod: s.tracker.CurrentPeriod()}

	for res, dst := range map[plan.Resource]*int64{
		plan.ResourceContacts:        &stats.Contacts,
		plan.ResourceGroups:          &stats.Groups,
		plan.ResourceImages:          &stats.Images,
		plan.ResourceUsers:           &stats.Users,
		plan.ResourceMonthlyMessages: &stats.MonthlyMessages,
	} {
		counter, ok := s.counters[res]
		if !ok {
			continue
		}
		n, err := counter(ctx, tenantID)
		if err != nil {
			return Stats{}, fmt.Errorf("%w: %s: %v", ErrFailedToCountUsage, res, err)
		}
		*dst = n
	}

	return stats, nil
}

// AllUsage returns usage against every limited resource of the tenant's
// plan, for the dashboard's limit bars.
func (s *Service) AllUsage(ctx context.Context, tenantID uuid.UUID) (map[plan.Resource]UsageInfo, error) {
	sub, err := s.subs.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	pl, err := s.plans.ByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	out := make(map[plan.Resource]UsageInfo, len(pl.Limits))
	for res, limit := range pl.Limits {
		info := UsageInfo{Limit: int64(limit), Percent: -1}
		if counter, ok := s.counters[res]; ok {
			if n, err := counter(ctx, tenantID); err == nil {
				info.Current = n
			}
		}
		if !limit.IsUnlimited() {
			info.Percent = percentUsed(info.Current, int64(limit))
		}
		out[res] = info
	}
	return out, nil
}

// HasFeature reports whether the tenant's active plan carries the feature.
// Fails closed: any lookup error or non-ACTIVE status yields false.
func (s *Service) HasFeature(ctx context.Context, tenantID uuid.UUID, feature string) bool {
	sub, err := s.subs.Get(ctx, tenantID)
	if err != nil || sub.Status != subscription.StatusActive {
		return false
	}
	pl, err := s.plans.ByID(ctx, sub.PlanID)
	if err != nil {
		return false
	}
	return slices.Contains(pl.Features, feature)
}

func percentUsed(current, limit int64) int {
	if limit <= 0 {
		return 100
	}
	return min(int(current*100/limit), 100)
}
