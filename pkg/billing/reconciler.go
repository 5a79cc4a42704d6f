package billing

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/subscription"
)

// Reconciler maps provider lifecycle events onto local subscription state.
//
// Every handler is idempotent under at-least-once redelivery: effects are
// upserts or conditional updates keyed by stable identifiers, never blind
// inserts. Internal errors are logged and swallowed so the webhook endpoint
// can acknowledge the event regardless; failing the ack would only trigger
// provider-side redelivery storms for events we can never process.
type Reconciler struct {
	subs  subscription.Store
	plans plan.Catalog
	clock clock.Clock
	log   *slog.Logger
}

// NewReconciler wires the billing reconciliation handler. Panics on nil
// required dependencies.
func NewReconciler(subs subscription.Store, plans plan.Catalog, clk clock.Clock, log *slog.Logger) *Reconciler {
	if subs == nil {
		panic("billing: subscription.Store is required")
	}
	if plans == nil {
		panic("billing: plan.Catalog is required")
	}
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{subs: subs, plans: plans, clock: clk, log: log}
}

// Process dispatches a normalized event to its handler. Unknown event kinds
// are logged and ignored.
func (r *Reconciler) Process(ctx context.Context, event *Event) {
	if event == nil {
		return
	}
	switch event.Type {
	case EventCheckoutCompleted:
		r.handleCheckoutCompleted(ctx, event)
	case EventSubscriptionUpdated:
		r.handleSubscriptionUpdated(ctx, event)
	case EventSubscriptionDeleted:
		r.handleSubscriptionDeleted(ctx, event)
	default:
		r.log.DebugContext(ctx, "ignoring unhandled billing event",
			slog.String("provider_event", event.ProviderEvent))
	}
}

// handleCheckoutCompleted activates the tenant's paid subscription. Tenant
// and plan identifiers must arrive in event metadata; without them the
// event is unreconcilable and dropped.
func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, event *Event) {
	if event.TenantID == "" || event.PlanID == "" {
		r.log.ErrorContext(ctx, "checkout event missing tenant or plan metadata",
			slog.String("provider_event", event.ProviderEvent))
		return
	}

	tenantID, err := uuid.Parse(event.TenantID)
	if err != nil {
		r.log.ErrorContext(ctx, "checkout event carries invalid tenant id",
			slog.String("tenant_id", event.TenantID))
		return
	}

	if _, err := r.plans.ByID(ctx, event.PlanID); err != nil {
		r.log.ErrorContext(ctx, "checkout event references unknown plan",
			slog.String("plan_id", event.PlanID))
		return
	}

	now := r.clock.Now()
	sub, err := r.subs.Get(ctx, tenantID)
	switch {
	case errors.Is(err, subscription.ErrNotFound):
		sub = &subscription.Subscription{
			TenantID:  tenantID,
			CreatedAt: now,
		}
	case err != nil:
		// A transient read failure must not be mistaken for absence: a
		// fresh record here would wipe the trial history. Drop the event
		// and let the provider redeliver.
		r.log.ErrorContext(ctx, "failed to load subscription for checkout event",
			slog.String("tenant_id", tenantID.String()),
			slog.Any("error", err))
		return
	}

	sub.PlanID = event.PlanID
	sub.Status = subscription.StatusActive
	sub.CustomerID = event.CustomerID
	sub.ProviderSubID = event.ProviderSubID
	sub.UpdatedAt = now

	if err := r.subs.Upsert(ctx, sub); err != nil {
		r.log.ErrorContext(ctx, "failed to upsert subscription from checkout event",
			slog.String("tenant_id", tenantID.String()),
			slog.Any("error", err))
		return
	}

	r.log.InfoContext(ctx, "subscription activated from checkout",
		slog.String("tenant_id", tenantID.String()),
		slog.String("plan_id", event.PlanID))
}

// handleSubscriptionUpdated maps the provider's status vocabulary onto the
// local enumeration. An unknown provider subscription id is dropped: local
// state may have been deleted, or the event raced ahead of checkout
// completion. There is no retry queue; out-of-order delivery stays a known
// gap.
func (r *Reconciler) handleSubscriptionUpdated(ctx context.Context, event *Event) {
	sub, err := r.subs.GetByProviderSubID(ctx, event.ProviderSubID)
	if err != nil {
		r.log.ErrorContext(ctx, "no local subscription for provider id",
			slog.String("provider_sub_id", event.ProviderSubID),
			slog.String("provider_event", event.ProviderEvent))
		return
	}

	sub.Status = MapProviderStatus(event.Status)
	sub.UpdatedAt = r.clock.Now()

	if err := r.subs.Upsert(ctx, sub); err != nil {
		r.log.ErrorContext(ctx, "failed to update subscription status",
			slog.String("tenant_id", sub.TenantID.String()),
			slog.Any("error", err))
		return
	}

	r.log.InfoContext(ctx, "subscription status reconciled",
		slog.String("tenant_id", sub.TenantID.String()),
		slog.String("status", string(sub.Status)))
}

// handleSubscriptionDeleted parks the tenant back on the Free plan with
// CANCELLED status and severs the provider link. Without a Free plan the
// reassignment silently does not happen; only lookup failures are logged.
func (r *Reconciler) handleSubscriptionDeleted(ctx context.Context, event *Event) {
	sub, err := r.subs.GetByProviderSubID(ctx, event.ProviderSubID)
	if err != nil {
		r.log.ErrorContext(ctx, "no local subscription for deleted provider id",
			slog.String("provider_sub_id", event.ProviderSubID))
		return
	}

	free, err := r.plans.ByName(ctx, plan.FreePlanName)
	if err != nil {
		return
	}

	sub.PlanID = free.ID
	sub.Status = subscription.StatusCancelled
	sub.ProviderSubID = ""
	sub.UpdatedAt = r.clock.Now()

	if err := r.subs.Upsert(ctx, sub); err != nil {
		r.log.ErrorContext(ctx, "failed to cancel subscription",
			slog.String("tenant_id", sub.TenantID.String()),
			slog.Any("error", err))
		return
	}

	r.log.InfoContext(ctx, "subscription cancelled, moved to free plan",
		slog.String("tenant_id", sub.TenantID.String()))
}

// MapProviderStatus maps the provider's subscription status vocabulary onto
// the local enumeration. Unrecognized values default to ACTIVE, a
// deliberately permissive fallback: a status we've never seen should not
// lock a paying customer out.
func MapProviderStatus(providerStatus string) subscription.Status {
	switch strings.ToLower(providerStatus) {
	case "active", "trialing":
		return subscription.StatusActive
	case "canceled", "cancelled", "paused", "incomplete_expired":
		return subscription.StatusCancelled
	case "past_due":
		return subscription.StatusPastDue
	case "incomplete":
		return subscription.StatusIncomplete
	case "unpaid":
		return subscription.StatusUnpaid
	default:
		return subscription.StatusActive
	}
}
