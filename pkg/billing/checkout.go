package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/subscription"
)

// CheckoutOptions configures a checkout session.
type CheckoutOptions struct {
	Email      string
	SuccessURL string
	CancelURL  string
}

// Service is the outbound half of billing: opening checkouts and customer
// portal sessions. Inbound events go through the Reconciler.
type Service struct {
	provider Provider
	subs     subscription.Store
	plans    plan.Catalog
	clock    clock.Clock
	log      *slog.Logger
}

// NewService wires the checkout/portal service. Panics on nil required
// dependencies.
func NewService(provider Provider, subs subscription.Store, plans plan.Catalog, clk clock.Clock, log *slog.Logger) *Service {
	if provider == nil {
		panic("billing: Provider is required")
	}
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
	return &Service{provider: provider, subs: subs, plans: plans, clock: clk, log: log}
}

// Checkout opens a checkout for the plan. Free plans bypass the provider
// entirely: the subscription is activated immediately and the caller is
// pointed at the success URL.
func (s *Service) Checkout(ctx context.Context, tenantID uuid.UUID, planID string, opts CheckoutOptions) (*CheckoutLink, error) {
	pl, err := s.plans.ByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if pl.IsFree() {
		now := s.clock.Now()
		sub, err := s.subs.Get(ctx, tenantID)
		switch {
		case errors.Is(err, subscription.ErrNotFound):
			sub = &subscription.Subscription{TenantID: tenantID, CreatedAt: now}
		case err != nil:
			return nil, fmt.Errorf("failed to load subscription: %w", err)
		}
		sub.PlanID = pl.ID
		sub.Status = subscription.StatusActive
		sub.ProviderSubID = ""
		sub.CurrentPeriodStart = &now
		sub.CurrentPeriodEnd = nil
		sub.UpdatedAt = now

		if err := s.subs.Upsert(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to activate free plan: %w", err)
		}

		return &CheckoutLink{
			URL:       opts.SuccessURL,
			ExpiresAt: s.clock.Now().Add(5 * time.Minute),
		}, nil
	}

	if pl.ProviderPriceID == "" {
		return nil, fmt.Errorf("%w: plan %s has no provider price", ErrMissingPriceID, pl.ID)
	}

	return s.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		PriceID:    pl.ProviderPriceID,
		TenantID:   tenantID.String(),
		PlanID:     pl.ID,
		Email:      opts.Email,
		SuccessURL: opts.SuccessURL,
		CancelURL:  opts.CancelURL,
	})
}

// PortalLink returns a customer portal session for the tenant's paid
// subscription. Free subscriptions have nothing to manage at the provider.
func (s *Service) PortalLink(ctx context.Context, tenantID uuid.UUID) (*PortalLink, error) {
	sub, err := s.subs.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub.ProviderSubID == "" {
		return nil, errors.New("no customer portal for subscriptions without a provider link")
	}
	return s.provider.CustomerPortalLink(ctx, sub.CustomerID, sub.ProviderSubID)
}
