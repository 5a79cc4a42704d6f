package billing

import (
	"context"
	"time"
)

// Provider is the minimal payment-provider integration surface. Providers
// handle payment complexity through hosted checkouts and customer portals;
// this package only consumes normalized lifecycle events and links.
//
// ParseWebhook must verify the payload signature before returning an event;
// the reconciler trusts whatever comes out of it.
type Provider interface {
	// CreateCheckoutLink creates a hosted checkout session for a paid plan.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// CustomerPortalLink returns a temporary link where the customer can
	// update payment methods, cancel, or change plans.
	CustomerPortalLink(ctx context.Context, customerID, providerSubID string) (*PortalLink, error)

	// ParseWebhook validates the signature and normalizes the provider
	// payload into an Event.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)
}

// EventType is the normalized billing lifecycle event kind.
type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout_completed"
	EventSubscriptionUpdated EventType = "subscription_updated"
	EventSubscriptionDeleted EventType = "subscription_deleted"
)

// Event is a normalized provider webhook event.
//
// TenantID and PlanID travel in provider metadata (set at checkout
// creation); ProviderSubID is the provider's stable subscription
// identifier used to correlate updates and deletions with local records.
type Event struct {
	Type          EventType
	ProviderEvent string // original provider event name
	TenantID      string
	PlanID        string
	CustomerID    string
	ProviderSubID string
	Status        string // provider status vocabulary, mapped by the reconciler
	Raw           map[string]any
}

// CheckoutRequest carries what the provider needs to open a checkout.
type CheckoutRequest struct {
	PriceID    string // provider's price identifier for the plan
	TenantID   string // carried back in webhook metadata
	PlanID     string // carried back in webhook metadata
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutLink is a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalLink is a pre-authenticated customer portal session.
type PortalLink struct {
	URL       string
	CancelURL string
	ExpiresAt time.Time
}
