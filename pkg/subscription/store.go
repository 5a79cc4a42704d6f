package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract for subscriptions. Each tenant has
// exactly one record, so TenantID serves as the primary key.
//
// Upsert must be atomic on the tenant key: concurrent writers (trial sweep,
// webhook reconciliation, upgrades) race last-write-wins but must never
// produce a second row for the same tenant.
type Store interface {
	// Get retrieves a subscription by tenant ID.
	// Returns ErrNotFound if no subscription exists.
	Get(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)

	// GetByProviderSubID retrieves a subscription by the billing provider's
	// subscription identifier. Returns ErrNotFound when no record matches.
	GetByProviderSubID(ctx context.Context, providerSubID string) (*Subscription, error)

	// Upsert creates or replaces the tenant's subscription record.
	Upsert(ctx context.Context, sub *Subscription) error

	// ListTrials returns all subscriptions in TRIAL status with a trial
	// window set, for the expiry sweep and notification scan.
	ListTrials(ctx context.Context) ([]*Subscription, error)
}
