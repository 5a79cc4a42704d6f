package plan

import (
	"fmt"
	"maps"
	"slices"
)

// FreePlanName is the reserved tier every tenant falls back to: trials are
// parked on it and deleted paid subscriptions are reassigned to it.
// Trial start and expiry fail with ErrFreePlanMissing when it is absent.
const FreePlanName = "Free"

// Plan describes a subscription tier: price, billing interval, marketing
// feature list, and the per-resource limits document interpreted by the
// enforcement layer. Plans are looked up by ID or name and never deleted
// while a live subscription references them.
type Plan struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"` // unique
	Description     string          `json:"description" yaml:"description"`
	Price           Money           `json:"price" yaml:"price"`
	Interval        BillingInterval `json:"interval" yaml:"interval"`
	Features        []string        `json:"features" yaml:"features"`
	Limits          Limits          `json:"limits" yaml:"limits"`
	ProviderPriceID string          `json:"providerPriceId,omitempty" yaml:"provider_price_id,omitempty"`
	Active          bool            `json:"active" yaml:"active"`
}

// IsFree reports whether the plan has no recurring billing.
func (p Plan) IsFree() bool {
	return p.Interval == IntervalNone || p.Price.Amount == 0
}

// Clone returns a deep copy so catalog internals can't be mutated by callers.
func (p Plan) Clone() Plan {
	cp := p
	cp.Features = slices.Clone(p.Features)
	cp.Limits = maps.Clone(p.Limits)
	return cp
}

// Validate catches catalog misconfiguration at load time rather than during
// a limit check or checkout.
func (p Plan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: plan with empty ID", ErrInvalidPlan)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: plan %s has empty name", ErrInvalidPlan, p.ID)
	}
	if p.Price.Amount < 0 {
		return fmt.Errorf("%w: plan %s has negative price", ErrInvalidPlan, p.ID)
	}
	if p.Price.Amount > 0 && p.Price.Currency == "" {
		return fmt.Errorf("%w: plan %s is priced but has no currency", ErrInvalidPlan, p.ID)
	}
	switch p.Interval {
	case IntervalNone, IntervalMonthly, IntervalAnnual:
	default:
		return fmt.Errorf("%w: plan %s has unknown interval %q", ErrInvalidPlan, p.ID, p.Interval)
	}
	return nil
}
