package subscription

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Subscription is the one-per-tenant billing record. TenantID is the primary
// key; the record is never hard-deleted, only downgraded to the Free plan.
type Subscription struct {
	TenantID uuid.UUID
	PlanID   string
	Status   Status

	// Trial window. Both are set together or not at all.
	TrialStartsAt *time.Time
	TrialEndsAt   *time.Time
	// IsTrialUsed is sticky: once true it is never cleared, limiting a
	// tenant to a single trial in its lifetime.
	IsTrialUsed bool

	// Provider identifiers. ProviderSubID is empty unless the tenant has a
	// live paid relationship with the billing provider.
	CustomerID    string
	ProviderSubID string

	// Billing period bounds. Nil for plans without recurring billing.
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Subscription) IsTrial() bool {
	return s.Status == StatusTrial
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// IsTrialExpiredAt reports whether the trial window has passed at the given
// time. False when no trial window is set.
func (s *Subscription) IsTrialExpiredAt(now time.Time) bool {
	if s.TrialEndsAt == nil {
		return false
	}
	return now.After(*s.TrialEndsAt)
}

// TrialDaysRemainingAt returns the whole days left in the trial window at
// the given time, rounded up, floored at zero. Zero when not on trial.
func (s *Subscription) TrialDaysRemainingAt(now time.Time) int {
	if !s.IsTrial() || s.TrialEndsAt == nil {
		return 0
	}
	remaining := s.TrialEndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// Clone returns a copy with the pointer fields duplicated, so store
// implementations can hand out records without sharing mutable state.
func (s *Subscription) Clone() *Subscription {
	cp := *s
	cp.TrialStartsAt = cloneTime(s.TrialStartsAt)
	cp.TrialEndsAt = cloneTime(s.TrialEndsAt)
	cp.CurrentPeriodStart = cloneTime(s.CurrentPeriodStart)
	cp.CurrentPeriodEnd = cloneTime(s.CurrentPeriodEnd)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// TrialInfo is the derived, never-persisted view of a tenant's trial state.
// Recomputed from the Subscription on every query.
type TrialInfo struct {
	IsOnTrial          bool       `json:"isOnTrial"`
	TrialDaysRemaining int        `json:"trialDaysRemaining"`
	TrialEndsAt        *time.Time `json:"trialEndsAt"`
	HasTrialExpired    bool       `json:"hasTrialExpired"`
	CanAccessFeatures  bool       `json:"canAccessFeatures"`
}
