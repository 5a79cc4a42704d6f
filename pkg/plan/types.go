package plan

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Resource identifies a countable tenant resource governed by plan limits.
// The values double as the keys of the persisted limits document, so they
// must stay stable across plan catalog revisions.
type Resource string

const (
	ResourceContacts        Resource = "contacts"
	ResourceMonthlyMessages Resource = "monthlyMessages"
	ResourceUsers           Resource = "users"
	ResourceGroups          Resource = "groups"
	ResourceImages          Resource = "images"
	ResourceAutomations     Resource = "automations"
	ResourceAPIRequests     Resource = "apiRequests"
)

// Unlimited marks a resource with no cap. Serialized as the string
// "unlimited" in the limits document for readability.
const Unlimited Limit = -1

// Limit is a resource cap: a non-negative count or the Unlimited sentinel.
type Limit int64

// IsUnlimited reports whether the limit is the unlimited sentinel.
func (l Limit) IsUnlimited() bool {
	return l == Unlimited
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if l.IsUnlimited() {
		return json.Marshal("unlimited")
	}
	return json.Marshal(int64(l))
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "unlimited" {
			return fmt.Errorf("%w: unknown limit sentinel %q", ErrInvalidLimit, s)
		}
		*l = Unlimited
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLimit, err)
	}
	if n < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidLimit, n)
	}
	*l = Limit(n)
	return nil
}

func (l Limit) MarshalYAML() (any, error) {
	if l.IsUnlimited() {
		return "unlimited", nil
	}
	return int64(l), nil
}

func (l *Limit) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		if s != "unlimited" {
			return fmt.Errorf("%w: unknown limit sentinel %q", ErrInvalidLimit, s)
		}
		*l = Unlimited
		return nil
	}

	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLimit, err)
	}
	if n < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidLimit, n)
	}
	*l = Limit(n)
	return nil
}

// Limits is the per-resource cap document stored on a plan.
// A resource absent from the document is treated as uncapped by the
// enforcement layer, matching how historical plan documents behaved.
type Limits map[Resource]Limit

// Get returns the limit for a resource and whether one is defined.
func (ls Limits) Get(res Resource) (Limit, bool) {
	l, ok := ls[res]
	return l, ok
}

// Money is a monetary amount in the smallest currency unit
// (e.g. BRL 29.00 is Amount: 2900, Currency: "BRL").
type Money struct {
	Amount   int64  `json:"amount" yaml:"amount"`
	Currency string `json:"currency" yaml:"currency"`
}

// BillingInterval is the recurring billing frequency of a plan.
type BillingInterval string

const (
	IntervalNone    BillingInterval = "none" // free plans with no recurring billing
	IntervalMonthly BillingInterval = "monthly"
	IntervalAnnual  BillingInterval = "annual"
)
