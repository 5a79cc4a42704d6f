package subscription

// Status is the lifecycle state of a tenant's subscription.
//
// TRIAL is entered at most once per tenant (IsTrialUsed gates re-entry at
// the call sites); an expired trial converges with an active Free-tier
// subscription rather than getting a terminal state of its own.
type Status string

const (
	StatusTrial      Status = "TRIAL"
	StatusActive     Status = "ACTIVE"
	StatusCancelled  Status = "CANCELLED"
	StatusPastDue    Status = "PAST_DUE"
	StatusIncomplete Status = "INCOMPLETE"
	StatusUnpaid     Status = "UNPAID"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusTrial, StatusActive, StatusCancelled, StatusPastDue, StatusIncomplete, StatusUnpaid:
		return true
	}
	return false
}

// TrialDays is the fixed length of the once-per-tenant trial window.
const TrialDays = 7
