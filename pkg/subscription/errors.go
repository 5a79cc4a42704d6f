package subscription

import "errors"

var (
	ErrNotFound      = errors.New("subscription not found")
	ErrInvalidRecord = errors.New("invalid subscription record")

	// ErrFreePlanMissing means the reserved Free plan is absent from the
	// catalog. Trial start and expiry refuse to proceed without it because
	// writing a subscription with a dangling plan reference would corrupt
	// state.
	ErrFreePlanMissing = errors.New("free plan is not configured")
)
