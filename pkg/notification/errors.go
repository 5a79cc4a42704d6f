package notification

import "errors"

var (
	ErrMarkerStoreFailed = errors.New("failed to access notification markers")
	ErrNoRecipient       = errors.New("no recipient found for tenant")
)
