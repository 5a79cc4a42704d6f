package usage

import "errors"

var (
	ErrNotFound      = errors.New("usage metrics not found for period")
	ErrUnknownMetric = errors.New("unknown usage metric")
	ErrNegativeDelta = errors.New("usage counters never decrement")
)
