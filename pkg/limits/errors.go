package limits

import "errors"

var (
	ErrFailedToCountUsage = errors.New("failed to count resource usage")
)
