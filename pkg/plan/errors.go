package plan

import "errors"

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrInvalidPlan     = errors.New("invalid plan configuration")
	ErrInvalidLimit    = errors.New("invalid plan limit value")
	ErrDuplicatePlan   = errors.New("duplicate plan in catalog")
	ErrEmptyCatalog    = errors.New("plan catalog is empty")
	ErrFreePlanMissing = errors.New("free plan is not configured")

	ErrFailedToLoadCatalog = errors.New("failed to load plan catalog")
)
