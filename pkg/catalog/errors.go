package catalog

import "errors"

var (
	ErrPlanNotFound             = errors.New("plan not found in catalog")
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
	ErrDuplicateFreePlan        = errors.New("catalog defines more than one free plan")
	ErrFailedToLoadPlans        = errors.New("failed to load plan catalog")
)
