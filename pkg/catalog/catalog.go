package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Source defines how plans are loaded into a Catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is an immutable lookup over validated plans.
// Safe for concurrent use without locking: the plan map is never
// modified after construction.
type Catalog struct {
	plans      map[string]Plan
	freePlanID string
}

// New loads plans from the given Source and validates them.
// At most one plan may be marked as free; it becomes the fallback plan
// for accounts without an active paid purchase.
func New(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("catalog: Source is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if plans == nil {
		plans = make(map[string]Plan)
	}

	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	c := &Catalog{plans: plans}
	for id, plan := range plans {
		if plan.IsFree {
			c.freePlanID = id
			break
		}
	}

	return c, nil
}

// Get returns the plan with the given ID.
func (c *Catalog) Get(planID string) (Plan, bool) {
	plan, ok := c.plans[planID]
	return plan, ok
}

// MustGet returns the plan with the given ID or an error if it does not exist.
func (c *Catalog) MustGet(planID string) (Plan, error) {
	plan, ok := c.plans[planID]
	if !ok {
		return Plan{}, errors.Join(ErrPlanNotFound, fmt.Errorf("plan id %q", planID))
	}
	return plan, nil
}

// FreePlan returns the catalog's free plan, or nil if none is configured.
func (c *Catalog) FreePlan() *Plan {
	if c.freePlanID == "" {
		return nil
	}
	plan := c.plans[c.freePlanID]
	return &plan
}

// Len returns the number of plans in the catalog.
func (c *Catalog) Len() int {
	return len(c.plans)
}

// validatePlans checks plan configurations for validity.
func validatePlans(plans map[string]Plan) error {
	freeCount := 0
	for id, plan := range plans {
		if id == "" || plan.ID == "" {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan with empty id (map key %q)", id))
		}
		if plan.ID != id {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %q keyed under %q", plan.ID, id))
		}
		if plan.MonthlyCredits < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative monthly credits: %d", id, plan.MonthlyCredits))
		}
		if plan.IsFree {
			freeCount++
		}
	}
	if freeCount > 1 {
		return ErrDuplicateFreePlan
	}
	return nil
}
