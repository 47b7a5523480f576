package purchase

import (
	"github.com/dmitrymomot/entitlements/pkg/catalog"
)

// Resolution is the outcome of resolving an account's purchase list.
type Resolution struct {
	// ActivePlan is the plan currently governing the account's quota.
	// Nil only when no purchase qualifies and the catalog has no free plan.
	ActivePlan *catalog.Plan

	// HasSubscription reports whether any non-expired subscription exists.
	HasSubscription bool

	// HasPurchase reports whether the account holds any purchase record
	// at all, including canceled and expired ones.
	HasPurchase bool
}

// ResolveActivePlan determines the single plan governing an account from
// its unordered purchase list. Pure function: no I/O, no clock access.
//
// Subscriptions beat one-time purchases; among several qualifying
// purchases of the same kind the most recently created wins, with equal
// timestamps broken by lexicographic ID. Purchases referencing plan IDs
// absent from the catalog are skipped rather than failing the resolution.
func ResolveActivePlan(purchases []Purchase, cat *catalog.Catalog) Resolution {
	res := Resolution{HasPurchase: len(purchases) > 0}

	var bestSub, bestOneTime *Purchase
	for i := range purchases {
		p := &purchases[i]
		if !p.grantsPlan() {
			continue
		}

		switch p.Type {
		case TypeSubscription:
			res.HasSubscription = true
			if _, ok := cat.Get(p.PlanID); !ok {
				continue
			}
			if preferred(p, bestSub) {
				bestSub = p
			}
		case TypeOneTime:
			if _, ok := cat.Get(p.PlanID); !ok {
				continue
			}
			if preferred(p, bestOneTime) {
				bestOneTime = p
			}
		}
	}

	winner := bestSub
	if winner == nil {
		winner = bestOneTime
	}

	if winner != nil {
		plan, _ := cat.Get(winner.PlanID)
		res.ActivePlan = &plan
		return res
	}

	res.ActivePlan = cat.FreePlan()
	return res
}

// preferred reports whether candidate should replace current under the
// most-recent-by-creation tie-break.
func preferred(candidate, current *Purchase) bool {
	if current == nil {
		return true
	}
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	return candidate.ID > current.ID
}
