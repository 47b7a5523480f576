// Package entitlement is the composed API surface of the credit engine:
// it decides whether a metered action may proceed and consumes credits
// when it does. External callers should use this package rather than its
// parts; CheckAndConsume composes lazy-reset-then-deduct so the pair is
// always observed as one logical step per call.
//
// Per call the purchase list is loaded at most once: the lazy reset and
// the plan lookup for display share a memoized resolution. An optional
// Redis-backed cache can keep the resolved plan warm across calls when
// the purchase source is a remote billing API.
//
//	svc := entitlement.New(ledgerSvc, purchaseSrc, cat)
//
//	decision, err := svc.CheckAndConsume(ctx, accountID, cost)
//	if err != nil {
//	    // storage failure or unknown account
//	}
//	if decision.Denied() {
//	    // render upgrade/wait prompt from decision.Balance
//	}
package entitlement
