// Package catalog provides the static plan catalog for the credit
// entitlement engine. A catalog maps plan identifiers to their monthly
// credit allotment and pricing metadata.
//
// The catalog is deployment-time configuration: it is loaded once at
// startup from a Source (in-memory map or YAML file), validated, and
// treated as immutable afterwards. No locking is required at runtime.
//
// Basic usage:
//
//	plans := map[string]catalog.Plan{
//	    "free": {
//	        ID:             "free",
//	        Name:           "Free",
//	        IsFree:         true,
//	        MonthlyCredits: 100,
//	    },
//	    "pro": {
//	        ID:             "pro",
//	        Name:           "Pro",
//	        MonthlyCredits: 5000,
//	        Price:          catalog.Money{Amount: 1500, Currency: "USD"},
//	        Interval:       catalog.BillingIntervalMonthly,
//	    },
//	}
//
//	cat, err := catalog.New(ctx, catalog.NewInMemSource(plans))
//	if err != nil {
//	    // handle error
//	}
//
//	plan, ok := cat.Get("pro")
//	free := cat.FreePlan() // nil if no free plan is configured
package catalog
