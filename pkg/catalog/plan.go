package catalog

// Money represents a monetary amount in the smallest currency unit.
// For example, $10.99 USD would be Amount: 1099, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`   // Amount in smallest currency unit (cents for USD)
	Currency string `yaml:"currency"` // ISO 4217 currency code
}

// BillingInterval represents the billing frequency for a plan.
type BillingInterval string

const (
	BillingIntervalNone    BillingInterval = "none" // Free plans with no billing
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// Plan describes a commercial plan and its monthly credit allotment.
// The ID field should be set to the payment provider's price ID for paid
// plans to enable direct mapping from purchase records.
type Plan struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	Description    string          `yaml:"description"`
	IsFree         bool            `yaml:"is_free"`
	MonthlyCredits int64           `yaml:"monthly_credits"`
	Price          Money           `yaml:"price"`
	Interval       BillingInterval `yaml:"interval"`
	Public         bool            `yaml:"public"` // available for self-service signup
}
