package entitlement

import (
	"github.com/dmitrymomot/entitlements/pkg/catalog"
	"github.com/dmitrymomot/entitlements/pkg/ledger"
)

// Status is the outcome of a consumption attempt.
type Status string

const (
	StatusOK     Status = "ok"
	StatusDenied Status = "denied"
)

// Denial reasons surfaced to callers.
const (
	ReasonInsufficientCredits = "insufficient_credits"
)

// Decision is the result of CheckAndConsume. Denials always carry the
// full balance so callers can render an upgrade or wait prompt.
type Decision struct {
	Status  Status         `json:"status"`
	Reason  string         `json:"reason,omitempty"`
	Balance ledger.Balance `json:"balance"`

	// Plan and HasSubscription describe the governing plan for display
	// and telemetry; they play no part in the deduction itself.
	Plan            *catalog.Plan `json:"plan,omitempty"`
	HasSubscription bool          `json:"has_subscription"`
}

// Denied reports whether the consumption was refused.
func (d Decision) Denied() bool {
	return d.Status == StatusDenied
}
