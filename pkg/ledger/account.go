package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Account is the per-account ledger row. An account is a single billing
// subject: either a user or a workspace, never both.
type Account struct {
	ID             uuid.UUID
	Credits        int64      // total allotment for the current cycle
	CreditsUsed    int64      // consumed this cycle
	CreditsResetAt *time.Time // nil if never reset
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Balance is the read-model of an account's ledger state.
type Balance struct {
	Available int64 `json:"available"`
	Total     int64 `json:"total"`
	Used      int64 `json:"used"`

	// Flagged is set when used > total was observed at read time. The
	// available amount is clamped to zero and the row needs operator
	// repair; callers must never see negative availability.
	Flagged bool `json:"flagged,omitempty"`
}

// BalanceOf derives a Balance from an account row, clamping availability
// at zero and flagging invariant violations.
func BalanceOf(acc *Account) Balance {
	b := Balance{
		Total: acc.Credits,
		Used:  acc.CreditsUsed,
	}
	if acc.CreditsUsed > acc.Credits {
		b.Flagged = true
		return b
	}
	b.Available = acc.Credits - acc.CreditsUsed
	return b
}

// CycleElapsedAt reports whether the account's billing cycle has elapsed
// at the given time. A never-reset account always qualifies.
func (a *Account) CycleElapsedAt(now time.Time, cycle time.Duration) bool {
	if a.CreditsResetAt == nil {
		return true
	}
	return now.Sub(*a.CreditsResetAt) > cycle
}
