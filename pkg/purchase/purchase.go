package purchase

import (
	"time"

	"github.com/google/uuid"
)

// Type is a closed set of purchase kinds. Resolver logic switches
// exhaustively over it; adding a variant requires revisiting every switch.
type Type string

const (
	TypeSubscription Type = "subscription"
	TypeOneTime      Type = "one_time"
)

// Valid reports whether t is a known purchase type.
func (t Type) Valid() bool {
	switch t {
	case TypeSubscription, TypeOneTime:
		return true
	}
	return false
}

// Status represents the billing state of a purchase. Status semantics are
// type-dependent: a canceled subscription keeps granting its plan until it
// expires, while one-time purchases never expire on their own.
type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Purchase is a record of a commercial transaction tied to exactly one
// account. Read-only to this engine.
type Purchase struct {
	ID             string
	AccountID      uuid.UUID
	Type           Type
	PlanID         string
	Status         Status
	SubscriptionID string // provider's subscription ID, set only for subscriptions
	CreatedAt      time.Time
}

// grantsPlan reports whether the purchase still entitles the account to
// its plan.
func (p Purchase) grantsPlan() bool {
	switch p.Type {
	case TypeSubscription:
		// Canceled subscriptions remain paid-up until the provider marks
		// them expired at the end of the billing period.
		return p.Status != StatusExpired
	case TypeOneTime:
		return p.Status == StatusActive
	}
	return false
}
