// Package purchase defines purchase records and the active-plan resolver
// for the credit entitlement engine.
//
// Purchases are created and updated by an external billing collaborator;
// this package only reads them. The resolver is a pure function so it can
// be unit-tested exhaustively against purchase-list fixtures.
//
// Precedence policy: subscription purchases with a non-expired status take
// precedence over one-time purchases. When multiple subscriptions qualify
// (an anomalous state), the most recently created one wins; equal creation
// timestamps are broken by lexicographic purchase ID so the result is
// deterministic. Accounts with no qualifying paid purchase fall back to
// the catalog's free plan when one exists.
package purchase
