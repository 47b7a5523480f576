// Package redis provides the Redis connection helper for the entitlement
// engine. The ledger's Redis-backed store and the facade's plan cache
// share a client created here.
package redis
