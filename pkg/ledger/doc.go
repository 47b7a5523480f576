// Package ledger tracks per-account credit usage for the entitlement
// engine. Each account carries three fields of mutable state: the total
// allotment for the current cycle, the amount consumed, and the timestamp
// of the last reset.
//
// Correctness rests on one rule: the ledger row is only ever mutated
// through atomic conditional updates ("increment used by N only if the
// result stays within total"), never through read-then-write sequences.
// Every Store implementation expresses deduction and reset as a single
// conditional operation in its backend, so concurrent deductions that
// would jointly overdraw can never both succeed, and concurrent lazy
// resets can never double-reset.
//
// Stores are provided for PostgreSQL (pgx), Redis (Lua scripts), MongoDB
// ($expr conditional updates) and process memory (tests, development).
//
// The Service wraps a Store with balance math, invariant repair (a row
// with used > total is clamped to zero availability and flagged, never
// surfaced as negative) and the lazy per-access cycle reset.
package ledger
