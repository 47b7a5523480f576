// Package sweep implements the monthly batch reset of all credit
// ledgers. An external scheduler (cron or the bundled CLI) triggers
// RunMonthlySweep once per billing period; the sweep itself only exposes
// the operation and its outcome report.
//
// Per-account failures are isolated and counted, never aborting the
// batch. Accounts are processed in parallel under a configurable
// concurrency bound, each with its own timeout, so one slow storage call
// cannot stall the rest. Running the sweep twice in the same period is
// harmless: every account simply ends up reset to its plan's current
// quota again.
package sweep
