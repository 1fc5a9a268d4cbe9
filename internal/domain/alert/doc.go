// Package alert implements the alerting core: a two-state machine that
// turns the per-frame presence signal into discrete presence episodes,
// emitting exactly one event per episode and suppressing duplicates
// through a cooldown grace period.
package alert
