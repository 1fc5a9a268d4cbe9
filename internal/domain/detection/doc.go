// Package detection holds the detection domain model shared between the
// detector collaborator and the alerting core, plus the per-frame presence
// classifier that reduces a detection list to a boolean signal.
package detection
