// Package reconcile implements the per-item decision engine at the heart
// of justwatcharr.
//
// Every pass re-derives decisions from current remote state: items that
// became streamable on an approved service are unmonitored and purged,
// items streamable nowhere approved are re-monitored, and everything else
// is left alone. Availability lookups fail open toward ownership, so a
// lost lookup never costs access to content.
package reconcile
