// Package runner orchestrates a full reconciliation invocation: it holds
// the single-run lock, stamps a run identifier into context, builds the
// library clients from configuration, and drives one engine pass per
// configured library.
package runner
