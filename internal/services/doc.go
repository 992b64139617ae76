// Package services defines shared utilities consumed by the service
// clients and the reconciliation engine.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, library kinds, and item titles
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     as recoverable (degrade to an empty result, keep going) or fatal
//     (configuration problems surfaced before any processing).
package services
