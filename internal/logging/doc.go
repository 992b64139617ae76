// Package logging constructs the application slog logger with console and
// JSON handlers, plus helpers for stamping run-scoped fields (run ID,
// library kind, item title) pulled from context.
package logging
