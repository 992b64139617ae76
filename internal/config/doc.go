// Package config loads, normalizes, and validates justwatcharr settings.
//
// Configuration lives in a TOML file (see sample_config.toml) with
// environment-variable fallbacks for secrets. Load applies defaults for
// every optional field; the only hard requirement is the JustWatch
// provider allow-list, without which no reconciliation decision can be
// made.
package config
