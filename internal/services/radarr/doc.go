// Package radarr is a thin client for the Radarr v3 API covering the
// operations reconciliation needs: movie listing, tag label resolution,
// file records, and monitored-flag mutation.
package radarr
