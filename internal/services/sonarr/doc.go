// Package sonarr is a thin client for the Sonarr v3 API covering the
// operations reconciliation needs: series listing with season statistics,
// tag label resolution, episode file records, and monitored-flag mutation.
package sonarr
