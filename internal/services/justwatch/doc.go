// Package justwatch queries streaming availability through the JustWatch
// GraphQL API. Searches are exact-match and limited to the single best
// result; every failure mode is surfaced as an explicit outcome so the
// reconciliation engine can apply its fail-open policy.
package justwatch
