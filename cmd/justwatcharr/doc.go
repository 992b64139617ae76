// Command justwatcharr reconciles Radarr and Sonarr libraries against
// JustWatch streaming availability: items streamable on an approved
// service are unmonitored and purged, items no longer streamable are put
// back under monitoring.
package main
