package reconcile

import "context"

// Item is the engine's transient view of one library entry. Libraries build
// it fresh each pass; nothing here outlives the pass.
type Item struct {
	ID    int64
	Title string
	// Released reports whether the item is past its availability gate:
	// a movie with released status, or a series whose first episode has
	// aired. Unreleased items are skipped without a decision.
	Released  bool
	Monitored bool
	// HasMedia is the readiness indicator: at least one local movie file,
	// or a non-zero delivered-episode count for a series.
	HasMedia bool
	// IsSeries marks items that carry a unit count. Series compare offer
	// unit counts against Seasons even when that count is zero; movies
	// never compare unit counts.
	IsSeries bool
	// Seasons is the non-special season count for series items.
	Seasons int
	Tags    []string
}

// HasTag reports whether the item carries the given tag label.
func (i Item) HasTag(label string) bool {
	for _, tag := range i.Tags {
		if tag == label {
			return true
		}
	}
	return false
}

// Acquired reports whether the item is on the already-acquired branch of
// the decision machine: monitored, or media already present locally.
func (i Item) Acquired() bool {
	return i.Monitored || i.HasMedia
}

// Library is the engine's view of one library backend. Implementations
// wrap the Radarr and Sonarr clients.
type Library interface {
	// Kind names the library for logs and stats ("movie" or "series").
	Kind() string
	// Origin is the label stamped on notifications ("Radarr" or "Sonarr").
	Origin() string
	// Items returns the full library as reconciliation items.
	Items(ctx context.Context) ([]Item, error)
	// SetMonitored mutates only the item's monitored flag.
	SetMonitored(ctx context.Context, item Item, monitored bool) error
	// DeleteFiles purges the item's local file records, returning how many
	// were removed.
	DeleteFiles(ctx context.Context, item Item) (int, error)
}

// Notifier delivers human-readable events to the operator channel. The
// engine treats delivery failures as log-worthy, never fatal.
type Notifier interface {
	NotifyAvailable(ctx context.Context, origin, title string, providers []string) error
	NotifyUnmonitored(ctx context.Context, origin, title string, filesDeleted int) error
	NotifyMonitoring(ctx context.Context, origin, title string) error
}
