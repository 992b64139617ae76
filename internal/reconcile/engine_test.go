package reconcile

import (
	"context"
	"errors"
	"testing"

	"justwatcharr/internal/services"
)

type fakeLibrary struct {
	kind    string
	origin  string
	items   []Item
	listErr error

	monitorErr error
	deleteErr  error
	deleted    int

	calls []string
}

func (f *fakeLibrary) Kind() string   { return f.kind }
func (f *fakeLibrary) Origin() string { return f.origin }

func (f *fakeLibrary) Items(ctx context.Context) ([]Item, error) {
	return f.items, f.listErr
}

func (f *fakeLibrary) SetMonitored(ctx context.Context, item Item, monitored bool) error {
	if monitored {
		f.calls = append(f.calls, "monitor "+item.Title)
	} else {
		f.calls = append(f.calls, "unmonitor "+item.Title)
	}
	return f.monitorErr
}

func (f *fakeLibrary) DeleteFiles(ctx context.Context, item Item) (int, error) {
	f.calls = append(f.calls, "delete "+item.Title)
	return f.deleted, f.deleteErr
}

type fakeLookup struct {
	results map[string]LookupResult
	regions map[string]string
}

func (f *fakeLookup) Search(ctx context.Context, title, region string) LookupResult {
	if f.regions == nil {
		f.regions = make(map[string]string)
	}
	f.regions[title] = region
	return f.results[title]
}

type fakeNotifier struct {
	events []string
	err    error
}

func (f *fakeNotifier) NotifyAvailable(ctx context.Context, origin, title string, providers []string) error {
	f.events = append(f.events, "available "+title)
	return f.err
}

func (f *fakeNotifier) NotifyUnmonitored(ctx context.Context, origin, title string, filesDeleted int) error {
	f.events = append(f.events, "unmonitored "+title)
	return f.err
}

func (f *fakeNotifier) NotifyMonitoring(ctx context.Context, origin, title string) error {
	f.events = append(f.events, "monitoring "+title)
	return f.err
}

func testPolicy() Policy {
	return Policy{
		Providers:     []string{"Netflix", "Hulu"},
		Monetizations: []string{"FREE", "FLATRATE"},
		Region:        "US",
		PromoteRegion: "US",
		ExcludeTag:    "jw-exclude",
		DeleteFiles:   true,
	}
}

func TestReconcileDemotesStreamableMovie(t *testing.T) {
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr", deleted: 1,
		items: []Item{{ID: 1, Title: "Alpha", Released: true, Monitored: true, HasMedia: true}},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{
		"Alpha": Found([]Offer{{Provider: "Netflix", Monetization: "FLATRATE"}}),
	}}
	notifier := &fakeNotifier{}
	engine := NewEngine(lookup, notifier, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Demoted != 1 || stats.Checked != 1 || stats.Errors != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	// Flag first, then files, then the two messages.
	wantCalls := []string{"unmonitor Alpha", "delete Alpha"}
	if len(lib.calls) != 2 || lib.calls[0] != wantCalls[0] || lib.calls[1] != wantCalls[1] {
		t.Fatalf("calls = %v, want %v", lib.calls, wantCalls)
	}
	wantEvents := []string{"available Alpha", "unmonitored Alpha"}
	if len(notifier.events) != 2 || notifier.events[0] != wantEvents[0] || notifier.events[1] != wantEvents[1] {
		t.Fatalf("events = %v, want %v", notifier.events, wantEvents)
	}
}

func TestReconcilePromotesUnavailableMovie(t *testing.T) {
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		items: []Item{{ID: 1, Title: "Alpha", Released: true}},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{"Alpha": NotFound()}}
	notifier := &fakeNotifier{}
	engine := NewEngine(lookup, notifier, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Promoted != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(lib.calls) != 1 || lib.calls[0] != "monitor Alpha" {
		t.Fatalf("calls = %v", lib.calls)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "monitoring Alpha" {
		t.Fatalf("events = %v", notifier.events)
	}
}

func TestReconcileSeriesSeasonMismatchLeavesItemAlone(t *testing.T) {
	lib := &fakeLibrary{
		kind: "series", origin: "Sonarr",
		items: []Item{{ID: 1, Title: "Beta", Released: true, Monitored: true, IsSeries: true, Seasons: 2}},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{
		"Beta": Found([]Offer{{Provider: "Hulu", Monetization: "FLATRATE", Seasons: 1}}),
	}}
	engine := NewEngine(lookup, &fakeNotifier{}, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Demoted != 0 || len(lib.calls) != 0 {
		t.Fatalf("stats = %+v calls = %v, want untouched", stats, lib.calls)
	}
}

func TestReconcileExclusionGate(t *testing.T) {
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		items: []Item{
			{ID: 1, Title: "Unreleased", Monitored: true},
			{ID: 2, Title: "Tagged", Released: true, Monitored: true, Tags: []string{"jw-exclude"}},
		},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{}}
	engine := NewEngine(lookup, &fakeNotifier{}, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Skipped != 2 || stats.Checked != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(lookup.regions) != 0 {
		t.Fatalf("excluded items were looked up: %v", lookup.regions)
	}
}

func TestReconcileUsesPromoteRegionForUnownedItems(t *testing.T) {
	policy := testPolicy()
	policy.Region = "US"
	policy.PromoteRegion = "GB"
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		items: []Item{
			{ID: 1, Title: "Owned", Released: true, Monitored: true},
			{ID: 2, Title: "Wanted", Released: true},
		},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{
		"Owned":  NotFound(),
		"Wanted": Found([]Offer{{Provider: "Netflix", Monetization: "FLATRATE"}}),
	}}
	engine := NewEngine(lookup, &fakeNotifier{}, nil, policy)

	if _, err := engine.ReconcileLibrary(context.Background(), lib); err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if lookup.regions["Owned"] != "US" {
		t.Errorf("acquired lookup region = %q, want US", lookup.regions["Owned"])
	}
	if lookup.regions["Wanted"] != "GB" {
		t.Errorf("promote lookup region = %q, want GB", lookup.regions["Wanted"])
	}
}

func TestReconcileMonitorFailureCountsErrorAndSkipsNotify(t *testing.T) {
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		monitorErr: errors.New("radarr down"),
		items:      []Item{{ID: 1, Title: "Alpha", Released: true, Monitored: true}},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{
		"Alpha": Found([]Offer{{Provider: "Netflix", Monetization: "FLATRATE"}}),
	}}
	notifier := &fakeNotifier{}
	engine := NewEngine(lookup, notifier, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Errors != 1 || stats.Demoted != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("events = %v, want none after failed mutation", notifier.events)
	}
	// The purge must not run once the flag flip has failed.
	if len(lib.calls) != 1 || lib.calls[0] != "unmonitor Alpha" {
		t.Fatalf("calls = %v", lib.calls)
	}
}

func TestReconcilePurgeFailureStillNotifies(t *testing.T) {
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		deleteErr: errors.New("delete failed"), deleted: 1,
		items: []Item{{ID: 1, Title: "Alpha", Released: true, Monitored: true, HasMedia: true}},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{
		"Alpha": Found([]Offer{{Provider: "Netflix", Monetization: "FLATRATE"}}),
	}}
	notifier := &fakeNotifier{}
	engine := NewEngine(lookup, notifier, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Demoted != 1 || stats.Errors != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(notifier.events) != 2 {
		t.Fatalf("events = %v, want both messages despite purge failure", notifier.events)
	}
}

func TestReconcileConfigurationLookupFailureCountsError(t *testing.T) {
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		items: []Item{{ID: 1, Title: "Alpha", Released: true}},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{
		"Alpha": Failed(services.Wrap(services.ErrConfiguration, "justwatch", "search", "", nil)),
	}}
	engine := NewEngine(lookup, &fakeNotifier{}, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Errors != 1 || stats.Promoted != 0 {
		t.Fatalf("stats = %+v, want the item counted as an error without promotion", stats)
	}
	if len(lib.calls) != 0 {
		t.Fatalf("calls = %v, want none", lib.calls)
	}
}

func TestReconcileNotifierFailureIsNotFatal(t *testing.T) {
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		items: []Item{{ID: 1, Title: "Alpha", Released: true}},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{"Alpha": NotFound()}}
	notifier := &fakeNotifier{err: errors.New("discord down")}
	engine := NewEngine(lookup, notifier, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Promoted != 1 || stats.Errors != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestReconcileDryRunCountsWithoutMutating(t *testing.T) {
	policy := testPolicy()
	policy.DryRun = true
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		items: []Item{
			{ID: 1, Title: "Alpha", Released: true, Monitored: true},
			{ID: 2, Title: "Gamma", Released: true},
		},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{
		"Alpha": Found([]Offer{{Provider: "Netflix", Monetization: "FLATRATE"}}),
		"Gamma": NotFound(),
	}}
	notifier := &fakeNotifier{}
	engine := NewEngine(lookup, notifier, nil, policy)

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if stats.Demoted != 1 || stats.Promoted != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(lib.calls) != 0 || len(notifier.events) != 0 {
		t.Fatalf("dry run mutated: calls = %v events = %v", lib.calls, notifier.events)
	}
}

func TestReconcileDeleteFilesDisabled(t *testing.T) {
	policy := testPolicy()
	policy.DeleteFiles = false
	lib := &fakeLibrary{
		kind: "movie", origin: "Radarr",
		items: []Item{{ID: 1, Title: "Alpha", Released: true, Monitored: true}},
	}
	lookup := &fakeLookup{results: map[string]LookupResult{
		"Alpha": Found([]Offer{{Provider: "Netflix", Monetization: "FLATRATE"}}),
	}}
	engine := NewEngine(lookup, &fakeNotifier{}, nil, policy)

	if _, err := engine.ReconcileLibrary(context.Background(), lib); err != nil {
		t.Fatalf("ReconcileLibrary: %v", err)
	}
	if len(lib.calls) != 1 || lib.calls[0] != "unmonitor Alpha" {
		t.Fatalf("calls = %v, want unmonitor only", lib.calls)
	}
}

func TestReconcileListFailureAbortsPass(t *testing.T) {
	lib := &fakeLibrary{kind: "movie", origin: "Radarr", listErr: errors.New("radarr down")}
	engine := NewEngine(&fakeLookup{}, &fakeNotifier{}, nil, testPolicy())

	stats, err := engine.ReconcileLibrary(context.Background(), lib)
	if err == nil {
		t.Fatal("expected error")
	}
	if stats.Errors != 1 || stats.Checked != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestStatsAdd(t *testing.T) {
	total := Stats{Checked: 1, Skipped: 1}
	total.Add(Stats{Checked: 2, Demoted: 1, Promoted: 1, Errors: 1})
	if total.Checked != 3 || total.Skipped != 1 || total.Demoted != 1 || total.Promoted != 1 || total.Errors != 1 {
		t.Fatalf("total = %+v", total)
	}
}
