package runner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"justwatcharr/internal/config"
	"justwatcharr/internal/logging"
	"justwatcharr/internal/reconcile"
)

type stubLibrary struct {
	kind    string
	items   []reconcile.Item
	listErr error
	calls   int
}

func (s *stubLibrary) Kind() string   { return s.kind }
func (s *stubLibrary) Origin() string { return s.kind }

func (s *stubLibrary) Items(ctx context.Context) ([]reconcile.Item, error) {
	s.calls++
	return s.items, s.listErr
}

func (s *stubLibrary) SetMonitored(ctx context.Context, item reconcile.Item, monitored bool) error {
	return nil
}

func (s *stubLibrary) DeleteFiles(ctx context.Context, item reconcile.Item) (int, error) {
	return 0, nil
}

type stubLookup struct{}

func (stubLookup) Search(ctx context.Context, title, region string) reconcile.LookupResult {
	return reconcile.NotFound()
}

func testRunner(t *testing.T, libraries ...reconcile.Library) *Runner {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	return &Runner{
		cfg:       &cfg,
		logger:    logging.NewNop(),
		lookup:    stubLookup{},
		libraries: libraries,
		lockPath:  filepath.Join(cfg.Paths.LogDir, "justwatcharr.lock"),
	}
}

func TestRunReconcilesEveryLibrary(t *testing.T) {
	movies := &stubLibrary{kind: "movie", items: []reconcile.Item{
		{ID: 1, Title: "Alpha", Released: true, Monitored: true},
	}}
	series := &stubLibrary{kind: "series", items: []reconcile.Item{
		{ID: 1, Title: "Beta", Released: true, Monitored: true},
		{ID: 2, Title: "Gamma"},
	}}
	runner := testRunner(t, movies, series)

	summary, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" {
		t.Error("missing run id")
	}
	if len(summary.Libraries) != 2 {
		t.Fatalf("libraries = %d, want 2", len(summary.Libraries))
	}
	totals := summary.Totals()
	if totals.Checked != 3 || totals.Skipped != 1 {
		t.Fatalf("totals = %+v", totals)
	}
	if movies.calls != 1 || series.calls != 1 {
		t.Fatalf("library passes = %d/%d, want 1/1", movies.calls, series.calls)
	}
}

func TestRunContinuesPastFailedLibraryPass(t *testing.T) {
	movies := &stubLibrary{kind: "movie", listErr: errors.New("radarr down")}
	series := &stubLibrary{kind: "series", items: []reconcile.Item{
		{ID: 1, Title: "Beta", Released: true, Monitored: true},
	}}
	runner := testRunner(t, movies, series)

	summary, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if series.calls != 1 {
		t.Fatal("series pass skipped after movie pass failure")
	}
	totals := summary.Totals()
	if totals.Errors != 1 || totals.Checked != 1 {
		t.Fatalf("totals = %+v", totals)
	}
}

func TestRunRefusesConcurrentInvocation(t *testing.T) {
	runner := testRunner(t, &stubLibrary{kind: "movie"})

	held := flock.New(runner.lockPath)
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	if _, err := runner.Run(context.Background(), false); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("err = %v, want ErrAlreadyRunning", err)
	}
}

func TestNewRequiresAtLeastOneLibrary(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	if _, err := New(context.Background(), &cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error when no libraries are configured")
	}
}
