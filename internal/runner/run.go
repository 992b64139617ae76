package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"justwatcharr/internal/config"
	"justwatcharr/internal/logging"
	"justwatcharr/internal/notifications"
	"justwatcharr/internal/reconcile"
	"justwatcharr/internal/services"
	"justwatcharr/internal/services/justwatch"
	"justwatcharr/internal/services/radarr"
	"justwatcharr/internal/services/sonarr"
)

// ErrAlreadyRunning reports that another reconciliation run holds the lock.
var ErrAlreadyRunning = errors.New("another reconciliation run is already in progress")

// Summary is the aggregate outcome of one reconciliation run.
type Summary struct {
	RunID     string
	Libraries []reconcile.Stats
	Elapsed   time.Duration
}

// Totals folds the per-library stats into one value.
func (s Summary) Totals() reconcile.Stats {
	total := reconcile.Stats{Kind: "total"}
	for _, stats := range s.Libraries {
		total.Add(stats)
	}
	return total
}

// Runner wires the configured libraries, the availability lookup, and the
// notifier into reconciliation passes. Construct it once per invocation.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	lookup    reconcile.AvailabilityLookup
	notifier  notifications.Service
	libraries []reconcile.Library

	lockPath string
}

// New builds a runner from configuration. Libraries without connection
// settings are left out; at least one must be configured. The notifier is
// probed here so credential trouble surfaces before any mutation.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	jwClient, err := justwatch.New(cfg.JustWatch.BaseURL, cfg.JustWatch.Language,
		justwatch.WithTimeout(time.Duration(cfg.JustWatch.RequestTimeout)*time.Second))
	if err != nil {
		return nil, fmt.Errorf("justwatch client: %w", err)
	}

	var libraries []reconcile.Library
	if cfg.Radarr.URL != "" {
		client, err := radarr.New(cfg.Radarr.URL, cfg.Radarr.APIKey)
		if err != nil {
			return nil, fmt.Errorf("radarr client: %w", err)
		}
		libraries = append(libraries, radarr.NewLibrary(client, logger))
	}
	if cfg.Sonarr.URL != "" {
		client, err := sonarr.New(cfg.Sonarr.URL, cfg.Sonarr.APIKey)
		if err != nil {
			return nil, fmt.Errorf("sonarr client: %w", err)
		}
		libraries = append(libraries, sonarr.NewLibrary(client, logger))
	}
	if len(libraries) == 0 {
		return nil, errors.New("no libraries configured: set radarr and/or sonarr connection settings")
	}

	return &Runner{
		cfg:       cfg,
		logger:    logger,
		lookup:    justwatch.NewLookup(jwClient),
		notifier:  notifications.NewService(ctx, cfg, logger),
		libraries: libraries,
		lockPath:  cfg.LockFilePath(),
	}, nil
}

// Run executes one reconciliation pass over every configured library. A
// second concurrent invocation fails fast with ErrAlreadyRunning. A failed
// library list fetch is logged and counted but does not stop the other
// libraries from reconciling.
func (r *Runner) Run(ctx context.Context, dryRun bool) (*Summary, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("prepare directories: %w", err)
	}

	lock := flock.New(r.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("release run lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	start := time.Now()
	logger.Info("reconciliation run starting",
		logging.Int("libraries", len(r.libraries)),
		logging.Bool("dry_run", dryRun))

	engine := reconcile.NewEngine(r.lookup, r.notifier, r.logger, r.policy(dryRun))
	summary := &Summary{RunID: runID}
	for _, lib := range r.libraries {
		stats, err := engine.ReconcileLibrary(ctx, lib)
		if err != nil {
			logger.Error("library pass aborted",
				logging.String(logging.FieldLibrary, lib.Kind()),
				logging.Error(err))
		}
		summary.Libraries = append(summary.Libraries, stats)
	}
	summary.Elapsed = time.Since(start)

	totals := summary.Totals()
	logger.Info("reconciliation run finished",
		logging.Int("checked", totals.Checked),
		logging.Int("skipped", totals.Skipped),
		logging.Int("demoted", totals.Demoted),
		logging.Int("promoted", totals.Promoted),
		logging.Int("errors", totals.Errors),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func (r *Runner) policy(dryRun bool) reconcile.Policy {
	return reconcile.Policy{
		Providers:     r.cfg.JustWatch.Providers,
		Monetizations: r.cfg.JustWatch.ContentTypes,
		Region:        r.cfg.JustWatch.Region,
		PromoteRegion: r.cfg.JustWatch.PromoteRegion,
		ExcludeTag:    r.cfg.Reconcile.ExcludeTag,
		DeleteFiles:   r.cfg.Reconcile.DeleteFiles,
		DryRun:        dryRun,
	}
}
