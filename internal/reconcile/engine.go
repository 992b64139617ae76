package reconcile

import (
	"context"
	"log/slog"
	"strings"

	"justwatcharr/internal/logging"
	"justwatcharr/internal/services"
)

// Policy carries the configuration the engine applies to every item.
type Policy struct {
	// Providers and Monetizations are the offer allow-lists.
	Providers     []string
	Monetizations []string
	// Region is used for lookups on the already-acquired branch.
	Region string
	// PromoteRegion is used for lookups on the not-yet-acquired branch.
	PromoteRegion string
	// ExcludeTag removes items from reconciliation entirely.
	ExcludeTag string
	// DeleteFiles controls whether demotion purges local files.
	DeleteFiles bool
	// DryRun evaluates decisions without mutating or notifying.
	DryRun bool
}

// Stats aggregates the outcomes of one library pass.
type Stats struct {
	Kind     string
	Checked  int
	Skipped  int
	Demoted  int
	Promoted int
	Errors   int
}

// Add merges another stats value into this one.
func (s *Stats) Add(other Stats) {
	s.Checked += other.Checked
	s.Skipped += other.Skipped
	s.Demoted += other.Demoted
	s.Promoted += other.Promoted
	s.Errors += other.Errors
}

// Engine evaluates the reconciliation state machine for every item in a
// library, issuing at most one library mutation per item. Items are
// processed strictly sequentially; no state crosses items except stats.
type Engine struct {
	lookup   AvailabilityLookup
	notifier Notifier
	logger   *slog.Logger
	policy   Policy
	filter   OfferFilter
}

// NewEngine builds a reconciliation engine. All collaborators are injected;
// the engine holds no global state.
func NewEngine(lookup AvailabilityLookup, notifier Notifier, logger *slog.Logger, policy Policy) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		lookup:   lookup,
		notifier: notifier,
		logger:   logger,
		policy:   policy,
		filter:   NewOfferFilter(policy.Providers, policy.Monetizations),
	}
}

// ReconcileLibrary runs one pass over the given library. A failed library
// list fetch aborts only this pass; per-item failures degrade to "no
// action" and are counted, never escalated.
func (e *Engine) ReconcileLibrary(ctx context.Context, lib Library) (Stats, error) {
	stats := Stats{Kind: lib.Kind()}
	ctx = services.WithLibrary(ctx, lib.Kind())
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldComponent, lib.Kind()))

	items, err := lib.Items(ctx)
	if err != nil {
		stats.Errors++
		return stats, services.Wrap(services.ErrTransport, lib.Kind(), "list items", "", err)
	}
	logger.Info("reconciling library", logging.Int("items", len(items)))

	for _, item := range items {
		stats.Checked++
		itemCtx := services.WithTitle(ctx, item.Title)
		if err := e.reconcileItem(itemCtx, lib, item, &stats); err != nil {
			stats.Errors++
			logging.WithContext(itemCtx, e.logger).Warn("item reconciliation failed", logging.Error(err))
		}
	}
	return stats, nil
}

func (e *Engine) reconcileItem(ctx context.Context, lib Library, item Item, stats *Stats) error {
	logger := logging.WithContext(ctx, e.logger)

	if Excluded(item, e.policy.ExcludeTag) {
		stats.Skipped++
		logger.Debug("excluded from reconciliation",
			logging.Bool("released", item.Released),
			logging.Bool("tagged", item.HasTag(e.policy.ExcludeTag)))
		return nil
	}

	region := e.policy.Region
	if !item.Acquired() {
		region = e.policy.PromoteRegion
	}
	result := e.lookup.Search(ctx, item.Title, region)
	if result.Outcome == LookupFailed {
		if !services.Recoverable(result.Err) {
			return result.Err
		}
		logger.Warn("availability lookup failed, treating as no offers", logging.Error(result.Err))
	}

	decision, offers := Evaluate(item, e.filter, result)
	switch decision {
	case DemoteAndPurge:
		return e.demote(ctx, lib, item, offers, stats)
	case Promote:
		return e.promote(ctx, lib, item, stats)
	default:
		logger.Debug("no action", logging.Bool("acquired", item.Acquired()))
		return nil
	}
}

// demote unmonitors the item, then purges its files, then notifies. The
// flag is cleared first so an external automation cannot re-grab files
// mid-purge.
func (e *Engine) demote(ctx context.Context, lib Library, item Item, offers []Offer, stats *Stats) error {
	logger := logging.WithContext(ctx, e.logger)
	providers := Providers(offers)
	logger.Info("available on approved service", logging.String("providers", strings.Join(providers, ", ")))

	if e.policy.DryRun {
		logger.Info("dry run: would unmonitor and delete files")
		stats.Demoted++
		return nil
	}

	if err := lib.SetMonitored(ctx, item, false); err != nil {
		return err
	}
	deleted := 0
	if e.policy.DeleteFiles {
		var err error
		deleted, err = lib.DeleteFiles(ctx, item)
		if err != nil {
			logger.Warn("file purge incomplete", logging.Int("deleted", deleted), logging.Error(err))
		}
	}
	stats.Demoted++
	logger.Info("unmonitored", logging.Int64("id", item.ID), logging.Int("files_deleted", deleted))

	e.notify(ctx, func() error {
		return e.notifier.NotifyAvailable(ctx, lib.Origin(), item.Title, providers)
	})
	e.notify(ctx, func() error {
		return e.notifier.NotifyUnmonitored(ctx, lib.Origin(), item.Title, deleted)
	})
	return nil
}

func (e *Engine) promote(ctx context.Context, lib Library, item Item, stats *Stats) error {
	logger := logging.WithContext(ctx, e.logger)

	if e.policy.DryRun {
		logger.Info("dry run: would monitor")
		stats.Promoted++
		return nil
	}

	if err := lib.SetMonitored(ctx, item, true); err != nil {
		return err
	}
	stats.Promoted++
	logger.Info("not available, monitoring", logging.Int64("id", item.ID))

	e.notify(ctx, func() error {
		return e.notifier.NotifyMonitoring(ctx, lib.Origin(), item.Title)
	})
	return nil
}

func (e *Engine) notify(ctx context.Context, send func() error) {
	if e.notifier == nil {
		return
	}
	if err := send(); err != nil {
		logging.WithContext(ctx, e.logger).Warn("notification delivery failed", logging.Error(err))
	}
}
