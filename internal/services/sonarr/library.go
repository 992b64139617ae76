package sonarr

import (
	"context"
	"log/slog"
	"time"

	"justwatcharr/internal/logging"
	"justwatcharr/internal/reconcile"
)

// Library adapts a Sonarr client to the reconciliation engine's view of a
// series library.
type Library struct {
	client *Client
	logger *slog.Logger
	now    func() time.Time
}

// NewLibrary wraps a Sonarr client for reconciliation.
func NewLibrary(client *Client, logger *slog.Logger) *Library {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Library{
		client: client,
		logger: logger.With(logging.String(logging.FieldComponent, "sonarr")),
		now:    time.Now,
	}
}

// Kind identifies the library to logs and notifications.
func (l *Library) Kind() string { return "series" }

// Origin is the label stamped on notifications for this library.
func (l *Library) Origin() string { return "Sonarr" }

// Items fetches all series and maps them to reconciliation items. A series
// is past its gate once its first-air timestamp is in the past; an unset
// timestamp counts as not yet aired. Seasons carry the non-special count
// used for exact-match offer comparison.
func (l *Library) Items(ctx context.Context) ([]reconcile.Item, error) {
	series, err := l.client.Series(ctx)
	if err != nil {
		return nil, err
	}
	now := l.now()
	items := make([]reconcile.Item, 0, len(series))
	for _, s := range series {
		tags, tagErr := l.client.TagLabels(ctx, s.Tags)
		if tagErr != nil {
			l.logger.Warn("partial tag resolution",
				logging.String(logging.FieldTitle, s.Title),
				logging.Error(tagErr))
		}
		items = append(items, reconcile.Item{
			ID:        s.ID,
			Title:     s.Title,
			Released:  !s.FirstAired.IsZero() && !s.FirstAired.After(now),
			Monitored: s.Monitored,
			HasMedia:  s.Statistics.EpisodeFileCount > 0,
			IsSeries:  true,
			Seasons:   s.NonSpecialSeasons(),
			Tags:      tags,
		})
	}
	return items, nil
}

// SetMonitored flips the monitored flag on the underlying series.
func (l *Library) SetMonitored(ctx context.Context, item reconcile.Item, monitored bool) error {
	return l.client.SetMonitored(ctx, item.ID, monitored)
}

// DeleteFiles purges all episode file records for the series and reports
// how many were removed.
func (l *Library) DeleteFiles(ctx context.Context, item reconcile.Item) (int, error) {
	files, err := l.client.EpisodeFiles(ctx, item.ID)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	return l.client.DeleteEpisodeFiles(ctx, files)
}
