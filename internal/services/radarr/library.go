package radarr

import (
	"context"
	"log/slog"

	"justwatcharr/internal/logging"
	"justwatcharr/internal/reconcile"
)

// Library adapts a Radarr client to the reconciliation engine's view of a
// movie library.
type Library struct {
	client *Client
	logger *slog.Logger
}

// NewLibrary wraps a Radarr client for reconciliation.
func NewLibrary(client *Client, logger *slog.Logger) *Library {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Library{client: client, logger: logger.With(logging.String(logging.FieldComponent, "radarr"))}
}

// Kind identifies the library to logs and notifications.
func (l *Library) Kind() string { return "movie" }

// Origin is the label stamped on notifications for this library.
func (l *Library) Origin() string { return "Radarr" }

// Items fetches all movies and maps them to reconciliation items. A movie
// is past its gate once Radarr reports it released; tag identifiers are
// resolved to labels per item, with failed lookups contributing no label.
func (l *Library) Items(ctx context.Context) ([]reconcile.Item, error) {
	movies, err := l.client.Movies(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]reconcile.Item, 0, len(movies))
	for _, movie := range movies {
		tags, tagErr := l.client.TagLabels(ctx, movie.Tags)
		if tagErr != nil {
			l.logger.Warn("partial tag resolution",
				logging.String(logging.FieldTitle, movie.Title),
				logging.Error(tagErr))
		}
		items = append(items, reconcile.Item{
			ID:        movie.ID,
			Title:     movie.Title,
			Released:  movie.Status == "released",
			Monitored: movie.Monitored,
			HasMedia:  movie.HasFile,
			Tags:      tags,
		})
	}
	return items, nil
}

// SetMonitored flips the monitored flag on the underlying movie.
func (l *Library) SetMonitored(ctx context.Context, item reconcile.Item, monitored bool) error {
	return l.client.SetMonitored(ctx, item.ID, monitored)
}

// DeleteFiles purges all local file records for the movie and reports how
// many were removed.
func (l *Library) DeleteFiles(ctx context.Context, item reconcile.Item) (int, error) {
	files, err := l.client.MovieFiles(ctx, item.ID)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	return l.client.DeleteMovieFiles(ctx, files)
}
