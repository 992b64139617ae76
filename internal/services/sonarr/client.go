package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"justwatcharr/internal/services"
)

// Season is one season entry on a series document.
type Season struct {
	SeasonNumber int  `json:"seasonNumber"`
	Monitored    bool `json:"monitored"`
}

// Statistics carries the per-series aggregate counters Sonarr maintains.
type Statistics struct {
	EpisodeFileCount int `json:"episodeFileCount"`
	EpisodeCount     int `json:"episodeCount"`
}

// Series is the subset of the Sonarr series document the reconciler needs.
type Series struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	FirstAired time.Time  `json:"firstAired"`
	Monitored  bool       `json:"monitored"`
	Seasons    []Season   `json:"seasons"`
	Statistics Statistics `json:"statistics"`
	Tags       []int64    `json:"tags"`
}

// NonSpecialSeasons counts seasons numbered 1 and up. Season 0 holds
// specials and never participates in availability comparisons.
func (s Series) NonSpecialSeasons() int {
	count := 0
	for _, season := range s.Seasons {
		if season.SeasonNumber != 0 {
			count++
		}
	}
	return count
}

// EpisodeFile is a local media file record attached to an episode.
type EpisodeFile struct {
	ID           int64  `json:"id"`
	RelativePath string `json:"relativePath"`
	Size         int64  `json:"size"`
}

type tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// HTTPDoer describes the HTTP client used by the Sonarr service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the Sonarr v3 API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Sonarr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("sonarr base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("sonarr api key required")
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Series fetches the full series list.
func (c *Client) Series(ctx context.Context) ([]Series, error) {
	var series []Series
	if err := c.getJSON(ctx, "/api/v3/series", &series); err != nil {
		return nil, services.Wrap(services.ErrTransport, "sonarr", "list series", "", err)
	}
	return series, nil
}

// TagLabels resolves tag identifiers to their labels. Individual lookup
// failures yield no label for that identifier; the first failure is
// returned alongside the labels that did resolve so callers can log it.
func (c *Client) TagLabels(ctx context.Context, ids []int64) ([]string, error) {
	labels := make([]string, 0, len(ids))
	var firstErr error
	for _, id := range ids {
		var t tag
		if err := c.getJSON(ctx, "/api/v3/tag/"+strconv.FormatInt(id, 10), &t); err != nil {
			if firstErr == nil {
				firstErr = services.Wrap(services.ErrTransport, "sonarr", "resolve tag", strconv.FormatInt(id, 10), err)
			}
			continue
		}
		if t.Label != "" {
			labels = append(labels, t.Label)
		}
	}
	return labels, firstErr
}

// EpisodeFiles lists the local file records for a series.
func (c *Client) EpisodeFiles(ctx context.Context, seriesID int64) ([]EpisodeFile, error) {
	var files []EpisodeFile
	path := "/api/v3/episodefile?seriesId=" + strconv.FormatInt(seriesID, 10)
	if err := c.getJSON(ctx, path, &files); err != nil {
		return nil, services.Wrap(services.ErrTransport, "sonarr", "list episode files", "", err)
	}
	return files, nil
}

// DeleteEpisodeFiles removes the given file records. It keeps going past
// individual failures and reports the number deleted plus the first error.
func (c *Client) DeleteEpisodeFiles(ctx context.Context, files []EpisodeFile) (int, error) {
	deleted := 0
	var firstErr error
	for _, file := range files {
		path := "/api/v3/episodefile/" + strconv.FormatInt(file.ID, 10)
		if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
			if firstErr == nil {
				firstErr = services.Wrap(services.ErrTransport, "sonarr", "delete episode file", strconv.FormatInt(file.ID, 10), err)
			}
			continue
		}
		deleted++
	}
	return deleted, firstErr
}

// SetMonitored flips the monitored flag on a series. The full document is
// fetched and written back with only that field changed so unknown Sonarr
// fields survive the round trip.
func (c *Client) SetMonitored(ctx context.Context, seriesID int64, monitored bool) error {
	path := "/api/v3/series/" + strconv.FormatInt(seriesID, 10)
	var doc map[string]any
	if err := c.getJSON(ctx, path, &doc); err != nil {
		return services.Wrap(services.ErrTransport, "sonarr", "fetch series", "", err)
	}
	doc["monitored"] = monitored
	body, err := json.Marshal(doc)
	if err != nil {
		return services.Wrap(services.ErrRemote, "sonarr", "encode series", "", err)
	}
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return services.Wrap(services.ErrTransport, "sonarr", "update series", "", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return nil
}
