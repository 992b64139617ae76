package radarr

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

// Movie is the subset of the Radarr movie document the reconciler needs.
type Movie struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	Monitored bool    `json:"monitored"`
	HasFile   bool    `json:"hasFile"`
	Tags      []int64 `json:"tags"`
}

// MovieFile is a local media file record attached to a movie.
type MovieFile struct {
	ID           int64  `json:"id"`
	RelativePath string `json:"relativePath"`
	Size         int64  `json:"size"`
}

type tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// HTTPDoer describes the HTTP client used by the Radarr service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the Radarr v3 API.
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

// New creates a Radarr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("radarr base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("radarr api key required")
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

// Movies fetches the full movie list.
func (c *Client) Movies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.getJSON(ctx, "/api/v3/movie", &movies); err != nil {
		return nil, services.Wrap(services.ErrTransport, "radarr", "list movies", "", err)
	}
	return movies, nil
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
				firstErr = services.Wrap(services.ErrTransport, "radarr", "resolve tag", strconv.FormatInt(id, 10), err)
			}
			continue
		}
		if t.Label != "" {
			labels = append(labels, t.Label)
		}
	}
	return labels, firstErr
}

// MovieFiles lists the local file records for a movie.
func (c *Client) MovieFiles(ctx context.Context, movieID int64) ([]MovieFile, error) {
	var files []MovieFile
	path := "/api/v3/moviefile?movieId=" + strconv.FormatInt(movieID, 10)
	if err := c.getJSON(ctx, path, &files); err != nil {
		return nil, services.Wrap(services.ErrTransport, "radarr", "list movie files", "", err)
	}
	return files, nil
}

// DeleteMovieFiles removes the given file records. It keeps going past
// individual failures and reports the number deleted plus the first error.
func (c *Client) DeleteMovieFiles(ctx context.Context, files []MovieFile) (int, error) {
	deleted := 0
	var firstErr error
	for _, file := range files {
		path := "/api/v3/moviefile/" + strconv.FormatInt(file.ID, 10)
		if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
			if firstErr == nil {
				firstErr = services.Wrap(services.ErrTransport, "radarr", "delete movie file", strconv.FormatInt(file.ID, 10), err)
			}
			continue
		}
		deleted++
	}
	return deleted, firstErr
}

// SetMonitored flips the monitored flag on a movie. The full document is
// fetched and written back with only that field changed so unknown Radarr
// fields survive the round trip.
func (c *Client) SetMonitored(ctx context.Context, movieID int64, monitored bool) error {
	path := "/api/v3/movie/" + strconv.FormatInt(movieID, 10)
	var doc map[string]any
	if err := c.getJSON(ctx, path, &doc); err != nil {
		return services.Wrap(services.ErrTransport, "radarr", "fetch movie", "", err)
	}
	doc["monitored"] = monitored
	body, err := json.Marshal(doc)
	if err != nil {
		return services.Wrap(services.ErrRemote, "radarr", "encode movie", "", err)
	}
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return services.Wrap(services.ErrTransport, "radarr", "update movie", "", err)
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
