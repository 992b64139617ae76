package justwatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"justwatcharr/internal/services"
)

// searchQuery asks for the single best title match plus its web offers.
const searchQuery = `query GetSearchTitles($country: Country!, $language: Language!, $first: Int!, $filter: TitleFilter) {
  popularTitles(country: $country, first: $first, filter: $filter) {
    edges {
      node {
        __typename
        content(country: $country, language: $language) {
          title
        }
        ... on MovieOrShow {
          offers(country: $country, platform: WEB) {
            monetizationType
            elementCount
            package {
              clearName
            }
          }
        }
      }
    }
  }
}`

// Offer is one streaming availability record for a title.
type Offer struct {
	Package      string
	Monetization string
	// ElementCount is the season count for shows; zero for movies.
	ElementCount int
}

// Title is the best search match with its offers.
type Title struct {
	Name   string
	Offers []Offer
}

// ErrNoMatch reports that the search produced no usable title. It carries
// the shared not-found marker so callers can classify it either way.
var ErrNoMatch = services.Wrap(services.ErrNotFound, "justwatch", "search", "no matching title", nil)

// HTTPDoer describes the HTTP client used by the JustWatch service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the JustWatch GraphQL API.
type Client struct {
	endpoint   string
	language   string
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

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates a JustWatch client.
func New(endpoint, language string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("justwatch endpoint required")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = "en"
	}
	client := &Client{
		endpoint:   endpoint,
		language:   language,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		PopularTitles struct {
			Edges []struct {
				Node struct {
					Content struct {
						Title string `json:"title"`
					} `json:"content"`
					Offers []struct {
						MonetizationType string `json:"monetizationType"`
						ElementCount     int    `json:"elementCount"`
						Package          struct {
							ClearName string `json:"clearName"`
						} `json:"package"`
					} `json:"offers"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"popularTitles"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Search returns the top-ranked title matching the query in the given
// country, with its web offers. The match is exact: a top result whose
// title differs from the query (ignoring case) counts as no match, so a
// lookalike title can never trigger a purge.
func (c *Client) Search(ctx context.Context, query, country string) (*Title, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoMatch
	}

	payload, err := json.Marshal(graphqlRequest{
		Query: searchQuery,
		Variables: map[string]any{
			"country":  country,
			"language": c.language,
			"first":    1,
			"filter":   map[string]any{"searchQuery": query},
		},
	})
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "justwatch", "encode query", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "justwatch", "build request", "", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "justwatch", "search", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, services.Wrap(services.ErrTransport, "justwatch", "search",
			fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, services.Wrap(services.ErrRemote, "justwatch", "decode response", "", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, services.Wrap(services.ErrRemote, "justwatch", "search", decoded.Errors[0].Message, nil)
	}

	edges := decoded.Data.PopularTitles.Edges
	if len(edges) == 0 {
		return nil, ErrNoMatch
	}
	node := edges[0].Node
	if !strings.EqualFold(strings.TrimSpace(node.Content.Title), query) {
		return nil, ErrNoMatch
	}

	title := &Title{Name: node.Content.Title, Offers: make([]Offer, 0, len(node.Offers))}
	for _, offer := range node.Offers {
		title.Offers = append(title.Offers, Offer{
			Package:      offer.Package.ClearName,
			Monetization: strings.ToUpper(offer.MonetizationType),
			ElementCount: offer.ElementCount,
		})
	}
	return title, nil
}
