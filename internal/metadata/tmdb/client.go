// Package tmdb wraps the TMDB v3 API for catalog matching and
// recommendation expansion.
package tmdb

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/provider"
	"github.com/WhiskeyCoder/Nextt/internal/ratelimit"
)

const (
	defaultBaseURL = "https://api.themoviedb.org"
	posterBaseURL  = "https://image.tmdb.org/t/p/w500"

	// maxRecommendations caps how many related titles are kept per seed.
	maxRecommendations = 8
)

// Client provides access to the TMDB v3 API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	pacer      provider.Pacer
}

// NewClient creates a TMDB client. All requests are paced through the
// shared limiter so sync bursts stay within TMDB's published limits.
func NewClient(apiKey string, pacer provider.Pacer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		pacer:  pacer,
	}
}

// kindPath maps a media kind onto TMDB's URL segment.
func kindPath(kind domain.MediaKind) string {
	if kind == domain.KindSeries {
		return "tv"
	}
	return "movie"
}

// PosterURL builds a full w500 poster URL from a TMDB poster path.
// Returns empty when the catalog has no poster.
func PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return posterBaseURL + path
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) (int, error) {
	if err := c.pacer.Wait(ctx, ratelimit.KeyCatalog); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "create catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, domainerrors.Upstreamf("catalog request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}

	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return resp.StatusCode, domainerrors.Upstreamf("parse catalog response: %v", err)
	}
	return resp.StatusCode, nil
}

// Ping verifies the API key against the configuration endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Images struct {
			SecureBaseURL string `json:"secure_base_url"`
		} `json:"images"`
	}
	status, err := c.get(ctx, "/3/configuration", nil, &out)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return domainerrors.Upstreamf("catalog rejected the API key: status %d", status)
	}
	return nil
}

// Search finds the best catalog match for a title. It first searches with
// the year constraint, then retries without it, since library metadata often
// disagrees with the catalog about release years. Returns nil when the
// catalog has no match at all.
func (c *Client) Search(ctx context.Context, title string, year int, kind domain.MediaKind) (*Result, error) {
	if year > 0 {
		match, err := c.searchOnce(ctx, title, year, kind)
		if err != nil || match != nil {
			return match, err
		}
		c.logger.Debug("no catalog match with year, retrying without",
			"title", title,
			"year", year,
		)
	}
	return c.searchOnce(ctx, title, 0, kind)
}

func (c *Client) searchOnce(ctx context.Context, title string, year int, kind domain.MediaKind) (*Result, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("language", "en-US")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var page resultPage
	status, err := c.get(ctx, "/3/search/"+kindPath(kind), params, &page)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domainerrors.Upstreamf("catalog search failed: status %d", status)
	}
	if len(page.Results) == 0 {
		return nil, nil
	}
	return &page.Results[0], nil
}

// Details fetches the full record for a known TMDB id. Returns nil when the
// id does not exist in the catalog.
func (c *Client) Details(ctx context.Context, tmdbID int64, kind domain.MediaKind) (*Details, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,external_ids")

	var details Details
	status, err := c.get(ctx, fmt.Sprintf("/3/%s/%d", kindPath(kind), tmdbID), params, &details)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &details, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, domainerrors.Upstreamf("catalog details failed: status %d", status)
	}
}

// Recommendations returns up to maxRecommendations related titles for a
// catalog entry. Entries without a title or air date are unfinished catalog
// records and are skipped.
func (c *Client) Recommendations(ctx context.Context, tmdbID int64, kind domain.MediaKind) ([]Result, error) {
	params := url.Values{}
	params.Set("page", "1")

	var page resultPage
	status, err := c.get(ctx, fmt.Sprintf("/3/%s/%d/recommendations", kindPath(kind), tmdbID), params, &page)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, domainerrors.Upstreamf("catalog recommendations failed: status %d", status)
	}

	results := make([]Result, 0, maxRecommendations)
	for i := range page.Results {
		r := page.Results[i]
		if r.DisplayTitle() == "" || r.AirDate() == "" {
			continue
		}
		results = append(results, r)
		if len(results) == maxRecommendations {
			break
		}
	}
	return results, nil
}
