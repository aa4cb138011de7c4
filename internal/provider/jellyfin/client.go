// Package jellyfin selects seed candidates from a Jellyfin server.
package jellyfin

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/provider"
	"github.com/WhiskeyCoder/Nextt/internal/ratelimit"
)

const (
	defaultTimeout = 30 * time.Second

	// minSeedRating is the floor on Jellyfin's 10-point scale for an item
	// to qualify as a rating-based seed.
	minSeedRating = 8

	// ratedFetchLimit bounds the library page fetched in rating mode.
	ratedFetchLimit = 100

	// historyFetchLimit bounds the library page fetched in history mode.
	historyFetchLimit = 1000
)

// Client selects seeds from a Jellyfin server.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
	logger     *logger.Logger
	pacer      provider.Pacer

	// strictTimestamps drops rated items lacking a last-played date
	// instead of falling back to the current time.
	strictTimestamps bool
}

// NewClient creates a new Jellyfin client.
func NewClient(baseURL, apiKey, userID string, strictTimestamps bool, pacer provider.Pacer, log *logger.Logger) *Client {
	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		apiKey:           apiKey,
		userID:           userID,
		httpClient:       &http.Client{Timeout: defaultTimeout},
		logger:           log,
		pacer:            pacer,
		strictTimestamps: strictTimestamps,
	}
}

// Name implements provider.SeedSource.
func (c *Client) Name() string {
	return string(domain.ProviderJellyfin)
}

// doRequest performs an authenticated request and decodes the JSON body into
// out. Every call goes through the pacer first.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.pacer.Wait(ctx, ratelimit.KeyProvider); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if query != nil {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Emby-Token", c.apiKey)

	c.logger.Debug("jellyfin request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.Upstream("jellyfin is unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return domainerrors.Upstream("jellyfin rejected the api key")
	}
	if resp.StatusCode != http.StatusOK {
		return domainerrors.Upstream(fmt.Sprintf("jellyfin returned status %d", resp.StatusCode))
	}

	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return domainerrors.Upstream("jellyfin returned a malformed response").WithCause(err)
	}
	return nil
}

// Ping verifies connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	var info SystemInfo
	return c.doRequest(ctx, "/System/Info", nil, &info)
}

// itemType maps a media kind to Jellyfin's item type.
func itemType(kind domain.MediaKind) string {
	if kind == domain.KindSeries {
		return "Series"
	}
	return "Movie"
}

// sectionTitle is the display label recorded on candidates of a kind.
func sectionTitle(kind domain.MediaKind) string {
	if kind == domain.KindSeries {
		return "TV Shows"
	}
	return "Movies"
}

// fetchItems retrieves the user's library items of one type, sorted by play
// date so the most relevant entries land inside the fetch limit.
func (c *Client) fetchItems(ctx context.Context, kind domain.MediaKind, limit int) ([]Item, error) {
	query := url.Values{
		"IncludeItemTypes": {itemType(kind)},
		"Recursive":        {"true"},
		"SortBy":           {"DatePlayed"},
		"SortOrder":        {"Descending"},
		"Limit":            {strconv.Itoa(limit)},
	}

	var resp ItemsResponse
	if err := c.doRequest(ctx, "/Users/"+c.userID+"/Items", query, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// RatedSeeds implements provider.SeedSource. It keeps items the user rated
// at least 8 of 10 and orders them by last-played date.
func (c *Client) RatedSeeds(ctx context.Context, kind domain.MediaKind) ([]domain.SeedCandidate, error) {
	items, err := c.fetchItems(ctx, kind, ratedFetchLimit)
	if err != nil {
		return nil, err
	}

	var candidates []domain.SeedCandidate
	for _, item := range items {
		if item.UserData == nil || item.UserData.UserRating < minSeedRating {
			continue
		}

		ratedAt, ok := c.resolveRatedAt(item.UserData)
		if !ok {
			c.logger.Debug("dropping seed without rating timestamp", "title", item.Name)
			continue
		}

		candidates = append(candidates, c.toCandidate(item, kind, item.UserData.UserRating/2, ratedAt))
	}
	return candidates, nil
}

// resolveRatedAt derives the ordering timestamp for a rated item. Jellyfin
// does not record when a rating was applied, so the last-played date is the
// closest stand-in.
func (c *Client) resolveRatedAt(ud *UserData) (int64, bool) {
	if ts := parsePlayedDate(ud.LastPlayedDate); ts > 0 {
		return ts, true
	}
	if c.strictTimestamps {
		return 0, false
	}
	return time.Now().Unix(), true
}

// WatchHistorySeeds implements provider.SeedSource. It keeps every item with
// playback activity, most recently played first.
func (c *Client) WatchHistorySeeds(ctx context.Context, kind domain.MediaKind) ([]domain.SeedCandidate, error) {
	items, err := c.fetchItems(ctx, kind, historyFetchLimit)
	if err != nil {
		return nil, err
	}

	var candidates []domain.SeedCandidate
	for _, item := range items {
		ud := item.UserData
		if ud == nil || (ud.LastPlayedDate == "" && ud.PlayCount == 0) {
			continue
		}

		watchedAt := parsePlayedDate(ud.LastPlayedDate)
		if watchedAt == 0 {
			continue
		}

		rating := provider.DefaultHistoryRating
		if ud.UserRating > 0 {
			rating = ud.UserRating / 2
		}

		candidates = append(candidates, c.toCandidate(item, kind, rating, watchedAt))
	}
	return candidates, nil
}

// toCandidate maps a Jellyfin item to a seed candidate.
func (c *Client) toCandidate(item Item, kind domain.MediaKind, rating float64, ratedAt int64) domain.SeedCandidate {
	return domain.SeedCandidate{
		ProviderID:   item.ID,
		Title:        item.Name,
		Kind:         kind,
		Year:         item.ProductionYear,
		Rating:       rating,
		RatedAt:      ratedAt,
		Summary:      item.Overview,
		Genres:       item.Genres,
		SectionTitle: sectionTitle(kind),
		TMDBID:       tmdbIDFromProviderIds(item.ProviderIds),
	}
}

// parsePlayedDate parses Jellyfin's ISO timestamp into epoch seconds.
func parsePlayedDate(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Jellyfin emits seven fractional digits without a zone on some
		// versions.
		t, err = time.Parse("2006-01-02T15:04:05.9999999", s)
		if err != nil {
			return 0
		}
	}
	return t.Unix()
}

// tmdbIDFromProviderIds extracts the TMDB cross-reference, if present.
func tmdbIDFromProviderIds(ids map[string]string) int64 {
	for key, value := range ids {
		if strings.EqualFold(key, "Tmdb") {
			id, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				return id
			}
		}
	}
	return 0
}
