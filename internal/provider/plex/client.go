// Package plex selects seed candidates from a Plex Media Server.
package plex

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"sort"
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
	userAgent      = "Nextt/1.0"
	clientID       = "nextt-server"

	// minSeedRating is the floor on Plex's 10-point scale for a library
	// item to qualify as a rating-based seed (4 of 5 stars).
	minSeedRating = 8

	// historyPageSize is how many history rows are requested per page.
	historyPageSize = 1000
)

// Client selects seeds from a Plex server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
	pacer      provider.Pacer

	// strictTimestamps drops rated items lacking a ratingAt timestamp
	// instead of falling back to addedAt or the current time.
	strictTimestamps bool
}

// NewClient creates a new Plex client.
func NewClient(baseURL, token string, strictTimestamps bool, pacer provider.Pacer, log *logger.Logger) *Client {
	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		token:            token,
		httpClient:       &http.Client{Timeout: defaultTimeout},
		logger:           log,
		pacer:            pacer,
		strictTimestamps: strictTimestamps,
	}
}

// Name implements provider.SeedSource.
func (c *Client) Name() string {
	return string(domain.ProviderPlex)
}

// doRequest performs an authenticated request and decodes the response
// envelope. Every call goes through the pacer first.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) (*MediaContainer, error) {
	if err := c.pacer.Wait(ctx, ratelimit.KeyProvider); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if query != nil {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Client-Identifier", clientID)
	req.Header.Set("X-Plex-Product", "Nextt")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("plex request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.Upstream("plex is unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domainerrors.Upstream("plex rejected the token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domainerrors.Upstream(fmt.Sprintf("plex returned status %d", resp.StatusCode))
	}

	var envelope APIResponse
	if err := json.UnmarshalRead(resp.Body, &envelope); err != nil {
		return nil, domainerrors.Upstream("plex returned a malformed response").WithCause(err)
	}
	return &envelope.MediaContainer, nil
}

// Ping verifies connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, "/library/sections", nil)
	return err
}

// sections returns library sections matching the given Plex section type.
func (c *Client) sections(ctx context.Context, sectionType string) ([]Directory, error) {
	container, err := c.doRequest(ctx, "/library/sections", nil)
	if err != nil {
		return nil, err
	}

	var matched []Directory
	for _, dir := range container.Directory {
		if dir.Type == sectionType {
			matched = append(matched, dir)
		}
	}
	return matched, nil
}

// sectionType maps a media kind to Plex's section type.
func sectionType(kind domain.MediaKind) string {
	if kind == domain.KindSeries {
		return "show"
	}
	return "movie"
}

// RatedSeeds implements provider.SeedSource. It scans every matching library
// section and keeps items rated at least 4 of 5 stars.
func (c *Client) RatedSeeds(ctx context.Context, kind domain.MediaKind) ([]domain.SeedCandidate, error) {
	sections, err := c.sections(ctx, sectionType(kind))
	if err != nil {
		return nil, err
	}

	var candidates []domain.SeedCandidate
	for _, section := range sections {
		c.logger.Debug("scanning plex section", "section", section.Title, "kind", kind)

		query := url.Values{"includeGuids": {"1"}}
		container, err := c.doRequest(ctx, "/library/sections/"+section.Key+"/all", query)
		if err != nil {
			// One broken section should not sink the whole scan.
			c.logger.WithError(err).Warn("failed to scan plex section", "section", section.Title)
			continue
		}

		for _, item := range container.Metadata {
			if item.UserRating < minSeedRating {
				continue
			}

			ratedAt, ok := c.resolveRatedAt(item)
			if !ok {
				c.logger.Debug("dropping seed without rating timestamp", "title", item.Title)
				continue
			}

			candidates = append(candidates, domain.SeedCandidate{
				ProviderID:   item.RatingKey,
				Title:        item.Title,
				Kind:         kind,
				Year:         item.Year,
				Rating:       item.UserRating / 2,
				RatedAt:      ratedAt,
				Summary:      item.Summary,
				Genres:       tagNames(item.Genre),
				SectionTitle: section.Title,
				TMDBID:       tmdbIDFromGuids(item.Guid),
			})
		}
	}

	return candidates, nil
}

// resolveRatedAt picks the ordering timestamp for a rated item. Plex only
// stores ratingAt for ratings applied after the feature shipped, so older
// libraries need the addedAt fallback to participate at all.
func (c *Client) resolveRatedAt(item Metadata) (int64, bool) {
	if item.RatingAt > 0 {
		return item.RatingAt, true
	}
	if c.strictTimestamps {
		return 0, false
	}
	if item.AddedAt > 0 {
		return item.AddedAt, true
	}
	return time.Now().Unix(), true
}

// WatchHistorySeeds implements provider.SeedSource. It pages through the
// complete session history and derives one candidate per movie or series.
func (c *Client) WatchHistorySeeds(ctx context.Context, kind domain.MediaKind) ([]domain.SeedCandidate, error) {
	entries, err := c.fetchHistory(ctx)
	if err != nil {
		return nil, err
	}

	// Most recent first before grouping, so each group keeps its latest
	// watch time.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ViewedAt > entries[j].ViewedAt
	})

	if kind == domain.KindMovie {
		return c.movieHistory(entries), nil
	}
	return c.seriesHistory(entries), nil
}

// fetchHistory retrieves all session history pages. Paging stops on a short
// page or once the reported total is reached.
func (c *Client) fetchHistory(ctx context.Context) ([]Metadata, error) {
	var all []Metadata
	start := 0
	totalSize := -1

	for {
		query := url.Values{
			"X-Plex-Container-Start": {strconv.Itoa(start)},
			"X-Plex-Container-Size":  {strconv.Itoa(historyPageSize)},
		}
		container, err := c.doRequest(ctx, "/status/sessions/history/all", query)
		if err != nil {
			return nil, err
		}

		page := container.Metadata
		if len(page) == 0 {
			break
		}

		if totalSize < 0 {
			totalSize = container.TotalSize
			if totalSize == 0 {
				totalSize = container.Size
			}
		}

		all = append(all, page...)
		start += historyPageSize

		if len(page) < historyPageSize || (totalSize > 0 && len(all) >= totalSize) {
			break
		}
	}

	// Entries without a watch timestamp cannot be ordered.
	filtered := all[:0]
	for _, item := range all {
		if item.ViewedAt > 0 {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// movieHistory keeps history entries that are standalone movies, one
// candidate per title.
func (c *Client) movieHistory(entries []Metadata) []domain.SeedCandidate {
	seen := make(map[string]bool)
	var candidates []domain.SeedCandidate

	for _, item := range entries {
		if item.Type != "movie" || item.GrandparentTitle != "" {
			continue
		}
		if seen[item.RatingKey] {
			continue
		}
		seen[item.RatingKey] = true

		candidates = append(candidates, domain.SeedCandidate{
			ProviderID:   item.RatingKey,
			Title:        item.Title,
			Kind:         domain.KindMovie,
			Year:         item.Year,
			Rating:       provider.DefaultHistoryRating,
			RatedAt:      item.ViewedAt,
			Summary:      item.Summary,
			SectionTitle: "Movies",
		})
	}
	return candidates
}

// seriesHistory groups episode entries into one candidate per series, keyed
// by the series title. Plex occasionally files episodes under type "movie",
// so parentage is what identifies a series entry.
func (c *Client) seriesHistory(entries []Metadata) []domain.SeedCandidate {
	seen := make(map[string]bool)
	var candidates []domain.SeedCandidate

	for _, item := range entries {
		isEpisode := item.Type == "episode" ||
			(item.Type == "movie" && (item.GrandparentTitle != "" || item.ParentTitle != ""))
		if !isEpisode {
			continue
		}

		seriesTitle := item.GrandparentTitle
		if seriesTitle == "" {
			seriesTitle = item.ParentTitle
		}
		if seriesTitle == "" {
			seriesTitle = item.Title
		}
		if seen[seriesTitle] {
			continue
		}
		seen[seriesTitle] = true

		providerID := item.GrandparentRatingKey
		if providerID == "" {
			providerID = item.RatingKey
		}

		candidates = append(candidates, domain.SeedCandidate{
			ProviderID:   providerID,
			Title:        seriesTitle,
			Kind:         domain.KindSeries,
			Year:         item.Year,
			Rating:       provider.DefaultHistoryRating,
			RatedAt:      item.ViewedAt,
			SectionTitle: "TV Shows",
		})
	}
	return candidates
}

// tagNames extracts the tag strings from a tag list.
func tagNames(tags []Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Tag)
	}
	return names
}

// tmdbIDFromGuids finds the TMDB cross-reference in a Guid list.
func tmdbIDFromGuids(guids []GUID) int64 {
	for _, g := range guids {
		if rest, ok := strings.CutPrefix(g.ID, "tmdb://"); ok {
			id, err := strconv.ParseInt(rest, 10, 64)
			if err == nil {
				return id
			}
		}
	}
	return 0
}
