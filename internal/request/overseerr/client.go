// Package overseerr wraps the Overseerr v1 API for availability checks
// and media requests.
package overseerr

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/provider"
	"github.com/WhiskeyCoder/Nextt/internal/ratelimit"
)

// Media status codes as reported by Overseerr.
const (
	statusUnknown    = 1
	statusPending    = 2
	statusProcessing = 3
	statusPartial    = 4
	statusAvailable  = 5
)

// Client provides access to an Overseerr instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	pacer      provider.Pacer
}

// NewClient creates an Overseerr client for the given instance.
func NewClient(baseURL, apiKey string, pacer provider.Pacer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		pacer:  pacer,
	}
}

type mediaResponse struct {
	ID        int64  `json:"id"`
	MediaInfo *media `json:"mediaInfo"`
}

type media struct {
	Status int `json:"status"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	if err := c.pacer.Wait(ctx, ratelimit.KeyBroker); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.MarshalWrite(&buf, body); err != nil {
			return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode broker request")
		}
		reqBody = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reqBody)
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "create broker request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, domainerrors.Upstreamf("broker request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.UnmarshalRead(resp.Body, out); err != nil {
			return resp.StatusCode, domainerrors.Upstreamf("parse broker response: %v", err)
		}
	}
	return resp.StatusCode, nil
}

// Ping verifies the API key against the status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Version string `json:"version"`
	}
	status, err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return domainerrors.Upstreamf("broker rejected the API key: status %d", status)
	}
	return nil
}

func mediaType(kind domain.MediaKind) string {
	if kind == domain.KindSeries {
		return "tv"
	}
	return "movie"
}

// CheckAvailability reports whether a title is already available or requested
// on the broker. Unknown titles and broker errors both come back as
// not_requested so a flaky broker never blocks a sync.
func (c *Client) CheckAvailability(ctx context.Context, tmdbID int64, kind domain.MediaKind) domain.Availability {
	var out mediaResponse
	status, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%d", mediaType(kind), tmdbID), nil, &out)
	if err != nil {
		c.logger.Warn("availability check failed, treating as not requested",
			"tmdb_id", tmdbID,
			"kind", kind,
			"error", err,
		)
		return domain.AvailabilityNotRequested
	}
	if status != http.StatusOK || out.MediaInfo == nil {
		return domain.AvailabilityNotRequested
	}

	switch out.MediaInfo.Status {
	case statusAvailable:
		return domain.AvailabilityAvailable
	case statusUnknown, statusPending, statusProcessing, statusPartial:
		return domain.AvailabilityRequested
	default:
		return domain.AvailabilityNotRequested
	}
}

// Request submits a media request for the given title.
func (c *Client) Request(ctx context.Context, tmdbID int64, kind domain.MediaKind) error {
	payload := map[string]any{
		"mediaType": mediaType(kind),
		"mediaId":   tmdbID,
	}

	var out struct {
		ID int64 `json:"id"`
	}
	status, err := c.do(ctx, http.MethodPost, "/request", payload, &out)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return domainerrors.Upstreamf("broker request rejected: status %d", status)
	}

	c.logger.Info("media requested on broker",
		"tmdb_id", tmdbID,
		"kind", kind,
		"request_id", out.ID,
	)
	return nil
}
