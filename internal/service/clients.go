// Package service implements the recommendation pipeline: seed selection,
// catalog matching, recommendation expansion, availability resolution, and
// the cached read path.
package service

import (
	"context"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/metadata/tmdb"
	"github.com/WhiskeyCoder/Nextt/internal/provider"
	"github.com/WhiskeyCoder/Nextt/internal/provider/jellyfin"
	"github.com/WhiskeyCoder/Nextt/internal/provider/plex"
	"github.com/WhiskeyCoder/Nextt/internal/request/overseerr"
)

// Catalog is the slice of the TMDB client the pipeline depends on.
type Catalog interface {
	Search(ctx context.Context, title string, year int, kind domain.MediaKind) (*tmdb.Result, error)
	Details(ctx context.Context, tmdbID int64, kind domain.MediaKind) (*tmdb.Details, error)
	Recommendations(ctx context.Context, tmdbID int64, kind domain.MediaKind) ([]tmdb.Result, error)
	Ping(ctx context.Context) error
}

// Broker is the slice of the Overseerr client the pipeline depends on.
type Broker interface {
	CheckAvailability(ctx context.Context, tmdbID int64, kind domain.MediaKind) domain.Availability
	Request(ctx context.Context, tmdbID int64, kind domain.MediaKind) error
	Ping(ctx context.Context) error
}

// ClientFactory builds upstream clients from a settings snapshot. Clients
// are rebuilt per operation so credential changes take effect without a
// restart.
type ClientFactory interface {
	SeedSource(cfg domain.Settings) (provider.SeedSource, error)
	Catalog(cfg domain.Settings) (Catalog, error)
	Broker(cfg domain.Settings) (Broker, error)
}

// Factory is the production ClientFactory backed by the real Plex, Jellyfin,
// TMDB, and Overseerr clients.
type Factory struct {
	pacer  provider.Pacer
	logger *logger.Logger
}

// NewFactory creates a client factory. All clients built by it share the
// given pacer.
func NewFactory(pacer provider.Pacer, log *logger.Logger) *Factory {
	return &Factory{
		pacer:  pacer,
		logger: log,
	}
}

// SeedSource builds the media server client for the active provider.
func (f *Factory) SeedSource(cfg domain.Settings) (provider.SeedSource, error) {
	switch cfg.Provider {
	case domain.ProviderPlex:
		if cfg.PlexURL == "" || cfg.PlexToken == "" {
			return nil, domainerrors.NotConfigured("plex url and token are required")
		}
		return plex.NewClient(cfg.PlexURL, cfg.PlexToken, cfg.StrictRatingTimestamps, f.pacer, f.logger), nil
	case domain.ProviderJellyfin:
		if cfg.JellyfinURL == "" || cfg.JellyfinAPIKey == "" || cfg.JellyfinUserID == "" {
			return nil, domainerrors.NotConfigured("jellyfin url, api key, and user id are required")
		}
		return jellyfin.NewClient(cfg.JellyfinURL, cfg.JellyfinAPIKey, cfg.JellyfinUserID, cfg.StrictRatingTimestamps, f.pacer, f.logger), nil
	default:
		return nil, domainerrors.NotConfigured("no media provider selected")
	}
}

// Catalog builds the TMDB client.
func (f *Factory) Catalog(cfg domain.Settings) (Catalog, error) {
	if cfg.TMDBAPIKey == "" {
		return nil, domainerrors.NotConfigured("tmdb api key is required")
	}
	return tmdb.NewClient(cfg.TMDBAPIKey, f.pacer, f.logger.Logger), nil
}

// Broker builds the Overseerr client, or returns ErrNotConfigured when the
// broker is absent. Sync treats an absent broker as "everything
// not_requested" rather than an error.
func (f *Factory) Broker(cfg domain.Settings) (Broker, error) {
	if !cfg.HasBroker() {
		return nil, domainerrors.NotConfigured("overseerr url and api key are required")
	}
	return overseerr.NewClient(cfg.OverseerrURL, cfg.OverseerrAPIKey, f.pacer, f.logger.Logger), nil
}
