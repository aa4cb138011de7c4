package service

import (
	"context"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/settings"
)

// ConnectionService verifies credentials against each configured upstream.
type ConnectionService struct {
	settings *settings.Manager
	clients  ClientFactory
	logger   *logger.Logger
}

// NewConnectionService creates a connection service.
func NewConnectionService(settings *settings.Manager, clients ClientFactory, log *logger.Logger) *ConnectionService {
	return &ConnectionService{
		settings: settings,
		clients:  clients,
		logger:   log,
	}
}

// Test pings the named upstream service using the current settings. Valid
// names are plex, jellyfin, tmdb, and overseerr.
func (s *ConnectionService) Test(ctx context.Context, name string) error {
	cfg := s.settings.Get()

	var err error
	switch name {
	case "plex":
		err = s.testProvider(ctx, cfg, domain.ProviderPlex)
	case "jellyfin":
		err = s.testProvider(ctx, cfg, domain.ProviderJellyfin)
	case "tmdb":
		var catalog Catalog
		if catalog, err = s.clients.Catalog(cfg); err == nil {
			err = catalog.Ping(ctx)
		}
	case "overseerr":
		var broker Broker
		if broker, err = s.clients.Broker(cfg); err == nil {
			err = broker.Ping(ctx)
		}
	default:
		return domainerrors.Validationf("unknown service %q", name)
	}

	if err != nil {
		s.logger.Warn("connection test failed", "service", name, "error", err)
		return err
	}

	s.logger.Info("connection test passed", "service", name)
	return nil
}

// testProvider pings a specific media server even when it is not the active
// provider, so credentials can be validated before switching.
func (s *ConnectionService) testProvider(ctx context.Context, cfg domain.Settings, p domain.Provider) error {
	cfg.Provider = p
	source, err := s.clients.SeedSource(cfg)
	if err != nil {
		return err
	}
	return source.Ping(ctx)
}
