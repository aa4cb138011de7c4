package service

import (
	"context"
	"fmt"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/settings"
	"github.com/WhiskeyCoder/Nextt/internal/store/sqlite"
)

// RecommendationService serves the cached read path and forwards media
// requests to the broker. Reads never touch an upstream service.
type RecommendationService struct {
	store    *sqlite.Store
	settings *settings.Manager
	clients  ClientFactory
	logger   *logger.Logger
}

// NewRecommendationService creates a recommendation service.
func NewRecommendationService(store *sqlite.Store, settings *settings.Manager, clients ClientFactory, log *logger.Logger) *RecommendationService {
	return &RecommendationService{
		store:    store,
		settings: settings,
		clients:  clients,
		logger:   log,
	}
}

// ListGroups returns cached seeds of the given kind with their top
// recommendations. When status is set, recommendations are filtered to that
// availability and seeds left with none are omitted.
func (s *RecommendationService) ListGroups(ctx context.Context, kind domain.MediaKind, status domain.Availability) ([]domain.SeedGroup, error) {
	if !kind.Valid() {
		return nil, domainerrors.Validationf("unknown media kind %q", kind)
	}
	return s.store.ListSeedGroups(ctx, kind, status)
}

// RequestMedia submits a request to the broker and marks every cached copy
// of the title as requested. The cache is only updated after the broker
// accepts the request.
func (s *RecommendationService) RequestMedia(ctx context.Context, tmdbID int64, kind domain.MediaKind) (int64, error) {
	if tmdbID <= 0 {
		return 0, domainerrors.Validation("a tmdb id is required")
	}
	if !kind.Valid() {
		return 0, domainerrors.Validationf("unknown media kind %q", kind)
	}

	broker, err := s.clients.Broker(s.settings.Get())
	if err != nil {
		return 0, err
	}
	if err := broker.Request(ctx, tmdbID, kind); err != nil {
		return 0, err
	}

	updated, err := s.store.MarkRequested(ctx, tmdbID)
	if err != nil {
		return 0, fmt.Errorf("mark requested: %w", err)
	}

	s.logger.Info("request submitted",
		"tmdb_id", tmdbID,
		"kind", kind,
		"cached_copies", updated,
	)
	return updated, nil
}

// Stats summarizes the cached library.
func (s *RecommendationService) Stats(ctx context.Context) (*domain.CacheStats, error) {
	return s.store.Stats(ctx)
}

// ResetCache drops all cached seeds and recommendations.
func (s *RecommendationService) ResetCache(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.logger.Info("cache reset")
	return nil
}
