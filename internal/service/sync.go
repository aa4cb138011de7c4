package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/id"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/metadata/tmdb"
	"github.com/WhiskeyCoder/Nextt/internal/provider"
	"github.com/WhiskeyCoder/Nextt/internal/settings"
	"github.com/WhiskeyCoder/Nextt/internal/store/sqlite"
)

// Seed source strategy names as reported in sync results.
const (
	sourceRatings      = "ratings"
	sourceWatchHistory = "watch_history"
)

// SyncService runs the full pipeline: select seeds from the provider, match
// them against the catalog, expand recommendations, resolve availability,
// and atomically replace the cache. Only one sync runs at a time.
type SyncService struct {
	store    *sqlite.Store
	settings *settings.Manager
	clients  ClientFactory
	logger   *logger.Logger
	mu       sync.Mutex
}

// NewSyncService creates a sync service.
func NewSyncService(store *sqlite.Store, settings *settings.Manager, clients ClientFactory, log *logger.Logger) *SyncService {
	return &SyncService{
		store:    store,
		settings: settings,
		clients:  clients,
		logger:   log,
	}
}

// Sync executes one pipeline run. Returns ErrConflict when a run is already
// in flight, and ErrNotConfigured when the provider or catalog credentials
// are missing. The cache keeps its previous contents if any stage fails.
func (s *SyncService) Sync(ctx context.Context) (*domain.SyncReport, error) {
	if !s.mu.TryLock() {
		return nil, domainerrors.Conflict("a sync is already running")
	}
	defer s.mu.Unlock()

	started := time.Now()
	runID := id.MustGenerate(id.PrefixSync)
	cfg := s.settings.Get()

	source, err := s.clients.SeedSource(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := s.clients.Catalog(cfg)
	if err != nil {
		return nil, err
	}
	broker, err := s.clients.Broker(cfg)
	if err != nil {
		if !domainerrors.Is(err, domainerrors.ErrNotConfigured) {
			return nil, err
		}
		broker = nil
		s.logger.Info("no request broker configured, marking everything not requested")
	}

	report := &domain.SyncReport{
		Provider:  source.Name(),
		Source:    sourceRatings,
		StartedAt: started,
	}
	if cfg.UseWatchHistory {
		report.Source = sourceWatchHistory
	}

	s.logger.Info("sync started",
		"run_id", runID,
		"provider", report.Provider,
		"source", report.Source,
		"seed_limit", cfg.SeedLimit(),
	)

	candidates, err := s.selectSeeds(ctx, source, cfg)
	if err != nil {
		return nil, err
	}
	report.SeedsSelected = len(candidates)

	groups := make([]domain.SeedGroup, 0, len(candidates))
	syncedAt := time.Now().UTC()

	for _, candidate := range candidates {
		seed, matched := s.matchCandidate(ctx, catalog, candidate, syncedAt)
		if !matched {
			report.Skipped++
			continue
		}

		report.CatalogMatches++
		switch seed.Kind {
		case domain.KindMovie:
			report.Movies++
		case domain.KindSeries:
			report.Series++
		}

		recs := s.expandSeed(ctx, catalog, broker, seed, syncedAt)
		report.Recommendations += len(recs)

		groups = append(groups, domain.SeedGroup{Seed: seed, Recommendations: recs})
	}

	if err := s.store.ReplaceLibrary(ctx, groups); err != nil {
		return nil, fmt.Errorf("replace cache: %w", err)
	}

	report.Success = true
	report.Duration = time.Since(started)
	report.Message = syncMessage(report)

	s.logger.Info("sync completed",
		"run_id", runID,
		"seeds", report.SeedsSelected,
		"matches", report.CatalogMatches,
		"movies", report.Movies,
		"series", report.Series,
		"recommendations", report.Recommendations,
		"skipped", report.Skipped,
		"duration", report.Duration,
	)
	return report, nil
}

// selectSeeds gathers candidates for both media kinds using the configured
// strategy, keeping the most recent per kind. The kinds hit independent
// provider endpoints, so they are fetched concurrently.
func (s *SyncService) selectSeeds(ctx context.Context, source provider.SeedSource, cfg domain.Settings) ([]domain.SeedCandidate, error) {
	limit := cfg.SeedLimit()
	kinds := domain.Kinds()

	perKind := make([][]domain.SeedCandidate, len(kinds))
	errs := make([]error, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var (
				candidates []domain.SeedCandidate
				err        error
			)
			if cfg.UseWatchHistory {
				candidates, err = source.WatchHistorySeeds(ctx, kind)
			} else {
				candidates, err = source.RatedSeeds(ctx, kind)
			}
			if err != nil {
				errs[i] = fmt.Errorf("select %s seeds: %w", kind, err)
				return
			}
			perKind[i] = provider.TopByRatedAt(candidates, limit)
			s.logger.Debug("seeds selected",
				"kind", kind,
				"candidates", len(candidates),
				"kept", len(perKind[i]),
			)
		}()
	}
	wg.Wait()

	var selected []domain.SeedCandidate
	for i := range kinds {
		if errs[i] != nil {
			return nil, errs[i]
		}
		selected = append(selected, perKind[i]...)
	}
	return selected, nil
}

// matchCandidate resolves a candidate against the catalog. A provider
// cross-reference id is tried first, then a title search. Candidates the
// catalog cannot identify are dropped.
func (s *SyncService) matchCandidate(ctx context.Context, catalog Catalog, c domain.SeedCandidate, syncedAt time.Time) (domain.SeedItem, bool) {
	var (
		tmdbID     int64
		posterPath string
		overview   string
	)

	if c.TMDBID > 0 {
		details, err := catalog.Details(ctx, c.TMDBID, c.Kind)
		if err != nil {
			s.logger.Warn("catalog lookup by id failed, falling back to search",
				"title", c.Title,
				"tmdb_id", c.TMDBID,
				"error", err,
			)
		} else if details != nil {
			tmdbID = details.ID
			posterPath = details.PosterPath
			overview = details.Overview
		}
	}

	if tmdbID == 0 {
		match, err := catalog.Search(ctx, c.Title, c.Year, c.Kind)
		if err != nil {
			s.logger.Warn("catalog search failed, skipping seed",
				"title", c.Title,
				"error", err,
			)
			return domain.SeedItem{}, false
		}
		if match == nil {
			s.logger.Debug("no catalog match, skipping seed", "title", c.Title, "year", c.Year)
			return domain.SeedItem{}, false
		}
		tmdbID = match.ID
		posterPath = match.PosterPath
		overview = match.Overview
	}

	summary := overview
	if summary == "" {
		summary = c.Summary
	}

	return domain.SeedItem{
		ID:           id.MustGenerate(id.PrefixSeed),
		ProviderID:   c.ProviderID,
		Title:        c.Title,
		Kind:         c.Kind,
		Rating:       c.Rating,
		RatedAt:      c.RatedAt,
		Year:         c.Year,
		TMDBID:       tmdbID,
		PosterURL:    tmdb.PosterURL(posterPath),
		Summary:      summary,
		SectionTitle: c.SectionTitle,
		Genre:        strings.Join(c.Genres, ", "),
		SyncedAt:     syncedAt,
	}, true
}

// expandSeed pulls related titles for a matched seed and resolves their
// availability. Expansion failures degrade to an empty list so one bad seed
// never aborts the run.
func (s *SyncService) expandSeed(ctx context.Context, catalog Catalog, broker Broker, seed domain.SeedItem, syncedAt time.Time) []domain.Recommendation {
	results, err := catalog.Recommendations(ctx, seed.TMDBID, seed.Kind)
	if err != nil {
		s.logger.Warn("recommendation expansion failed",
			"seed", seed.Title,
			"tmdb_id", seed.TMDBID,
			"error", err,
		)
		return nil
	}

	recs := make([]domain.Recommendation, 0, len(results))
	for i := range results {
		r := &results[i]

		availability := domain.AvailabilityNotRequested
		if broker != nil {
			availability = broker.CheckAvailability(ctx, r.ID, seed.Kind)
		}

		var genres []string
		var country string
		details, err := catalog.Details(ctx, r.ID, seed.Kind)
		if err != nil {
			s.logger.Warn("could not fetch recommendation details",
				"title", r.DisplayTitle(),
				"error", err,
			)
		} else if details != nil {
			genres = details.GenreNames()
			country = details.Country()
		}

		checkedAt := syncedAt
		recs = append(recs, domain.Recommendation{
			ID:           id.MustGenerate(id.PrefixRecommendation),
			SeedID:       seed.ID,
			TMDBID:       r.ID,
			Title:        r.DisplayTitle(),
			Kind:         seed.Kind,
			PosterURL:    tmdb.PosterURL(r.PosterPath),
			Summary:      r.Overview,
			Genres:       genres,
			Rating:       r.VoteAverage,
			Year:         yearOf(r.AirDate()),
			Country:      country,
			Language:     r.OriginalLanguage,
			Availability: availability,
			CheckedAt:    &checkedAt,
		})
	}
	return recs
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func syncMessage(r *domain.SyncReport) string {
	source := "recent ratings"
	if r.Source == sourceWatchHistory {
		source = "recently watched items"
	}
	return fmt.Sprintf(
		"Sync completed. Provider: %s. Source: %s. Seeds: %d (%d movies, %d series, %d skipped). Recommendations: %d.",
		r.Provider, source, r.SeedsSelected, r.Movies, r.Series, r.Skipped, r.Recommendations,
	)
}
