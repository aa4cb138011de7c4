package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/{kind}",
		Summary:     "List recommendations",
		Description: "Returns cached seeds with their recommendations, no upstream calls",
		Tags:        []string{"Recommendations"},
	}, s.handleListRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "requestMedia",
		Method:      http.MethodPost,
		Path:        "/api/v1/request",
		Summary:     "Request media",
		Description: "Submits a request to the broker and marks cached copies as requested",
		Tags:        []string{"Recommendations"},
	}, s.handleRequestMedia)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCacheStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Get cache stats",
		Description: "Returns aggregate counts over the cached library",
		Tags:        []string{"Cache"},
	}, s.handleGetCacheStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetCache",
		Method:      http.MethodPost,
		Path:        "/api/v1/cache/reset",
		Summary:     "Reset cache",
		Description: "Drops all cached seeds and recommendations",
		Tags:        []string{"Cache"},
	}, s.handleResetCache)
}

// === DTOs ===

// SeedResponse contains a cached seed in API responses.
type SeedResponse struct {
	ID           string    `json:"id" doc:"Seed ID"`
	Title        string    `json:"title" doc:"Title as known by the provider"`
	Kind         string    `json:"kind" doc:"Media kind" enum:"movie,series"`
	Rating       float64   `json:"rating" doc:"User rating on a 5-star scale"`
	RatedAt      int64     `json:"rated_at" doc:"Rating or watch timestamp, seconds since epoch"`
	Year         int       `json:"year,omitempty" doc:"Release year"`
	TMDBID       int64     `json:"tmdb_id" doc:"Catalog ID"`
	PosterURL    string    `json:"poster_url,omitempty" doc:"Poster image URL"`
	Summary      string    `json:"summary,omitempty" doc:"Plot summary"`
	SectionTitle string    `json:"section_title,omitempty" doc:"Provider library section"`
	Genre        string    `json:"genre,omitempty" doc:"Comma-separated genres"`
	SyncedAt     time.Time `json:"synced_at" doc:"When this seed was cached"`
}

// RecommendationResponse contains a cached recommendation in API responses.
type RecommendationResponse struct {
	ID           string     `json:"id" doc:"Recommendation ID"`
	TMDBID       int64      `json:"tmdb_id" doc:"Catalog ID"`
	Title        string     `json:"title" doc:"Title"`
	Kind         string     `json:"kind" doc:"Media kind" enum:"movie,series"`
	PosterURL    string     `json:"poster_url,omitempty" doc:"Poster image URL"`
	Summary      string     `json:"summary,omitempty" doc:"Plot summary"`
	Genres       []string   `json:"genres,omitempty" doc:"Genre names"`
	Rating       float64    `json:"rating" doc:"Aggregate critic rating"`
	Year         int        `json:"year,omitempty" doc:"Release year"`
	Country      string     `json:"country,omitempty" doc:"Production country"`
	Language     string     `json:"language,omitempty" doc:"Original language code"`
	Availability string     `json:"availability" doc:"Broker availability" enum:"available,requested,not_requested"`
	CheckedAt    *time.Time `json:"checked_at,omitempty" doc:"When availability was last checked"`
}

// RecommendationGroup pairs a seed with its recommendations.
type RecommendationGroup struct {
	Seed            SeedResponse             `json:"seed"`
	Recommendations []RecommendationResponse `json:"recommendations"`
}

// ListRecommendationsInput contains parameters for listing recommendations.
type ListRecommendationsInput struct {
	Kind   string `path:"kind" enum:"movie,series" doc:"Media kind"`
	Status string `query:"status" enum:"available,requested,not_requested" required:"false" doc:"Filter recommendations by availability"`
}

// ListRecommendationsResponse contains seed groups for one media kind.
type ListRecommendationsResponse struct {
	Groups []RecommendationGroup `json:"groups" doc:"Seeds with their recommendations, most recently rated first"`
}

// ListRecommendationsOutput wraps the list response for Huma.
type ListRecommendationsOutput struct {
	Body ListRecommendationsResponse
}

// RequestMediaRequest is the request body for requesting media.
type RequestMediaRequest struct {
	TMDBID int64  `json:"tmdb_id" minimum:"1" doc:"Catalog ID of the title to request"`
	Kind   string `json:"kind" enum:"movie,series" doc:"Media kind"`
}

// RequestMediaInput wraps the request body for Huma.
type RequestMediaInput struct {
	Body RequestMediaRequest
}

// RequestMediaResponse reports how many cached copies were updated.
type RequestMediaResponse struct {
	Requested     bool  `json:"requested" doc:"Whether the broker accepted the request"`
	UpdatedCopies int64 `json:"updated_copies" doc:"Cached recommendations flipped to requested"`
}

// RequestMediaOutput wraps the request response for Huma.
type RequestMediaOutput struct {
	Body RequestMediaResponse
}

// CacheStatsResponse contains aggregate cache counts.
type CacheStatsResponse struct {
	Seeds           int                    `json:"seeds" doc:"Cached seeds"`
	Movies          int                    `json:"movies" doc:"Movie seeds"`
	Series          int                    `json:"series" doc:"Series seeds"`
	Recommendations int                    `json:"recommendations" doc:"Cached recommendations"`
	Available       int                    `json:"available" doc:"Recommendations available on the broker"`
	Requested       int                    `json:"requested" doc:"Recommendations already requested"`
	NotRequested    int                    `json:"not_requested" doc:"Recommendations not yet requested"`
	Sections        []SectionStatsResponse `json:"sections,omitempty" doc:"Per-section seed breakdown"`
	LastSyncedAt    *time.Time             `json:"last_synced_at,omitempty" doc:"Completion time of the last sync"`
}

// SectionStatsResponse is one library section's contribution to the cache.
type SectionStatsResponse struct {
	Kind         string  `json:"kind" enum:"movie,series" doc:"Media kind"`
	SectionTitle string  `json:"section_title" doc:"Provider section title"`
	Seeds        int     `json:"seeds" doc:"Seeds from this section"`
	AvgRating    float64 `json:"avg_rating" doc:"Average native rating of those seeds"`
}

// CacheStatsOutput wraps the stats response for Huma.
type CacheStatsOutput struct {
	Body CacheStatsResponse
}

// ResetCacheResponse confirms a cache reset.
type ResetCacheResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// ResetCacheOutput wraps the reset response for Huma.
type ResetCacheOutput struct {
	Body ResetCacheResponse
}

// === Handlers ===

func (s *Server) handleListRecommendations(ctx context.Context, input *ListRecommendationsInput) (*ListRecommendationsOutput, error) {
	groups, err := s.services.Recommendations.ListGroups(ctx, domain.MediaKind(input.Kind), domain.Availability(input.Status))
	if err != nil {
		return nil, err
	}

	out := ListRecommendationsResponse{Groups: make([]RecommendationGroup, 0, len(groups))}
	for _, g := range groups {
		out.Groups = append(out.Groups, toRecommendationGroup(g))
	}
	return &ListRecommendationsOutput{Body: out}, nil
}

func (s *Server) handleRequestMedia(ctx context.Context, input *RequestMediaInput) (*RequestMediaOutput, error) {
	updated, err := s.services.Recommendations.RequestMedia(ctx, input.Body.TMDBID, domain.MediaKind(input.Body.Kind))
	if err != nil {
		return nil, err
	}
	return &RequestMediaOutput{Body: RequestMediaResponse{
		Requested:     true,
		UpdatedCopies: updated,
	}}, nil
}

func (s *Server) handleGetCacheStats(ctx context.Context, _ *struct{}) (*CacheStatsOutput, error) {
	stats, err := s.services.Recommendations.Stats(ctx)
	if err != nil {
		return nil, err
	}
	body := CacheStatsResponse{
		Seeds:           stats.Seeds,
		Movies:          stats.Movies,
		Series:          stats.Series,
		Recommendations: stats.Recommendations,
		Available:       stats.Available,
		Requested:       stats.Requested,
		NotRequested:    stats.NotRequested,
		LastSyncedAt:    stats.LastSyncedAt,
	}
	for _, section := range stats.Sections {
		body.Sections = append(body.Sections, SectionStatsResponse{
			Kind:         string(section.Kind),
			SectionTitle: section.SectionTitle,
			Seeds:        section.Seeds,
			AvgRating:    section.AvgRating,
		})
	}
	return &CacheStatsOutput{Body: body}, nil
}

func (s *Server) handleResetCache(ctx context.Context, _ *struct{}) (*ResetCacheOutput, error) {
	if err := s.services.Recommendations.ResetCache(ctx); err != nil {
		return nil, err
	}
	return &ResetCacheOutput{Body: ResetCacheResponse{Message: "cache cleared"}}, nil
}

func toRecommendationGroup(g domain.SeedGroup) RecommendationGroup {
	group := RecommendationGroup{
		Seed: SeedResponse{
			ID:           g.Seed.ID,
			Title:        g.Seed.Title,
			Kind:         string(g.Seed.Kind),
			Rating:       g.Seed.Rating,
			RatedAt:      g.Seed.RatedAt,
			Year:         g.Seed.Year,
			TMDBID:       g.Seed.TMDBID,
			PosterURL:    g.Seed.PosterURL,
			Summary:      g.Seed.Summary,
			SectionTitle: g.Seed.SectionTitle,
			Genre:        g.Seed.Genre,
			SyncedAt:     g.Seed.SyncedAt,
		},
		Recommendations: make([]RecommendationResponse, 0, len(g.Recommendations)),
	}
	for _, r := range g.Recommendations {
		group.Recommendations = append(group.Recommendations, RecommendationResponse{
			ID:           r.ID,
			TMDBID:       r.TMDBID,
			Title:        r.Title,
			Kind:         string(r.Kind),
			PosterURL:    r.PosterURL,
			Summary:      r.Summary,
			Genres:       r.Genres,
			Rating:       r.Rating,
			Year:         r.Year,
			Country:      r.Country,
			Language:     r.Language,
			Availability: string(r.Availability),
			CheckedAt:    r.CheckedAt,
		})
	}
	return group
}
