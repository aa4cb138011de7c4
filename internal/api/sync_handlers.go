package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSyncRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "runSync",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync",
		Summary:     "Run sync",
		Description: "Rebuilds the recommendation cache from the configured provider",
		Tags:        []string{"Sync"},
	}, s.handleRunSync)
}

// SyncStats contains the per-stage counters for one sync run.
type SyncStats struct {
	SeedsSelected   int `json:"seeds_selected" doc:"Seeds selected from the provider"`
	CatalogMatches  int `json:"catalog_matches" doc:"Seeds matched against the catalog"`
	Movies          int `json:"movies" doc:"Matched movie seeds"`
	Series          int `json:"series" doc:"Matched series seeds"`
	Recommendations int `json:"recommendations" doc:"Recommendations cached"`
	Skipped         int `json:"skipped" doc:"Seeds dropped for lack of a catalog match"`
}

// SyncResponse contains the result of a sync run.
type SyncResponse struct {
	Success    bool      `json:"success" doc:"Whether the run completed"`
	Message    string    `json:"message" doc:"Human-readable summary"`
	Provider   string    `json:"provider" doc:"Media provider used"`
	Source     string    `json:"source" doc:"Seed source strategy" enum:"ratings,watch_history"`
	Stats      SyncStats `json:"stats"`
	StartedAt  time.Time `json:"started_at" doc:"When the run began"`
	DurationMS int64     `json:"duration_ms" doc:"Run duration in milliseconds"`
}

// SyncOutput wraps the sync response for Huma.
type SyncOutput struct {
	Body SyncResponse
}

func (s *Server) handleRunSync(ctx context.Context, _ *struct{}) (*SyncOutput, error) {
	report, err := s.services.Sync.Sync(ctx)
	if err != nil {
		return nil, err
	}

	return &SyncOutput{Body: SyncResponse{
		Success:  report.Success,
		Message:  report.Message,
		Provider: report.Provider,
		Source:   report.Source,
		Stats: SyncStats{
			SeedsSelected:   report.SeedsSelected,
			CatalogMatches:  report.CatalogMatches,
			Movies:          report.Movies,
			Series:          report.Series,
			Recommendations: report.Recommendations,
			Skipped:         report.Skipped,
		},
		StartedAt:  report.StartedAt,
		DurationMS: report.Duration.Milliseconds(),
	}}, nil
}
