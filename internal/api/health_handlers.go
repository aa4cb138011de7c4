package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status and component states",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// HealthResponse contains server health status.
type HealthResponse struct {
	Status       string     `json:"status" doc:"Server health status"`
	Database     string     `json:"database" doc:"Cache database state"`
	Configured   bool       `json:"configured" doc:"Whether a catalog API key is set"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty" doc:"Completion time of the most recent sync"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{
		Status:     "healthy",
		Database:   "ok",
		Configured: s.services.Settings.Get().TMDBAPIKey != "",
	}

	stats, err := s.services.Recommendations.Stats(ctx)
	if err != nil {
		resp.Status = "degraded"
		resp.Database = "error"
	} else {
		resp.LastSyncedAt = stats.LastSyncedAt
	}

	return &HealthOutput{Body: resp}, nil
}
