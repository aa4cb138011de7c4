package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerConnectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "testConnection",
		Method:      http.MethodPost,
		Path:        "/api/v1/test/{service}",
		Summary:     "Test connection",
		Description: "Verifies credentials against an upstream service",
		Tags:        []string{"Settings"},
	}, s.handleTestConnection)
}

// TestConnectionInput names the upstream service to test.
type TestConnectionInput struct {
	Service string `path:"service" enum:"plex,jellyfin,tmdb,overseerr" doc:"Upstream service"`
}

// TestConnectionResponse reports a successful connection test.
type TestConnectionResponse struct {
	Success bool   `json:"success" doc:"Whether the service accepted the credentials"`
	Message string `json:"message" doc:"Human-readable result"`
}

// TestConnectionOutput wraps the test response for Huma.
type TestConnectionOutput struct {
	Body TestConnectionResponse
}

func (s *Server) handleTestConnection(ctx context.Context, input *TestConnectionInput) (*TestConnectionOutput, error) {
	if err := s.services.Connections.Test(ctx, input.Service); err != nil {
		return nil, err
	}
	return &TestConnectionOutput{Body: TestConnectionResponse{
		Success: true,
		Message: fmt.Sprintf("%s connection ok", input.Service),
	}}, nil
}
