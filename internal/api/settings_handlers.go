package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
		Summary:     "Get settings",
		Description: "Returns the current provider and service configuration",
		Tags:        []string{"Settings"},
	}, s.handleGetSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSettings",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings",
		Summary:     "Update settings",
		Description: "Validates and persists new configuration",
		Tags:        []string{"Settings"},
	}, s.handleUpdateSettings)
}

// SettingsBody mirrors the persisted settings for API requests and
// responses. Everything but the provider is optional; cross-field rules are
// enforced by the settings manager.
type SettingsBody struct {
	Provider string `json:"provider" enum:"plex,jellyfin" doc:"Active media provider"`

	PlexURL   string `json:"plex_url,omitempty" doc:"Plex server URL"`
	PlexToken string `json:"plex_token,omitempty" doc:"Plex auth token"`

	JellyfinURL    string `json:"jellyfin_url,omitempty" doc:"Jellyfin server URL"`
	JellyfinAPIKey string `json:"jellyfin_api_key,omitempty" doc:"Jellyfin API key"`
	JellyfinUserID string `json:"jellyfin_user_id,omitempty" doc:"Jellyfin user ID"`

	TMDBAPIKey string `json:"tmdb_api_key,omitempty" doc:"TMDB API key"`

	OverseerrURL    string `json:"overseerr_url,omitempty" doc:"Overseerr URL"`
	OverseerrAPIKey string `json:"overseerr_api_key,omitempty" doc:"Overseerr API key"`

	UseWatchHistory        bool `json:"use_watch_history,omitempty" doc:"Seed from watch history instead of ratings"`
	RatingSeedLimit        int  `json:"rating_seed_limit,omitempty" minimum:"1" maximum:"100" doc:"Seeds per kind in rating mode"`
	WatchHistoryLimit      int  `json:"watch_history_limit,omitempty" minimum:"1" maximum:"500" doc:"Seeds per kind in watch-history mode"`
	StrictRatingTimestamps bool `json:"strict_rating_timestamps,omitempty" doc:"Drop rated items without a rating timestamp"`
}

// SettingsOutput wraps the settings response for Huma.
type SettingsOutput struct {
	Body SettingsBody
}

// UpdateSettingsInput wraps the settings update request for Huma.
type UpdateSettingsInput struct {
	Body SettingsBody
}

func (s *Server) handleGetSettings(_ context.Context, _ *struct{}) (*SettingsOutput, error) {
	return &SettingsOutput{Body: toSettingsBody(s.services.Settings.Get())}, nil
}

func (s *Server) handleUpdateSettings(_ context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	updated, err := s.services.Settings.Update(toSettings(input.Body))
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Body: toSettingsBody(updated)}, nil
}

func toSettingsBody(s domain.Settings) SettingsBody {
	return SettingsBody{
		Provider:               string(s.Provider),
		PlexURL:                s.PlexURL,
		PlexToken:              s.PlexToken,
		JellyfinURL:            s.JellyfinURL,
		JellyfinAPIKey:         s.JellyfinAPIKey,
		JellyfinUserID:         s.JellyfinUserID,
		TMDBAPIKey:             s.TMDBAPIKey,
		OverseerrURL:           s.OverseerrURL,
		OverseerrAPIKey:        s.OverseerrAPIKey,
		UseWatchHistory:        s.UseWatchHistory,
		RatingSeedLimit:        s.RatingSeedLimit,
		WatchHistoryLimit:      s.WatchHistoryLimit,
		StrictRatingTimestamps: s.StrictRatingTimestamps,
	}
}

func toSettings(b SettingsBody) domain.Settings {
	return domain.Settings{
		Provider:               domain.Provider(b.Provider),
		PlexURL:                b.PlexURL,
		PlexToken:              b.PlexToken,
		JellyfinURL:            b.JellyfinURL,
		JellyfinAPIKey:         b.JellyfinAPIKey,
		JellyfinUserID:         b.JellyfinUserID,
		TMDBAPIKey:             b.TMDBAPIKey,
		OverseerrURL:           b.OverseerrURL,
		OverseerrAPIKey:        b.OverseerrAPIKey,
		UseWatchHistory:        b.UseWatchHistory,
		RatingSeedLimit:        b.RatingSeedLimit,
		WatchHistoryLimit:      b.WatchHistoryLimit,
		StrictRatingTimestamps: b.StrictRatingTimestamps,
	}
}
