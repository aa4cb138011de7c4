package domain

// Provider identifies which media server backs seed selection.
type Provider string

// Supported providers.
const (
	ProviderPlex     Provider = "plex"
	ProviderJellyfin Provider = "jellyfin"
)

// Settings is the user-editable runtime configuration: the active provider,
// credentials for each external service, and seed-selection tuning. It is
// persisted as a JSON blob by the settings manager.
type Settings struct {
	Provider Provider `json:"provider" validate:"required,oneof=plex jellyfin"`

	PlexURL   string `json:"plex_url,omitempty" validate:"omitempty,url"`
	PlexToken string `json:"plex_token,omitempty"`

	JellyfinURL    string `json:"jellyfin_url,omitempty" validate:"omitempty,url"`
	JellyfinAPIKey string `json:"jellyfin_api_key,omitempty"`
	JellyfinUserID string `json:"jellyfin_user_id,omitempty"`

	TMDBAPIKey string `json:"tmdb_api_key,omitempty"`

	OverseerrURL    string `json:"overseerr_url,omitempty" validate:"omitempty,url"`
	OverseerrAPIKey string `json:"overseerr_api_key,omitempty"`

	// UseWatchHistory switches seed selection from the rating strategy to
	// the watch-history strategy.
	UseWatchHistory bool `json:"use_watch_history"`

	// RatingSeedLimit bounds seeds per media kind in rating mode.
	RatingSeedLimit int `json:"rating_seed_limit,omitempty" validate:"omitempty,gte=1,lte=100"`

	// WatchHistoryLimit bounds seeds per media kind in watch-history mode.
	WatchHistoryLimit int `json:"watch_history_limit,omitempty" validate:"omitempty,gte=1,lte=500"`

	// StrictRatingTimestamps drops rated items that lack a rating timestamp
	// instead of falling back to the added-at time or the current time.
	// Changing this measurably changes seed ordering.
	StrictRatingTimestamps bool `json:"strict_rating_timestamps"`
}

// Default seed-selection bounds.
const (
	DefaultRatingSeedLimit   = 10
	DefaultWatchHistoryLimit = 25
)

// SeedLimit returns the effective per-kind seed bound for the active
// selection strategy.
func (s *Settings) SeedLimit() int {
	if s.UseWatchHistory {
		if s.WatchHistoryLimit > 0 {
			return s.WatchHistoryLimit
		}
		return DefaultWatchHistoryLimit
	}
	if s.RatingSeedLimit > 0 {
		return s.RatingSeedLimit
	}
	return DefaultRatingSeedLimit
}

// HasBroker reports whether the request broker is configured. Without a
// broker every availability check short-circuits to not_requested.
func (s *Settings) HasBroker() bool {
	return s.OverseerrURL != "" && s.OverseerrAPIKey != ""
}
