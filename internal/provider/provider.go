// Package provider adapts media servers to a common seed source interface.
// Each provider selects seed candidates from the user's library using one of
// two strategies: native ratings or watch history.
package provider

import (
	"context"
	"sort"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
)

// Pacer spaces successive calls to an upstream service. The keyed rate
// limiter satisfies this directly.
type Pacer interface {
	Wait(ctx context.Context, key string) error
}

// SeedSource selects seed candidates from a media server library.
type SeedSource interface {
	// Name returns the provider identifier ("plex" or "jellyfin").
	Name() string

	// RatedSeeds returns candidates of the given kind carrying a native
	// rating of at least 8 on the provider's 10-point scale. Results are
	// unordered and unbounded; callers apply TopByRatedAt.
	RatedSeeds(ctx context.Context, kind domain.MediaKind) ([]domain.SeedCandidate, error)

	// WatchHistorySeeds returns candidates of the given kind drawn from
	// playback history, most recently watched first. Episodes are grouped
	// into one candidate per series.
	WatchHistorySeeds(ctx context.Context, kind domain.MediaKind) ([]domain.SeedCandidate, error)

	// Ping verifies connectivity and credentials.
	Ping(ctx context.Context) error
}

// TopByRatedAt orders candidates by their rating timestamp, most recent
// first, and truncates to limit.
func TopByRatedAt(candidates []domain.SeedCandidate, limit int) []domain.SeedCandidate {
	sorted := make([]domain.SeedCandidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RatedAt > sorted[j].RatedAt
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// DefaultHistoryRating is assigned to watch-history candidates that carry no
// native rating.
const DefaultHistoryRating = 3.0
