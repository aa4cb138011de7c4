// Package domain defines the core entities for the Nextt recommendation
// pipeline: library seeds, catalog-sourced recommendations, and the
// availability states reported by the request broker.
package domain

import "time"

// MediaKind identifies the broad media category of a library item.
type MediaKind string

// Supported media kinds.
const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
)

// Valid reports whether the kind is one of the supported values.
func (k MediaKind) Valid() bool {
	return k == KindMovie || k == KindSeries
}

// Kinds returns all supported media kinds in a stable order.
func Kinds() []MediaKind {
	return []MediaKind{KindMovie, KindSeries}
}

// Availability is the fulfillment state of a recommendation as reported by
// the request broker (Overseerr).
type Availability string

// Availability states. Every broker status maps to exactly one of these.
const (
	AvailabilityAvailable    Availability = "available"
	AvailabilityRequested    Availability = "requested"
	AvailabilityNotRequested Availability = "not_requested"
)

// SeedCandidate is a provider-native library entry selected as a basis for
// recommendations, before it has been matched against the catalog.
type SeedCandidate struct {
	ProviderID   string    // provider-native identifier (ratingKey, item id)
	Title        string
	Kind         MediaKind
	Year         int
	Rating       float64 // 0-5 star scale, half-star granularity
	RatedAt      int64   // ordering timestamp, seconds since epoch
	Summary      string
	Genres       []string
	SectionTitle string
	TMDBID       int64 // provider-supplied cross-reference, 0 if absent
}

// SeedItem is a matched seed as persisted in the cache. The seed table is
// rebuilt from scratch on every sync run.
type SeedItem struct {
	ID           string
	ProviderID   string
	Title        string
	Kind         MediaKind
	Rating       float64
	RatedAt      int64
	Year         int
	TMDBID       int64
	PosterURL    string
	Summary      string
	SectionTitle string
	Genre        string
	SyncedAt     time.Time
}

// Recommendation is a catalog candidate owned by exactly one seed. Duplicate
// (seed, tmdb id) pairs across different seeds are allowed.
type Recommendation struct {
	ID           string
	SeedID       string
	TMDBID       int64
	Title        string
	Kind         MediaKind
	PosterURL    string
	Summary      string
	Genres       []string
	Rating       float64 // aggregate critic rating from the catalog
	Year         int
	Country      string
	Language     string
	Availability Availability
	CheckedAt    *time.Time
}

// SeedGroup pairs a seed summary with its ordered recommendations for the
// read path.
type SeedGroup struct {
	Seed            SeedItem
	Recommendations []Recommendation
}

// CacheStats summarizes the cached library for the stats endpoint.
type CacheStats struct {
	Seeds           int
	Movies          int
	Series          int
	Recommendations int
	Available       int
	Requested       int
	NotRequested    int
	Sections        []SectionStats
	LastSyncedAt    *time.Time
}

// SectionStats is the per-section seed breakdown: how many seeds one library
// section contributed and their average native rating.
type SectionStats struct {
	Kind         MediaKind
	SectionTitle string
	Seeds        int
	AvgRating    float64
}

// SyncReport is the structured result of one sync run. It is returned to the
// caller even when the run aborts early.
type SyncReport struct {
	Success        bool
	Message        string
	Provider       string
	Source         string // "ratings" or "watch_history"
	SeedsSelected  int
	CatalogMatches int
	Movies         int
	Series         int
	Recommendations int
	Skipped        int
	StartedAt      time.Time
	Duration       time.Duration
}
