package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
)

func TestReplaceLibrary_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := testSeed(domain.KindMovie, "The Matrix", 1000)
	seed.Summary = "A hacker discovers reality is a simulation."
	seed.SectionTitle = "Movies"
	seed.Genre = "Action, Science Fiction"

	rec := testRecommendation(seed.ID, domain.KindMovie, "Inception", 27205, 8.4)

	err := s.ReplaceLibrary(ctx, []domain.SeedGroup{
		{Seed: seed, Recommendations: []domain.Recommendation{rec}},
	})
	if err != nil {
		t.Fatalf("replace library: %v", err)
	}

	got, err := s.GetSeed(ctx, seed.ID)
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}
	if got.Title != "The Matrix" {
		t.Errorf("title = %q, want The Matrix", got.Title)
	}
	if got.Rating != 4.5 {
		t.Errorf("rating = %v, want 4.5", got.Rating)
	}
	if got.TMDBID != 603 {
		t.Errorf("tmdb_id = %d, want 603", got.TMDBID)
	}
	if got.Genre != "Action, Science Fiction" {
		t.Errorf("genre = %q", got.Genre)
	}

	recs, err := s.ListRecommendationsForSeed(ctx, seed.ID, "")
	if err != nil {
		t.Fatalf("list recommendations: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Title != "Inception" {
		t.Errorf("rec title = %q", recs[0].Title)
	}
	if len(recs[0].Genres) != 2 || recs[0].Genres[0] != "Action" {
		t.Errorf("rec genres = %v", recs[0].Genres)
	}
	if recs[0].Availability != domain.AvailabilityNotRequested {
		t.Errorf("rec availability = %q", recs[0].Availability)
	}
}

func TestReplaceLibrary_FullReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := testSeed(domain.KindMovie, "First", 1000)
	err := s.ReplaceLibrary(ctx, []domain.SeedGroup{
		{Seed: first, Recommendations: []domain.Recommendation{
			testRecommendation(first.ID, domain.KindMovie, "Old Rec", 100, 7.0),
		}},
	})
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}

	// A second sync replaces everything, including rows the new run no
	// longer produces.
	second := testSeed(domain.KindSeries, "Second", 2000)
	err = s.ReplaceLibrary(ctx, []domain.SeedGroup{{Seed: second}})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}

	if _, err := s.GetSeed(ctx, first.ID); !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Errorf("expected old seed gone, got err=%v", err)
	}

	movies, err := s.ListSeeds(ctx, domain.KindMovie)
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("expected 0 movie seeds, got %d", len(movies))
	}

	recs, err := s.ListRecommendationsForSeed(ctx, first.ID, "")
	if err != nil {
		t.Fatalf("list recs: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected old recommendations gone, got %d", len(recs))
	}
}

func TestListSeeds_OrderedByRatedAtDesc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	oldest := testSeed(domain.KindMovie, "Oldest", 100)
	newest := testSeed(domain.KindMovie, "Newest", 300)
	middle := testSeed(domain.KindMovie, "Middle", 200)

	err := s.ReplaceLibrary(ctx, []domain.SeedGroup{
		{Seed: oldest}, {Seed: newest}, {Seed: middle},
	})
	if err != nil {
		t.Fatalf("replace library: %v", err)
	}

	seeds, err := s.ListSeeds(ctx, domain.KindMovie)
	if err != nil {
		t.Fatalf("list seeds: %v", err)
	}
	if len(seeds) != 3 {
		t.Fatalf("expected 3 seeds, got %d", len(seeds))
	}
	want := []string{"Newest", "Middle", "Oldest"}
	for i, title := range want {
		if seeds[i].Title != title {
			t.Errorf("seeds[%d] = %q, want %q", i, seeds[i].Title, title)
		}
	}
}

func TestListSeeds_FiltersByKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	movie := testSeed(domain.KindMovie, "A Movie", 100)
	series := testSeed(domain.KindSeries, "A Series", 200)

	err := s.ReplaceLibrary(ctx, []domain.SeedGroup{{Seed: movie}, {Seed: series}})
	if err != nil {
		t.Fatalf("replace library: %v", err)
	}

	movies, err := s.ListSeeds(ctx, domain.KindMovie)
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "A Movie" {
		t.Errorf("movies = %+v", movies)
	}

	shows, err := s.ListSeeds(ctx, domain.KindSeries)
	if err != nil {
		t.Fatalf("list series: %v", err)
	}
	if len(shows) != 1 || shows[0].Title != "A Series" {
		t.Errorf("series = %+v", shows)
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := testSeed(domain.KindMovie, "The Matrix", 100)
	err := s.ReplaceLibrary(ctx, []domain.SeedGroup{
		{Seed: seed, Recommendations: []domain.Recommendation{
			testRecommendation(seed.ID, domain.KindMovie, "Inception", 27205, 8.4),
		}},
	})
	if err != nil {
		t.Fatalf("replace library: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Seeds != 0 || stats.Recommendations != 0 {
		t.Errorf("expected empty cache, got %+v", stats)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	syncTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	movie := testSeed(domain.KindMovie, "A Movie", 100)
	movie.SyncedAt = syncTime
	movie.SectionTitle = "Movies"
	movie.Rating = 9
	series := testSeed(domain.KindSeries, "A Series", 200)
	series.SyncedAt = syncTime
	series.SectionTitle = "TV Shows"
	series.Rating = 8

	available := testRecommendation(movie.ID, domain.KindMovie, "Available", 1, 8.0)
	available.Availability = domain.AvailabilityAvailable
	requested := testRecommendation(movie.ID, domain.KindMovie, "Requested", 2, 7.0)
	requested.Availability = domain.AvailabilityRequested
	pending := testRecommendation(series.ID, domain.KindSeries, "Pending", 3, 6.0)

	err := s.ReplaceLibrary(ctx, []domain.SeedGroup{
		{Seed: movie, Recommendations: []domain.Recommendation{available, requested}},
		{Seed: series, Recommendations: []domain.Recommendation{pending}},
	})
	if err != nil {
		t.Fatalf("replace library: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.Seeds != 2 || stats.Movies != 1 || stats.Series != 1 {
		t.Errorf("seed counts = %+v", stats)
	}
	if stats.Recommendations != 3 {
		t.Errorf("recommendations = %d, want 3", stats.Recommendations)
	}
	if stats.Available != 1 || stats.Requested != 1 || stats.NotRequested != 1 {
		t.Errorf("availability counts = %+v", stats)
	}
	if stats.LastSyncedAt == nil || !stats.LastSyncedAt.Equal(syncTime) {
		t.Errorf("last synced = %v, want %v", stats.LastSyncedAt, syncTime)
	}

	want := []domain.SectionStats{
		{Kind: domain.KindMovie, SectionTitle: "Movies", Seeds: 1, AvgRating: 9},
		{Kind: domain.KindSeries, SectionTitle: "TV Shows", Seeds: 1, AvgRating: 8},
	}
	if len(stats.Sections) != len(want) {
		t.Fatalf("sections = %+v, want %+v", stats.Sections, want)
	}
	for i, section := range stats.Sections {
		if section != want[i] {
			t.Errorf("section[%d] = %+v, want %+v", i, section, want[i])
		}
	}
}

func TestStats_EmptyCache(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Seeds != 0 || stats.Recommendations != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
	if stats.LastSyncedAt != nil {
		t.Errorf("expected nil last synced, got %v", stats.LastSyncedAt)
	}
}
