package plex

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/ratelimit"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Writer: io.Discard, Format: "json", Level: slog.LevelError})
}

func testPacer(t *testing.T) *ratelimit.KeyedRateLimiter {
	t.Helper()
	krl := ratelimit.New(1000, 1000)
	t.Cleanup(krl.Stop)
	return krl
}

func newTestClient(t *testing.T, strict bool, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-token", strict, testPacer(t), testLogger())
}

func writeContainer(t *testing.T, w http.ResponseWriter, container MediaContainer) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.MarshalWrite(w, APIResponse{MediaContainer: container}))
}

func TestRatedSeeds(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-Plex-Token"))

		switch r.URL.Path {
		case "/library/sections":
			writeContainer(t, w, MediaContainer{Directory: []Directory{
				{Key: "1", Type: "movie", Title: "Movies"},
				{Key: "2", Type: "show", Title: "TV Shows"},
			}})
		case "/library/sections/1/all":
			assert.Equal(t, "1", r.URL.Query().Get("includeGuids"))
			writeContainer(t, w, MediaContainer{Metadata: []Metadata{
				{
					RatingKey:  "101",
					Title:      "The Matrix",
					Type:       "movie",
					UserRating: 9,
					RatingAt:   1700000000,
					Year:       1999,
					Summary:    "A hacker discovers the truth.",
					Genre:      []Tag{{Tag: "Action"}, {Tag: "Science Fiction"}},
					Guid:       []GUID{{ID: "imdb://tt0133093"}, {ID: "tmdb://603"}},
				},
				{RatingKey: "102", Title: "Low Rated", Type: "movie", UserRating: 6},
				{RatingKey: "103", Title: "Unrated", Type: "movie"},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	seeds, err := client.RatedSeeds(context.Background(), domain.KindMovie)
	require.NoError(t, err)
	require.Len(t, seeds, 1)

	seed := seeds[0]
	assert.Equal(t, "101", seed.ProviderID)
	assert.Equal(t, "The Matrix", seed.Title)
	assert.Equal(t, 4.5, seed.Rating) // 9/10 converted to 5-star scale
	assert.Equal(t, int64(1700000000), seed.RatedAt)
	assert.Equal(t, int64(603), seed.TMDBID)
	assert.Equal(t, []string{"Action", "Science Fiction"}, seed.Genres)
	assert.Equal(t, "Movies", seed.SectionTitle)
}

func TestRatedSeeds_TimestampFallback(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/library/sections":
			writeContainer(t, w, MediaContainer{Directory: []Directory{
				{Key: "1", Type: "movie", Title: "Movies"},
			}})
		case "/library/sections/1/all":
			writeContainer(t, w, MediaContainer{Metadata: []Metadata{
				{RatingKey: "1", Title: "Has RatingAt", UserRating: 9, RatingAt: 500, AddedAt: 100},
				{RatingKey: "2", Title: "Has AddedAt", UserRating: 9, AddedAt: 100},
				{RatingKey: "3", Title: "Has Neither", UserRating: 9},
			}})
		}
	}

	t.Run("lenient falls back to addedAt then now", func(t *testing.T) {
		client := newTestClient(t, false, handler)

		seeds, err := client.RatedSeeds(context.Background(), domain.KindMovie)
		require.NoError(t, err)
		require.Len(t, seeds, 3)

		assert.Equal(t, int64(500), seeds[0].RatedAt)
		assert.Equal(t, int64(100), seeds[1].RatedAt)
		assert.Greater(t, seeds[2].RatedAt, int64(1700000000)) // roughly now
	})

	t.Run("strict drops items without ratingAt", func(t *testing.T) {
		client := newTestClient(t, true, handler)

		seeds, err := client.RatedSeeds(context.Background(), domain.KindMovie)
		require.NoError(t, err)
		require.Len(t, seeds, 1)
		assert.Equal(t, "Has RatingAt", seeds[0].Title)
	})
}

func TestRatedSeeds_SeriesUsesShowSections(t *testing.T) {
	var scannedPaths []string
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		scannedPaths = append(scannedPaths, r.URL.Path)
		switch r.URL.Path {
		case "/library/sections":
			writeContainer(t, w, MediaContainer{Directory: []Directory{
				{Key: "1", Type: "movie", Title: "Movies"},
				{Key: "2", Type: "show", Title: "TV Shows"},
			}})
		default:
			writeContainer(t, w, MediaContainer{})
		}
	})

	_, err := client.RatedSeeds(context.Background(), domain.KindSeries)
	require.NoError(t, err)
	assert.Contains(t, scannedPaths, "/library/sections/2/all")
	assert.NotContains(t, scannedPaths, "/library/sections/1/all")
}

func TestWatchHistorySeeds_Movies(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status/sessions/history/all", r.URL.Path)
		writeContainer(t, w, MediaContainer{
			Size:      4,
			TotalSize: 4,
			Metadata: []Metadata{
				{RatingKey: "1", Type: "movie", Title: "Older Movie", ViewedAt: 100, Year: 2019},
				{RatingKey: "2", Type: "movie", Title: "Newer Movie", ViewedAt: 300, Year: 2021},
				{RatingKey: "2", Type: "movie", Title: "Newer Movie", ViewedAt: 200, Year: 2021},
				{RatingKey: "3", Type: "episode", Title: "Some Episode", GrandparentTitle: "A Show", ViewedAt: 400},
			},
		})
	})

	seeds, err := client.WatchHistorySeeds(context.Background(), domain.KindMovie)
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	// Most recently watched first, rewatches collapsed to the latest view.
	assert.Equal(t, "Newer Movie", seeds[0].Title)
	assert.Equal(t, int64(300), seeds[0].RatedAt)
	assert.Equal(t, "Older Movie", seeds[1].Title)
	assert.Equal(t, 3.0, seeds[0].Rating)
}

func TestWatchHistorySeeds_SeriesGrouping(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		writeContainer(t, w, MediaContainer{
			Size: 4,
			Metadata: []Metadata{
				{RatingKey: "e1", Type: "episode", Title: "Ep 1", GrandparentTitle: "Breaking Bad", GrandparentRatingKey: "s1", ViewedAt: 100},
				{RatingKey: "e2", Type: "episode", Title: "Ep 2", GrandparentTitle: "Breaking Bad", GrandparentRatingKey: "s1", ViewedAt: 300},
				// Episode misfiled as a movie still groups by parentage.
				{RatingKey: "e3", Type: "movie", Title: "Ep 5", ParentTitle: "The Wire", ViewedAt: 200},
				{RatingKey: "m1", Type: "movie", Title: "A Real Movie", ViewedAt: 400},
			},
		})
	})

	seeds, err := client.WatchHistorySeeds(context.Background(), domain.KindSeries)
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	assert.Equal(t, "Breaking Bad", seeds[0].Title)
	assert.Equal(t, "s1", seeds[0].ProviderID)
	assert.Equal(t, int64(300), seeds[0].RatedAt) // latest episode watch
	assert.Equal(t, "The Wire", seeds[1].Title)
	assert.Equal(t, "e3", seeds[1].ProviderID)
}

func TestWatchHistorySeeds_Pagination(t *testing.T) {
	var starts []string
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("X-Plex-Container-Start")
		starts = append(starts, start)

		if start == "0" {
			// Full first page.
			items := make([]Metadata, historyPageSize)
			for i := range items {
				items[i] = Metadata{RatingKey: "x", Type: "movie", Title: "Movie", ViewedAt: int64(i + 1)}
			}
			writeContainer(t, w, MediaContainer{Size: historyPageSize, TotalSize: historyPageSize + 1, Metadata: items})
			return
		}
		// Short second page ends the loop.
		writeContainer(t, w, MediaContainer{Size: 1, Metadata: []Metadata{
			{RatingKey: "y", Type: "movie", Title: "Last", ViewedAt: 5000},
		}})
	})

	_, err := client.WatchHistorySeeds(context.Background(), domain.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1000"}, starts)
}

func TestPing_Unauthorized(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.Ping(context.Background())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUpstream))
}

func TestPing_OK(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		writeContainer(t, w, MediaContainer{})
	})

	assert.NoError(t, client.Ping(context.Background()))
}
