package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
)

// recommendationsPerSeed caps how many recommendations the read path returns
// for a single seed.
const recommendationsPerSeed = 10

// recColumns is the ordered list of columns selected in recommendation queries.
// Must match the scan order in scanRecommendation.
const recColumns = `id, seed_id, tmdb_id, title, kind, poster_url, summary,
	genres, rating, year, country, language, availability, checked_at`

// scanRecommendation scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Recommendation.
func scanRecommendation(scanner interface{ Scan(dest ...any) error }) (*domain.Recommendation, error) {
	var rec domain.Recommendation

	var (
		posterURL sql.NullString
		summary   sql.NullString
		genres    sql.NullString
		country   sql.NullString
		language  sql.NullString
		checkedAt sql.NullString
	)

	err := scanner.Scan(
		&rec.ID,
		&rec.SeedID,
		&rec.TMDBID,
		&rec.Title,
		&rec.Kind,
		&posterURL,
		&summary,
		&genres,
		&rec.Rating,
		&rec.Year,
		&country,
		&language,
		&rec.Availability,
		&checkedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.CheckedAt, err = parseNullableTime(checkedAt)
	if err != nil {
		return nil, err
	}

	if posterURL.Valid {
		rec.PosterURL = posterURL.String
	}
	if summary.Valid {
		rec.Summary = summary.String
	}
	if genres.Valid && genres.String != "" {
		rec.Genres = strings.Split(genres.String, ", ")
	}
	if country.Valid {
		rec.Country = country.String
	}
	if language.Valid {
		rec.Language = language.String
	}

	return &rec, nil
}

func insertRecommendation(ctx context.Context, tx *sql.Tx, rec *domain.Recommendation) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO recommendations (
			id, seed_id, tmdb_id, title, kind, poster_url, summary,
			genres, rating, year, country, language, availability, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.SeedID,
		rec.TMDBID,
		rec.Title,
		string(rec.Kind),
		nullString(rec.PosterURL),
		nullString(rec.Summary),
		nullString(strings.Join(rec.Genres, ", ")),
		rec.Rating,
		rec.Year,
		nullString(rec.Country),
		nullString(rec.Language),
		string(rec.Availability),
		nullTimeString(rec.CheckedAt),
	)
	return err
}

// ListRecommendationsForSeed returns the top recommendations for a seed
// ordered by catalog rating, highest first, capped at recommendationsPerSeed.
// An empty status returns all availability states.
func (s *Store) ListRecommendationsForSeed(ctx context.Context, seedID string, status domain.Availability) ([]domain.Recommendation, error) {
	query := `SELECT ` + recColumns + ` FROM recommendations WHERE seed_id = ?`
	args := []any{seedID}

	if status != "" {
		query += ` AND availability = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY rating DESC, title ASC LIMIT ?`
	args = append(args, recommendationsPerSeed)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// ListSeedGroups returns seeds of the given kind with their top
// recommendations attached. Seeds are ordered by rating timestamp descending.
// When a status filter is set, seeds whose recommendations all fall outside
// the filter are omitted.
func (s *Store) ListSeedGroups(ctx context.Context, kind domain.MediaKind, status domain.Availability) ([]domain.SeedGroup, error) {
	seeds, err := s.ListSeeds(ctx, kind)
	if err != nil {
		return nil, err
	}

	var groups []domain.SeedGroup
	for _, seed := range seeds {
		recs, err := s.ListRecommendationsForSeed(ctx, seed.ID, status)
		if err != nil {
			return nil, err
		}
		if status != "" && len(recs) == 0 {
			continue
		}
		groups = append(groups, domain.SeedGroup{
			Seed:            *seed,
			Recommendations: recs,
		})
	}
	return groups, nil
}

// MarkRequested flips every recommendation row sharing the catalog ID to the
// requested state and stamps a fresh check time. One broker request covers all
// copies of the same title, regardless of which seed produced them. Returns
// the number of rows updated.
func (s *Store) MarkRequested(ctx context.Context, tmdbID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE recommendations SET availability = 'requested', checked_at = ?
		WHERE tmdb_id = ?`, formatTime(time.Now().UTC()), tmdbID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
