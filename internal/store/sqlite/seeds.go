package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
)

// seedColumns is the ordered list of columns selected in seed queries.
// Must match the scan order in scanSeed.
const seedColumns = `id, provider_id, title, kind, rating, rated_at, year,
	tmdb_id, poster_url, summary, section_title, genre, synced_at`

// scanSeed scans a sql.Row (or sql.Rows via its Scan method) into a domain.SeedItem.
func scanSeed(scanner interface{ Scan(dest ...any) error }) (*domain.SeedItem, error) {
	var item domain.SeedItem

	var (
		posterURL    sql.NullString
		summary      sql.NullString
		sectionTitle sql.NullString
		genre        sql.NullString
		syncedAt     string
	)

	err := scanner.Scan(
		&item.ID,
		&item.ProviderID,
		&item.Title,
		&item.Kind,
		&item.Rating,
		&item.RatedAt,
		&item.Year,
		&item.TMDBID,
		&posterURL,
		&summary,
		&sectionTitle,
		&genre,
		&syncedAt,
	)
	if err != nil {
		return nil, err
	}

	item.SyncedAt, err = parseTime(syncedAt)
	if err != nil {
		return nil, err
	}

	if posterURL.Valid {
		item.PosterURL = posterURL.String
	}
	if summary.Valid {
		item.Summary = summary.String
	}
	if sectionTitle.Valid {
		item.SectionTitle = sectionTitle.String
	}
	if genre.Valid {
		item.Genre = genre.String
	}

	return &item, nil
}

// ReplaceLibrary replaces the entire cache with the given seed groups in a
// single transaction. A failed sync therefore never leaves the cache half
// written: either the previous snapshot survives or the new one lands whole.
func (s *Store) ReplaceLibrary(ctx context.Context, groups []domain.SeedGroup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Child rows first so the FK is never violated mid-transaction.
	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations`); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM seed_items`); err != nil {
		return fmt.Errorf("clear seed_items: %w", err)
	}

	for _, group := range groups {
		if err := insertSeed(ctx, tx, &group.Seed); err != nil {
			return fmt.Errorf("insert seed %s: %w", group.Seed.ID, err)
		}
		for i := range group.Recommendations {
			if err := insertRecommendation(ctx, tx, &group.Recommendations[i]); err != nil {
				return fmt.Errorf("insert recommendation %s: %w", group.Recommendations[i].ID, err)
			}
		}
	}

	return tx.Commit()
}

func insertSeed(ctx context.Context, tx *sql.Tx, item *domain.SeedItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO seed_items (
			id, provider_id, title, kind, rating, rated_at, year,
			tmdb_id, poster_url, summary, section_title, genre, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.ProviderID,
		item.Title,
		string(item.Kind),
		item.Rating,
		item.RatedAt,
		item.Year,
		item.TMDBID,
		nullString(item.PosterURL),
		nullString(item.Summary),
		nullString(item.SectionTitle),
		nullString(item.Genre),
		formatTime(item.SyncedAt),
	)
	return err
}

// GetSeed retrieves a seed by ID.
// Returns a NOT_FOUND domain error if the seed does not exist.
func (s *Store) GetSeed(ctx context.Context, id string) (*domain.SeedItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+seedColumns+` FROM seed_items WHERE id = ?`, id)

	item, err := scanSeed(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.NotFoundf("seed %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListSeeds returns all seeds of the given kind ordered by rating timestamp,
// most recent first.
func (s *Store) ListSeeds(ctx context.Context, kind domain.MediaKind) ([]*domain.SeedItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+seedColumns+` FROM seed_items WHERE kind = ? ORDER BY rated_at DESC, title ASC`,
		string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.SeedItem
	for rows.Next() {
		item, err := scanSeed(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Reset deletes every cached row.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations`); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM seed_items`); err != nil {
		return fmt.Errorf("clear seed_items: %w", err)
	}

	return tx.Commit()
}

// Stats returns aggregate counts over the cached library.
func (s *Store) Stats(ctx context.Context) (*domain.CacheStats, error) {
	stats := &domain.CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN kind = 'movie' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'series' THEN 1 ELSE 0 END), 0)
		FROM seed_items`).Scan(&stats.Seeds, &stats.Movies, &stats.Series)
	if err != nil {
		return nil, fmt.Errorf("count seeds: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN availability = 'available' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN availability = 'requested' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN availability = 'not_requested' THEN 1 ELSE 0 END), 0)
		FROM recommendations`).Scan(
		&stats.Recommendations, &stats.Available, &stats.Requested, &stats.NotRequested)
	if err != nil {
		return nil, fmt.Errorf("count recommendations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COALESCE(section_title, ''), COUNT(*), COALESCE(AVG(rating), 0)
		FROM seed_items
		GROUP BY kind, section_title
		ORDER BY kind, section_title`)
	if err != nil {
		return nil, fmt.Errorf("section breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var section domain.SectionStats
		if err := rows.Scan(&section.Kind, &section.SectionTitle, &section.Seeds, &section.AvgRating); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		stats.Sections = append(stats.Sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var lastSynced sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT MAX(synced_at) FROM seed_items`).Scan(&lastSynced)
	if err != nil {
		return nil, fmt.Errorf("last synced: %w", err)
	}
	stats.LastSyncedAt, err = parseNullableTime(lastSynced)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
