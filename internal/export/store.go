package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jfmyers9/muspy/pkg/muspy"
	_ "modernc.org/sqlite"
)

// Store writes release listings to a SQLite file
type Store struct {
	db *sql.DB
}

// ExportedRelease is a release row read back from the store
type ExportedRelease struct {
	muspy.ReleaseInfo

	// ReleasedAt is the parsed release date, zero when Date could not be
	// parsed
	ReleasedAt time.Time
	ExportedAt time.Time
}

// NewStore opens or creates a release export at dbPath
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps in-memory databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS artists (
			mbid TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sort_name TEXT NOT NULL,
			disambiguation TEXT
		);

		CREATE TABLE IF NOT EXISTS releases (
			mbid TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT,
			date TEXT,
			released_at INTEGER,
			artist_mbid TEXT NOT NULL REFERENCES artists(mbid),
			exported_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_released_at ON releases(released_at);
		CREATE INDEX IF NOT EXISTS idx_artist ON releases(artist_mbid);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddReleases writes releases and their artists in one transaction. A
// release that is already present is replaced.
func (s *Store) AddReleases(ctx context.Context, releases []muspy.ReleaseInfo) error {
	if len(releases) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	artistStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO artists (mbid, name, sort_name, disambiguation)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(mbid) DO UPDATE SET
			name = excluded.name,
			sort_name = excluded.sort_name,
			disambiguation = excluded.disambiguation
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer artistStmt.Close()

	releaseStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO releases (mbid, name, type, date, released_at, artist_mbid)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer releaseStmt.Close()

	for _, r := range releases {
		a := r.Artist
		if _, err := artistStmt.ExecContext(ctx, a.MBID, a.Name, a.SortName, a.Disambiguation); err != nil {
			return fmt.Errorf("failed to insert artist %s: %w", a.MBID, err)
		}

		var releasedAt sql.NullInt64
		if t, err := r.ReleaseTime(); err == nil {
			releasedAt = sql.NullInt64{Int64: t.Unix(), Valid: true}
		}

		if _, err := releaseStmt.ExecContext(ctx, r.MBID, r.Name, string(r.Type), r.Date, releasedAt, a.MBID); err != nil {
			return fmt.Errorf("failed to insert release %s: %w", r.MBID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAll retrieves all releases, newest first. Releases without a
// parseable date come last.
func (s *Store) GetAll(ctx context.Context) ([]ExportedRelease, error) {
	return s.query(ctx, "")
}

// GetByArtist retrieves the releases of one artist, newest first
func (s *Store) GetByArtist(ctx context.Context, artistMBID string) ([]ExportedRelease, error) {
	return s.query(ctx, "WHERE r.artist_mbid = ?", artistMBID)
}

func (s *Store) query(ctx context.Context, where string, args ...interface{}) ([]ExportedRelease, error) {
	query := `
		SELECT r.mbid, r.name, COALESCE(r.type, ''), COALESCE(r.date, ''), r.released_at, r.exported_at,
			a.mbid, a.name, a.sort_name, COALESCE(a.disambiguation, '')
		FROM releases r
		JOIN artists a ON a.mbid = r.artist_mbid
		` + where + `
		ORDER BY r.released_at IS NULL, r.released_at DESC, r.mbid
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	var releases []ExportedRelease
	for rows.Next() {
		var r ExportedRelease
		var releaseType string
		var releasedAt sql.NullInt64
		var exportedAt int64

		err := rows.Scan(
			&r.MBID,
			&r.Name,
			&releaseType,
			&r.Date,
			&releasedAt,
			&exportedAt,
			&r.Artist.MBID,
			&r.Artist.Name,
			&r.Artist.SortName,
			&r.Artist.Disambiguation,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}

		r.Type = muspy.ReleaseType(releaseType)
		if releasedAt.Valid {
			r.ReleasedAt = time.Unix(releasedAt.Int64, 0).UTC()
		}
		r.ExportedAt = time.Unix(exportedAt, 0)

		releases = append(releases, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating releases: %w", err)
	}

	return releases, nil
}

// Count returns the number of exported releases
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM releases").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count releases: %w", err)
	}

	return count, nil
}

// Cleanup removes releases exported before the given age and returns how
// many were deleted
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := s.db.ExecContext(ctx, "DELETE FROM releases WHERE exported_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old releases: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
