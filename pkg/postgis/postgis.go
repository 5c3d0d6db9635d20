// Package postgis stores gazetteer places in PostgreSQL/PostGIS and serves
// name and nearest-place lookups from it.
package postgis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/models"
	_ "github.com/lib/pq"
)

const batchSize = 10000

type PlaceStore struct {
	db *sql.DB
}

// DSN builds a lib/pq connection string
func DSN(host, user, password, dbname string, port int) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// NewPlaceStore opens and pings a PostGIS database
func NewPlaceStore(dsn string) (*PlaceStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PlaceStore{db: db}, nil
}

// InitSchema recreates the places table
func (s *PlaceStore) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		`DROP TABLE IF EXISTS places;`,
		`CREATE TABLE places (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location GEOMETRY(POINT, 4326) NOT NULL
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// CreateIndexes adds the GIST index used by Nearest and a lower(name) index
func (s *PlaceStore) CreateIndexes(ctx context.Context) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_places_location ON places USING GIST(location);`,
		`CREATE INDEX IF NOT EXISTS idx_places_name ON places (lower(name));`,
		`ANALYZE places;`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}
	return nil
}

// BulkInsertPlaces inserts places in committed batches. Places without a
// location are skipped. It returns the number inserted.
func (s *PlaceStore) BulkInsertPlaces(ctx context.Context, places []*models.Place) (int, error) {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO places (id, name, location)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326))
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	txStmt := tx.StmtContext(ctx, stmt)

	inserted := 0
	for _, place := range places {
		if place == nil || place.Location == nil {
			continue
		}
		if _, err := txStmt.ExecContext(ctx, place.ID, place.Name, place.Location.Lng, place.Location.Lat); err != nil {
			tx.Rollback()
			return inserted, fmt.Errorf("failed to insert place %s: %w", place.ID, err)
		}
		inserted++

		if inserted%batchSize == 0 {
			if err := tx.Commit(); err != nil {
				return inserted, fmt.Errorf("failed to commit batch: %w", err)
			}
			tx, err = s.db.BeginTx(ctx, nil)
			if err != nil {
				return inserted, fmt.Errorf("failed to begin new transaction: %w", err)
			}
			txStmt = tx.StmtContext(ctx, stmt)
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit final batch: %w", err)
	}
	return inserted, nil
}

// Geocode returns the location of the place whose name contains query,
// preferring the shortest such name.
func (s *PlaceStore) Geocode(ctx context.Context, query string) (models.GeoPoint, error) {
	pattern, ok := likePattern(query)
	if !ok {
		return models.GeoPoint{}, geocode.ErrEmptyQuery
	}

	var p models.GeoPoint
	err := s.db.QueryRowContext(ctx, `
		SELECT ST_Y(location), ST_X(location)
		FROM places
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY length(name), name
		LIMIT 1
	`, pattern).Scan(&p.Lat, &p.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GeoPoint{}, geocode.ErrNoMatch
	}
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to geocode %q: %w", query, err)
	}
	return p, nil
}

// Nearest returns up to k places ordered by distance from point
func (s *PlaceStore) Nearest(ctx context.Context, point models.GeoPoint, k int) ([]*models.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, ST_Y(location), ST_X(location)
		FROM places
		ORDER BY location <-> ST_SetSRID(ST_MakePoint($1, $2), 4326)
		LIMIT $3
	`, point.Lng, point.Lat, k)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []*models.Place
	for rows.Next() {
		place := &models.Place{Location: &models.GeoPoint{}}
		if err := rows.Scan(&place.ID, &place.Name, &place.Location.Lat, &place.Location.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Count returns the number of stored places
func (s *PlaceStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM places").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}

// Stats reports table and index sizes for the load tool
func (s *PlaceStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var dbSize string
	err := s.db.QueryRowContext(ctx, `SELECT pg_size_pretty(pg_database_size(current_database()))`).Scan(&dbSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get database size: %w", err)
	}
	stats["database_size"] = dbSize

	var tableSize, indexSize string
	err = s.db.QueryRowContext(ctx, `
		SELECT
			pg_size_pretty(pg_total_relation_size('places')),
			pg_size_pretty(pg_indexes_size('places'))
	`).Scan(&tableSize, &indexSize)
	if err != nil {
		// Table might not exist yet
		stats["table_size"] = "0 bytes"
		stats["index_size"] = "0 bytes"
	} else {
		stats["table_size"] = tableSize
		stats["index_size"] = indexSize
	}

	count, _ := s.Count(ctx)
	stats["row_count"] = count

	return stats, nil
}

func (s *PlaceStore) Close() error {
	return s.db.Close()
}

// likePattern turns a free-text query into an escaped ILIKE substring
// pattern. It reports false for a blank query.
func likePattern(query string) (string, bool) {
	q := strings.Join(strings.Fields(query), " ")
	if q == "" {
		return "", false
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + escaped + "%", true
}
