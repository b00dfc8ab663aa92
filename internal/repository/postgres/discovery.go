package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RMahshie/satscan/internal/repository"
	"github.com/RMahshie/satscan/pkg/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS scan_discoveries (
		scan_id       BIGINT PRIMARY KEY,
		spectrum_path TEXT NOT NULL,
		parse_mode    TEXT NOT NULL,
		point_count   INTEGER NOT NULL,
		first_seen_at TIMESTAMPTZ NOT NULL,
		last_seen_at  TIMESTAMPTZ NOT NULL
	)`

// PostgresDiscoveryRepository implements DiscoveryRepository for PostgreSQL
type PostgresDiscoveryRepository struct {
	db *sql.DB
}

// NewPostgresDiscoveryRepository creates a new PostgreSQL discovery repository
func NewPostgresDiscoveryRepository(db *sql.DB) repository.DiscoveryRepository {
	return &PostgresDiscoveryRepository{db: db}
}

// EnsureSchema creates the discovery table if it does not exist
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create discovery schema: %w", err)
	}
	return nil
}

// RecordDiscovery inserts or refreshes the discovery record of a scan
func (r *PostgresDiscoveryRepository) RecordDiscovery(ctx context.Context, d *models.Discovery) error {
	query := `
		INSERT INTO scan_discoveries (scan_id, spectrum_path, parse_mode, point_count, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (scan_id) DO UPDATE
		SET spectrum_path = EXCLUDED.spectrum_path,
		    parse_mode = EXCLUDED.parse_mode,
		    point_count = EXCLUDED.point_count,
		    last_seen_at = EXCLUDED.last_seen_at`

	_, err := r.db.ExecContext(ctx, query,
		d.ScanID,
		d.SpectrumPath,
		d.ParseMode,
		d.PointCount,
		d.FirstSeenAt,
		d.LastSeenAt)
	if err != nil {
		return fmt.Errorf("failed to record discovery for scan %d: %w", d.ScanID, err)
	}
	return nil
}

// GetDiscovery retrieves the discovery record of a scan
func (r *PostgresDiscoveryRepository) GetDiscovery(ctx context.Context, scanID int64) (*models.Discovery, error) {
	query := `
		SELECT scan_id, spectrum_path, parse_mode, point_count, first_seen_at, last_seen_at
		FROM scan_discoveries
		WHERE scan_id = $1`

	var d models.Discovery
	err := r.db.QueryRowContext(ctx, query, scanID).Scan(
		&d.ScanID,
		&d.SpectrumPath,
		&d.ParseMode,
		&d.PointCount,
		&d.FirstSeenAt,
		&d.LastSeenAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discovery for scan %d: %w", scanID, err)
	}
	return &d, nil
}
