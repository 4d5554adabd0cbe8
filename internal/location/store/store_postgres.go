package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nomadpool/internal/location/models"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/sentinel"
)

// Postgres persists location profiles in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the backing table if missing. The registry is small
// enough that a migration tool would be ceremony.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS location_profiles (
    location_key  TEXT PRIMARY KEY,
    risk_score    INTEGER NOT NULL,
    max_coverage  BIGINT NOT NULL,
    average_claim BIGINT NOT NULL,
    active        BOOLEAN NOT NULL,
    risk_note     TEXT NOT NULL DEFAULT '',
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure location_profiles schema: %w", err)
	}
	return nil
}

func (s *Postgres) Upsert(ctx context.Context, profile *models.Profile) error {
	const query = `
INSERT INTO location_profiles (location_key, risk_score, max_coverage, average_claim, active, risk_note, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (location_key) DO UPDATE SET
    risk_score    = EXCLUDED.risk_score,
    max_coverage  = EXCLUDED.max_coverage,
    average_claim = EXCLUDED.average_claim,
    active        = EXCLUDED.active,
    risk_note     = EXCLUDED.risk_note,
    updated_at    = now()`
	_, err := s.db.ExecContext(ctx, query,
		profile.Key.String(),
		profile.RiskScore,
		int64(profile.MaxCoverage),
		int64(profile.AverageClaim),
		profile.Active,
		profile.RiskNote,
	)
	if err != nil {
		return fmt.Errorf("upsert location %q: %w", profile.Key, err)
	}
	return nil
}

func (s *Postgres) FindByKey(ctx context.Context, key domain.LocationKey) (*models.Profile, error) {
	const query = `
SELECT location_key, risk_score, max_coverage, average_claim, active, risk_note
FROM location_profiles
WHERE location_key = $1`
	row := s.db.QueryRowContext(ctx, query, key.String())

	var profile models.Profile
	var rawKey string
	var maxCoverage, averageClaim int64
	err := row.Scan(&rawKey, &profile.RiskScore, &maxCoverage, &averageClaim, &profile.Active, &profile.RiskNote)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find location %q: %w", key, err)
	}
	profile.Key = domain.LocationKey(rawKey)
	profile.MaxCoverage = domain.Amount(maxCoverage)
	profile.AverageClaim = domain.Amount(averageClaim)
	return &profile, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Profile, error) {
	const query = `
SELECT location_key, risk_score, max_coverage, average_claim, active, risk_note
FROM location_profiles
ORDER BY location_key`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		var profile models.Profile
		var rawKey string
		var maxCoverage, averageClaim int64
		if err := rows.Scan(&rawKey, &profile.RiskScore, &maxCoverage, &averageClaim, &profile.Active, &profile.RiskNote); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		profile.Key = domain.LocationKey(rawKey)
		profile.MaxCoverage = domain.Amount(maxCoverage)
		profile.AverageClaim = domain.Amount(averageClaim)
		out = append(out, &profile)
	}
	return out, rows.Err()
}
