package store

import (
	"context"

	"nomadpool/internal/location/models"
	"nomadpool/pkg/domain"
)

// ProfileWriter is the subset of the store seeding needs.
type ProfileWriter interface {
	Upsert(ctx context.Context, profile *models.Profile) error
}

// Seed loads the static location table. Risk data ingestion is out of scope;
// these are the launch locations with hand-set parameters.
func Seed(ctx context.Context, store ProfileWriter) error {
	seeds := []struct {
		key          domain.LocationKey
		riskScore    int
		maxCoverage  domain.Amount
		averageClaim domain.Amount
		note         string
	}{
		{"thailand", 150, 10 * domain.Unit, 1 * domain.Unit, "monsoon season, motorbike accidents"},
		{"portugal", 80, 20 * domain.Unit, 1 * domain.Unit, "low crime, good healthcare access"},
		{"indonesia", 220, 8 * domain.Unit, 2 * domain.Unit, "volcanic and seismic activity"},
		{"mexico", 180, 12 * domain.Unit, 1 * domain.Unit, "petty theft in tourist corridors"},
		{"georgia", 120, 15 * domain.Unit, 1 * domain.Unit, "mountain travel, limited rural clinics"},
	}

	for _, s := range seeds {
		profile, err := models.NewProfile(s.key, s.riskScore, s.maxCoverage, s.averageClaim, s.note)
		if err != nil {
			return err
		}
		if err := store.Upsert(ctx, profile); err != nil {
			return err
		}
	}
	return nil
}
