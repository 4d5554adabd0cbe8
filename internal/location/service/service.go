package service

import (
	"context"
	"errors"
	"log/slog"

	"nomadpool/internal/location/models"
	"nomadpool/pkg/domain"
	dErrors "nomadpool/pkg/domain-errors"
	"nomadpool/pkg/platform/sentinel"
	"nomadpool/pkg/requestcontext"
)

// ErrUnknownLocation is returned for unregistered or deactivated locations.
var ErrUnknownLocation = dErrors.New(dErrors.CodeNotFound, "location is not registered or not active")

// ProfileStore abstracts profile persistence.
type ProfileStore interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	FindByKey(ctx context.Context, key domain.LocationKey) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
}

// Registry serves per-location risk parameters. Everything outside registry
// administration treats profiles as read-only.
type Registry struct {
	profiles ProfileStore
	logger   *slog.Logger
}

func NewRegistry(profiles ProfileStore, logger *slog.Logger) *Registry {
	return &Registry{profiles: profiles, logger: logger}
}

// Get returns the profile for a key regardless of active state; callers that
// need an insurable location use Active.
func (r *Registry) Get(ctx context.Context, key domain.LocationKey) (*models.Profile, error) {
	profile, err := r.profiles.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUnknownLocation
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load location")
	}
	return profile, nil
}

// Active returns the profile only if the location is registered and active.
func (r *Registry) Active(ctx context.Context, key domain.LocationKey) (*models.Profile, error) {
	profile, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !profile.Active {
		return nil, ErrUnknownLocation
	}
	return profile, nil
}

// IsActive reports whether a location can back new coverage.
func (r *Registry) IsActive(ctx context.Context, key domain.LocationKey) bool {
	_, err := r.Active(ctx, key)
	return err == nil
}

// Upsert creates or replaces a profile. Admin capability is enforced at the
// transport boundary; existing policies are never touched.
func (r *Registry) Upsert(ctx context.Context, key domain.LocationKey, riskScore int, maxCoverage, averageClaim domain.Amount, active bool, note string) (*models.Profile, error) {
	profile, err := models.NewProfile(key, riskScore, maxCoverage, averageClaim, note)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	profile.Active = active

	if err := r.profiles.Upsert(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store location profile")
	}

	r.logger.InfoContext(ctx, "location profile upserted",
		"request_id", requestcontext.RequestID(ctx),
		"location", key.String(),
		"risk_score", riskScore,
		"active", active,
		"log_type", "audit",
	)
	return profile, nil
}

// List returns all registered profiles.
func (r *Registry) List(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := r.profiles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list locations")
	}
	return profiles, nil
}
