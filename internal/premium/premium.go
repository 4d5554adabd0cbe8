// Package premium computes location-priced daily premiums.
package premium

import (
	"context"

	locmodels "nomadpool/internal/location/models"
	"nomadpool/pkg/domain"
)

// RiskBaseline is the risk score at which one unit of coverage costs exactly
// the base rate per day.
const RiskBaseline = 100

// Registry resolves location profiles for pricing.
type Registry interface {
	Active(ctx context.Context, key domain.LocationKey) (*locmodels.Profile, error)
}

// Calculator prices coverage. Pure and deterministic: the only inputs are
// the profile's risk score, the coverage amount and the configured base rate.
type Calculator struct {
	registry Registry
	baseRate domain.Amount
}

func NewCalculator(registry Registry, baseRate domain.Amount) *Calculator {
	return &Calculator{registry: registry, baseRate: baseRate}
}

// Daily resolves the location and prices one day of coverage. Fails with the
// registry's unknown-location error if the key is unregistered or inactive.
func (c *Calculator) Daily(ctx context.Context, key domain.LocationKey, coverage domain.Amount) (domain.Amount, error) {
	profile, err := c.registry.Active(ctx, key)
	if err != nil {
		return 0, err
	}
	return c.FromRisk(profile.RiskScore, coverage), nil
}

// FromProfile prices one day of coverage for an already-loaded profile.
func (c *Calculator) FromProfile(profile *locmodels.Profile, coverage domain.Amount) domain.Amount {
	return c.FromRisk(profile.RiskScore, coverage)
}

// FromRisk is the linear premium formula, floored at the base rate so no
// policy is free:
//
//	premium = baseRate * riskScore * coverage / (RiskBaseline * Unit)
func (c *Calculator) FromRisk(riskScore int, coverage domain.Amount) domain.Amount {
	premium := c.baseRate * domain.Amount(riskScore) * coverage / (RiskBaseline * domain.Unit)
	if premium < c.baseRate {
		return c.baseRate
	}
	return premium
}
