package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadpool/internal/location/service"
	"nomadpool/internal/location/store"
	dErrors "nomadpool/pkg/domain-errors"
)

func newRegistry(t *testing.T) *service.Registry {
	t.Helper()
	return service.NewRegistry(store.NewInMemory(), slog.Default())
}

func TestUpsertThenGet(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	created, err := reg.Upsert(ctx, "lisbon", 90, 5_000_000, 400_000, true, "mild winters")
	require.NoError(t, err)
	assert.Equal(t, 90, created.RiskScore)

	got, err := reg.Get(ctx, "lisbon")
	require.NoError(t, err)
	assert.Equal(t, created.RiskScore, got.RiskScore)
}

func TestUpsertRejectsBadProfile(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Upsert(ctx, "lisbon", 0, 5_000_000, 0, true, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = reg.Upsert(ctx, "lisbon", 1001, 5_000_000, 0, true, "")
	assert.Error(t, err)

	_, err = reg.Upsert(ctx, "lisbon", 90, 0, 0, true, "")
	assert.Error(t, err)
}

func TestActiveFiltersDeactivated(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Upsert(ctx, "lisbon", 90, 5_000_000, 0, true, "")
	require.NoError(t, err)
	_, err = reg.Active(ctx, "lisbon")
	require.NoError(t, err)
	assert.True(t, reg.IsActive(ctx, "lisbon"))

	_, err = reg.Upsert(ctx, "lisbon", 90, 5_000_000, 0, false, "suspended")
	require.NoError(t, err)

	_, err = reg.Active(ctx, "lisbon")
	assert.ErrorIs(t, err, service.ErrUnknownLocation)
	assert.False(t, reg.IsActive(ctx, "lisbon"))

	// Get still serves the record for administration
	got, err := reg.Get(ctx, "lisbon")
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestUnknownLocation(t *testing.T) {
	reg := newRegistry(t)

	_, err := reg.Get(context.Background(), "atlantis")
	assert.ErrorIs(t, err, service.ErrUnknownLocation)
}
