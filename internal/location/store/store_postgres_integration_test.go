//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadpool/internal/location/models"
	"nomadpool/internal/location/store"
	"nomadpool/pkg/platform/sentinel"
	"nomadpool/pkg/testutil/containers"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db := containers.StartPostgres(t)
	s := store.NewPostgres(db)
	require.NoError(t, s.EnsureSchema(ctx))

	profile, err := models.NewProfile("lisbon", 90, 5_000_000, 400_000, "mild winters")
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, profile))

	got, err := s.FindByKey(ctx, "lisbon")
	require.NoError(t, err)
	assert.Equal(t, 90, got.RiskScore)
	assert.True(t, got.Active)

	profile.RiskScore = 140
	profile.Active = false
	require.NoError(t, s.Upsert(ctx, profile))

	got, err = s.FindByKey(ctx, "lisbon")
	require.NoError(t, err)
	assert.Equal(t, 140, got.RiskScore)
	assert.False(t, got.Active)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.FindByKey(ctx, "atlantis")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
