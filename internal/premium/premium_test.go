package premium

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	locmodels "nomadpool/internal/location/models"
	locservice "nomadpool/internal/location/service"
	locstore "nomadpool/internal/location/store"
	"nomadpool/internal/platform/logger"
	"nomadpool/pkg/domain"
)

const baseRate = domain.Amount(100)

func TestFromRisk(t *testing.T) {
	calc := NewCalculator(nil, baseRate)

	tests := []struct {
		name      string
		riskScore int
		coverage  domain.Amount
		want      domain.Amount
	}{
		{"baseline risk at one unit reproduces base rate", 100, domain.Unit, baseRate},
		{"thailand: risk 150 at one unit", 150, domain.Unit, 150},
		{"risk scales linearly with coverage", 150, 2 * domain.Unit, 300},
		{"low risk floors at base rate", 1, domain.Unit, baseRate},
		{"tiny coverage floors at base rate", 500, domain.Unit / 1000, baseRate},
		{"max risk", 1000, domain.Unit, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.FromRisk(tt.riskScore, tt.coverage))
		})
	}
}

func TestDailyResolvesRegistry(t *testing.T) {
	ctx := context.Background()
	profiles := locstore.NewInMemory()
	registry := locservice.NewRegistry(profiles, logger.New())
	calc := NewCalculator(registry, baseRate)

	thailand, err := locmodels.NewProfile("thailand", 150, 10*domain.Unit, domain.Unit, "")
	require.NoError(t, err)
	require.NoError(t, profiles.Upsert(ctx, thailand))

	t.Run("prices a registered location", func(t *testing.T) {
		daily, err := calc.Daily(ctx, "thailand", domain.Unit)
		require.NoError(t, err)
		assert.Equal(t, domain.Amount(150), daily)
	})

	t.Run("rejects an unregistered location", func(t *testing.T) {
		_, err := calc.Daily(ctx, "atlantis", domain.Unit)
		require.ErrorIs(t, err, locservice.ErrUnknownLocation)
	})

	t.Run("rejects a deactivated location", func(t *testing.T) {
		thailand.Active = false
		require.NoError(t, profiles.Upsert(ctx, thailand))
		_, err := calc.Daily(ctx, "thailand", domain.Unit)
		require.ErrorIs(t, err, locservice.ErrUnknownLocation)
	})
}
