package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadpool/internal/reputation/service"
	"nomadpool/internal/reputation/store"
	"nomadpool/pkg/domain"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	return service.New(store.NewInMemory(), slog.Default())
}

func TestScoreDefaultsToZero(t *testing.T) {
	svc := newService(t)

	score, err := svc.Score(context.Background(), domain.Principal("nobody"))
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestAwardAccumulates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := domain.Principal("alice")

	for i := 1; i <= 3; i++ {
		score, err := svc.Award(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, i*service.Increment, score)
	}

	score, err := svc.Score(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 3*service.Increment, score)
}

func TestAwardClampsAtMax(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := domain.Principal("veteran")

	for i := 0; i < 25; i++ {
		_, err := svc.Award(ctx, p)
		require.NoError(t, err)
	}

	score, err := svc.Score(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, service.Max, score)
}
