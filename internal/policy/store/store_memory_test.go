package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadpool/internal/policy/models"
	"nomadpool/internal/policy/store"
	"nomadpool/pkg/domain"
	dErrors "nomadpool/pkg/domain-errors"
	"nomadpool/pkg/platform/sentinel"
)

func newPolicy(owner domain.Principal) models.Policy {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return models.NewPolicy(owner, "thailand", 5*domain.Unit, 150, 150, start, 30)
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	s := store.NewInMemory()
	ctx := context.Background()

	first, err := s.Create(ctx, newPolicy("alice"))
	require.NoError(t, err)
	second, err := s.Create(ctx, newPolicy("alice"))
	require.NoError(t, err)

	assert.Equal(t, domain.PolicyID(1), first.ID)
	assert.Equal(t, domain.PolicyID(2), second.ID)
}

func TestFindByIDReturnsCopy(t *testing.T) {
	s := store.NewInMemory()
	ctx := context.Background()

	created, err := s.Create(ctx, newPolicy("alice"))
	require.NoError(t, err)

	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	got.Status = models.StatusCancelled

	again, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, again.Status, "mutating a returned copy must not touch the store")
}

func TestFindByIDUnknown(t *testing.T) {
	s := store.NewInMemory()

	_, err := s.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestListByOwnerScopes(t *testing.T) {
	s := store.NewInMemory()
	ctx := context.Background()

	_, err := s.Create(ctx, newPolicy("alice"))
	require.NoError(t, err)
	_, err = s.Create(ctx, newPolicy("alice"))
	require.NoError(t, err)
	_, err = s.Create(ctx, newPolicy("bob"))
	require.NoError(t, err)

	mine, err := s.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := s.ListByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExecuteValidatesBeforeApplying(t *testing.T) {
	s := store.NewInMemory()
	ctx := context.Background()

	created, err := s.Create(ctx, newPolicy("alice"))
	require.NoError(t, err)

	reject := dErrors.New(dErrors.CodeConflict, "not now")
	_, err = s.Execute(ctx, created.ID,
		func(models.Policy) error { return reject },
		func(p *models.Policy) { p.Status = models.StatusCancelled },
	)
	assert.ErrorIs(t, err, reject)

	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)

	updated, err := s.Execute(ctx, created.ID,
		func(models.Policy) error { return nil },
		func(p *models.Policy) { p.Status = models.StatusCancelled },
	)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
}
