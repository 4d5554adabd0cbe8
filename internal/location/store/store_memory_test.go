package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"nomadpool/internal/location/models"
	"nomadpool/internal/location/store"
	"nomadpool/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *store.InMemory
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = store.NewInMemory()
}

func (s *MemoryStoreSuite) TestUpsertAndFind() {
	profile, err := models.NewProfile("lisbon", 90, 5_000_000, 400_000, "mild winters")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Upsert(context.Background(), profile))

	got, err := s.store.FindByKey(context.Background(), "lisbon")
	s.Require().NoError(err)
	s.Equal(90, got.RiskScore)

	// returned profiles are copies
	got.RiskScore = 900
	again, err := s.store.FindByKey(context.Background(), "lisbon")
	s.Require().NoError(err)
	s.Equal(90, again.RiskScore)
}

func (s *MemoryStoreSuite) TestUpsertOverwrites() {
	ctx := context.Background()

	first, err := models.NewProfile("lisbon", 90, 5_000_000, 400_000, "")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Upsert(ctx, first))

	second, err := models.NewProfile("lisbon", 140, 5_000_000, 400_000, "wildfire season")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Upsert(ctx, second))

	got, err := s.store.FindByKey(ctx, "lisbon")
	s.Require().NoError(err)
	s.Equal(140, got.RiskScore)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *MemoryStoreSuite) TestFindUnknown() {
	_, err := s.store.FindByKey(context.Background(), "atlantis")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestSeed() {
	ctx := context.Background()
	s.Require().NoError(store.Seed(ctx, s.store))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.NotEmpty(all)

	got, err := s.store.FindByKey(ctx, "thailand")
	s.Require().NoError(err)
	s.True(got.Active)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}
