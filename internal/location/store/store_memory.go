package store

import (
	"context"
	"sync"

	"nomadpool/internal/location/models"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/sentinel"
)

// InMemory keeps location profiles in a mutex-guarded map. Reads observe the
// latest committed write; callers receive copies.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[domain.LocationKey]*models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[domain.LocationKey]*models.Profile)}
}

func (s *InMemory) Upsert(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.profiles[profile.Key] = &copied
	return nil
}

func (s *InMemory) FindByKey(_ context.Context, key domain.LocationKey) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		copied := *profile
		out = append(out, &copied)
	}
	return out, nil
}
