package store

import (
	"context"
	"sync"

	"nomadpool/internal/policy/models"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/sentinel"
)

// InMemory keeps policies in a map with a per-owner index. IDs are
// assigned sequentially starting at 1. All reads return copies.
type InMemory struct {
	mu       sync.RWMutex
	seq      uint64
	policies map[domain.PolicyID]*models.Policy
	byOwner  map[domain.Principal][]domain.PolicyID
}

func NewInMemory() *InMemory {
	return &InMemory{
		policies: make(map[domain.PolicyID]*models.Policy),
		byOwner:  make(map[domain.Principal][]domain.PolicyID),
	}
}

func (s *InMemory) Create(_ context.Context, policy models.Policy) (models.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	policy.ID = domain.PolicyID(s.seq)
	stored := policy
	s.policies[policy.ID] = &stored
	s.byOwner[policy.Owner] = append(s.byOwner[policy.Owner], policy.ID)
	return policy, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.PolicyID) (models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.policies[id]
	if !ok {
		return models.Policy{}, sentinel.ErrNotFound
	}
	return *stored, nil
}

func (s *InMemory) ListByOwner(_ context.Context, owner domain.Principal) ([]models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[owner]
	out := make([]models.Policy, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.policies[id])
	}
	return out, nil
}

// Execute runs validate against the current record and, if it passes,
// applies the mutation in place. The whole read-check-write happens
// under the store lock so concurrent updates cannot interleave.
func (s *InMemory) Execute(_ context.Context, id domain.PolicyID, validate func(models.Policy) error, apply func(*models.Policy)) (models.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.policies[id]
	if !ok {
		return models.Policy{}, sentinel.ErrNotFound
	}
	if err := validate(*stored); err != nil {
		return models.Policy{}, err
	}
	apply(stored)
	return *stored, nil
}
