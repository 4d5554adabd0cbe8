package store

import (
	"context"
	"sync"

	"nomadpool/internal/claims/models"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/sentinel"
)

// InMemory keeps claims in a map with per-policy and per-claimant
// indexes. IDs are sequential from 1; reads return copies.
type InMemory struct {
	mu         sync.RWMutex
	seq        uint64
	claims     map[domain.ClaimID]*models.Claim
	byPolicy   map[domain.PolicyID][]domain.ClaimID
	byClaimant map[domain.Principal][]domain.ClaimID
}

func NewInMemory() *InMemory {
	return &InMemory{
		claims:     make(map[domain.ClaimID]*models.Claim),
		byPolicy:   make(map[domain.PolicyID][]domain.ClaimID),
		byClaimant: make(map[domain.Principal][]domain.ClaimID),
	}
}

func (s *InMemory) Create(_ context.Context, claim models.Claim) (models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	claim.ID = domain.ClaimID(s.seq)
	stored := claim
	s.claims[claim.ID] = &stored
	s.byPolicy[claim.PolicyID] = append(s.byPolicy[claim.PolicyID], claim.ID)
	s.byClaimant[claim.Claimant] = append(s.byClaimant[claim.Claimant], claim.ID)
	return claim, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ClaimID) (models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.claims[id]
	if !ok {
		return models.Claim{}, sentinel.ErrNotFound
	}
	return *stored, nil
}

func (s *InMemory) ListByPolicy(_ context.Context, id domain.PolicyID) ([]models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPolicy[id]
	out := make([]models.Claim, 0, len(ids))
	for _, claimID := range ids {
		out = append(out, *s.claims[claimID])
	}
	return out, nil
}

func (s *InMemory) ListByClaimant(_ context.Context, claimant domain.Principal) ([]models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byClaimant[claimant]
	out := make([]models.Claim, 0, len(ids))
	for _, claimID := range ids {
		out = append(out, *s.claims[claimID])
	}
	return out, nil
}

// Execute runs validate and apply atomically under the store lock.
func (s *InMemory) Execute(_ context.Context, id domain.ClaimID, validate func(models.Claim) error, apply func(*models.Claim)) (models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.claims[id]
	if !ok {
		return models.Claim{}, sentinel.ErrNotFound
	}
	if err := validate(*stored); err != nil {
		return models.Claim{}, err
	}
	apply(stored)
	return *stored, nil
}
