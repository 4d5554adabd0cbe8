package store

import (
	"context"
	"sync"

	"nomadpool/pkg/domain"
)

// InMemory keeps reputation scores in a mutex-guarded map. Unknown
// principals score zero; there is no record to create first.
type InMemory struct {
	mu     sync.RWMutex
	scores map[domain.Principal]int
}

func NewInMemory() *InMemory {
	return &InMemory{scores: make(map[domain.Principal]int)}
}

func (s *InMemory) Get(_ context.Context, p domain.Principal) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[p], nil
}

func (s *InMemory) Set(_ context.Context, p domain.Principal, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[p] = score
	return nil
}
