package service

import (
	"context"
	"log/slog"

	dErrors "nomadpool/pkg/domain-errors"

	"nomadpool/pkg/domain"
)

const (
	// Increment is awarded once per approved claim.
	Increment = 5
	// Max caps a principal's score; awards past it are absorbed.
	Max = 100
)

// Store persists per-principal scores. Unknown principals read as zero.
type Store interface {
	Get(ctx context.Context, p domain.Principal) (int, error)
	Set(ctx context.Context, p domain.Principal, score int) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Score returns the principal's current standing. Principals with no
// history score zero.
func (s *Service) Score(ctx context.Context, p domain.Principal) (int, error) {
	score, err := s.store.Get(ctx, p)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read reputation score")
	}
	return score, nil
}

// Award bumps the principal's score after an approved claim, clamped
// at Max. Scores only rise here; rejections leave standing untouched.
func (s *Service) Award(ctx context.Context, p domain.Principal) (int, error) {
	score, err := s.store.Get(ctx, p)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read reputation score")
	}
	next := score + Increment
	if next > Max {
		next = Max
	}
	if next == score {
		return score, nil
	}
	if err := s.store.Set(ctx, p, next); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update reputation score")
	}
	s.logger.InfoContext(ctx, "reputation awarded",
		"log_type", "audit",
		"principal", p,
		"score", next,
	)
	return next, nil
}
