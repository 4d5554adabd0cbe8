package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/sentinel"
)

const keyPrefix = "reputation:"

// Redis persists reputation scores as plain integer keys. Scores are
// small and written rarely, so no pipelining or hashing is needed.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func key(p domain.Principal) string {
	return keyPrefix + string(p)
}

func (s *Redis) Get(ctx context.Context, p domain.Principal) (int, error) {
	score, err := s.client.Get(ctx, key(p)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reputation get: %w: %v", sentinel.ErrUnavailable, err)
	}
	return score, nil
}

func (s *Redis) Set(ctx context.Context, p domain.Principal, score int) error {
	if err := s.client.Set(ctx, key(p), score, 0).Err(); err != nil {
		return fmt.Errorf("reputation set: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
