package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"taskmanager/internal/core/domain"
)

// RedisResolver looks sessions up in the shared Redis store.
type RedisResolver struct {
	client *redis.Client
}

func NewRedisResolver(client *redis.Client) *RedisResolver {
	return &RedisResolver{client: client}
}

func (r *RedisResolver) Resolve(ctx context.Context, sessionId string) (int, error) {
	if sessionId == "" {
		return 0, domain.ErrNoSession
	}

	raw, err := r.client.Get(ctx, Key(sessionId)).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrNoSession
		}

		return 0, fmt.Errorf("%w: %v", domain.ErrSessionStoreUnavailable, err)
	}

	return parseUserId(raw)
}
