package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	eventKeyPrefix = "billing:event:"
	eventTTL       = 72 * time.Hour
)

// Idempotency remembers which provider events were already applied.
type Idempotency interface {
	// Remember returns false when id was seen before.
	Remember(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

type RedisIdempotency struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisIdempotency(rdb *redis.Client) *RedisIdempotency {
	return &RedisIdempotency{redis: rdb, ttl: eventTTL}
}

func (r *RedisIdempotency) Remember(ctx context.Context, id string) (bool, error) {
	ok, err := r.redis.SetNX(ctx, eventKeyPrefix+id, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("remember billing event %s: %w", id, err)
	}
	return ok, nil
}

func (r *RedisIdempotency) Forget(ctx context.Context, id string) error {
	if err := r.redis.Del(ctx, eventKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("forget billing event %s: %w", id, err)
	}
	return nil
}
