package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/j00les/workout-map/internal/workout"
	"github.com/redis/go-redis/v9"
)

// Redis stores each collection as one JSON string value.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Save(ctx context.Context, key string, records []workout.Snapshot) error {
	raw, err := encode(records)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, key string) ([]workout.Snapshot, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decode(raw)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
