package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/j00les/workout-map/internal/config"
	"github.com/j00les/workout-map/internal/db"
	"github.com/j00les/workout-map/internal/workout"
)

// Backend is a workout store that owns its connection.
type Backend interface {
	Save(ctx context.Context, key string, records []workout.Snapshot) error
	Load(ctx context.Context, key string) ([]workout.Snapshot, error)
	Close() error
}

var (
	connectPostgresFn = db.ConnectPostgres
	connectRedisFn    = db.ConnectRedis
	openBadgerFn      = db.OpenBadger
)

// Open connects the backend named by STORE_BACKEND.
func Open(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.StoreBackend {
	case "", config.BackendMemory:
		return NewMemory(), nil
	case config.BackendRedis:
		client := connectRedisFn(cfg)
		if client == nil {
			return nil, fmt.Errorf("redis backend needs REDIS_ADDR")
		}
		return NewRedis(client), nil
	case config.BackendPostgres:
		pool, err := connectPostgresFn(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		pg := NewPostgres(pool, pool.Close)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pg, nil
	case config.BackendBadger:
		bdb, err := openBadgerFn(cfg)
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		return NewBadger(bdb), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func encode(records []workout.Snapshot) ([]byte, error) {
	if records == nil {
		records = []workout.Snapshot{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode workouts: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) ([]workout.Snapshot, error) {
	var records []workout.Snapshot
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode workouts: %w", err)
	}
	return records, nil
}
