package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/j00les/workout-map/internal/db"
	"github.com/j00les/workout-map/internal/workout"
	"github.com/jackc/pgx/v5"
)

// Postgres keeps one jsonb document per key in workout_collections.
type Postgres struct {
	db      db.Querier
	closeFn func()
}

func NewPostgres(q db.Querier, closeFn func()) *Postgres {
	return &Postgres{db: q, closeFn: closeFn}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workout_collections (
			key        TEXT PRIMARY KEY,
			records    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, key string, records []workout.Snapshot) error {
	raw, err := encode(records)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO workout_collections (key, records, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET records=EXCLUDED.records, updated_at=EXCLUDED.updated_at
	`, key, raw)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, key string) ([]workout.Snapshot, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, `SELECT records FROM workout_collections WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decode(raw)
}

func (p *Postgres) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}
