package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/j00les/workout-map/internal/workout"
	"github.com/vmihailenco/msgpack/v5"
)

const badgerPrefix = "WORKOUTS"

// Badger stores msgpack-encoded collections in an embedded badger database.
type Badger struct {
	db *badger.DB
}

func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func (b *Badger) buildKey(key string) []byte {
	return []byte(fmt.Sprintf("%s/%s", badgerPrefix, key))
}

func (b *Badger) Save(_ context.Context, key string, records []workout.Snapshot) error {
	if records == nil {
		records = []workout.Snapshot{}
	}
	buf, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal workouts: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.buildKey(key), buf)
	})
}

func (b *Badger) Load(_ context.Context, key string) ([]workout.Snapshot, error) {
	var records []workout.Snapshot
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.buildKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &records)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workouts %s: %w", key, err)
	}
	return records, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
