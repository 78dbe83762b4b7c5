package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/j00les/workout-map/internal/workout"
)

// mergingStore lets several live sessions share one key. Each save reloads
// the stored collection and merges the incoming records into it by id, so
// a session only ever adds to what other sessions already saved. Stored
// order is kept and unseen records are appended in the order given.
type mergingStore struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMergingStore(store Store) *mergingStore {
	return &mergingStore{store: store, locks: map[string]*sync.Mutex{}}
}

func (m *mergingStore) keyLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

func (m *mergingStore) Save(ctx context.Context, key string, records []workout.Snapshot) error {
	l := m.keyLock(key)
	l.Lock()
	defer l.Unlock()

	stored, err := m.store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("reload %s before save: %w", key, err)
	}
	return m.store.Save(ctx, key, mergeSnapshots(stored, records))
}

func (m *mergingStore) Load(ctx context.Context, key string) ([]workout.Snapshot, error) {
	l := m.keyLock(key)
	l.Lock()
	defer l.Unlock()
	return m.store.Load(ctx, key)
}

// mergeSnapshots returns stored with every incoming record applied: known
// ids are replaced in place, new ids are appended.
func mergeSnapshots(stored, incoming []workout.Snapshot) []workout.Snapshot {
	out := make([]workout.Snapshot, 0, len(stored)+len(incoming))
	index := make(map[string]int, len(stored)+len(incoming))
	for _, s := range stored {
		index[s.ID] = len(out)
		out = append(out, s)
	}
	for _, s := range incoming {
		if i, ok := index[s.ID]; ok {
			out[i] = s
			continue
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}
