package session

import (
	"context"
	"sync"
	"time"

	"github.com/j00les/workout-map/internal/workout"
	"github.com/rs/zerolog"
)

const saveTimeout = 5 * time.Second

// persister writes collection snapshots in the background. Only the latest
// submitted snapshot is kept, so a slow store never sees stale writes
// queued behind newer ones. Failures are logged and dropped.
type persister struct {
	store  Store
	key    string
	logger zerolog.Logger

	mu     sync.Mutex
	latest []workout.Snapshot
	dirty  bool

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newPersister(store Store, key string, logger zerolog.Logger) *persister {
	p := &persister{
		store:  store,
		key:    key,
		logger: logger,
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) submit(records []workout.Snapshot) {
	p.mu.Lock()
	p.latest = records
	p.dirty = true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.quit:
			p.flush()
			return
		}
	}
}

func (p *persister) flush() {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return
	}
	records := p.latest
	p.dirty = false
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := p.store.Save(ctx, p.key, records); err != nil {
		p.logger.Error().Err(err).Str("key", p.key).Int("records", len(records)).Msg("persist failed")
		return
	}
	p.logger.Debug().Str("key", p.key).Int("records", len(records)).Msg("persisted workouts")
}

// close writes any pending snapshot and stops the worker.
func (p *persister) close() {
	p.closeOnce.Do(func() {
		close(p.quit)
		<-p.done
	})
}
