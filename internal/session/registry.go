package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/j00les/workout-map/internal/workout"
	"github.com/rs/zerolog/log"
)

// ViewsFunc builds the UI gateways for a new session.
type ViewsFunc func(sessionID string) Views

// Registry holds the live sessions. All sessions share one factory so
// workout ids stay unique across page reloads within the process, and one
// merging store so concurrent sessions never overwrite each other's saves.
type Registry struct {
	store   Store
	key     string
	views   ViewsFunc
	factory *workout.Factory
	now     func() time.Time

	mu        sync.RWMutex
	sessions  map[string]*entry
	onEnd     func(sessionID string)
	home      Geolocator
	keepAlive func(sessionID string) bool
}

type entry struct {
	ctrl     *Controller
	views    Views
	lastSeen atomic.Int64
}

func (e *entry) touch(at time.Time) { e.lastSeen.Store(at.UnixNano()) }

func NewRegistry(store Store, key string, views ViewsFunc) *Registry {
	return &Registry{
		store:    newMergingStore(store),
		key:      key,
		views:    views,
		factory:  workout.NewFactory(),
		now:      time.Now,
		sessions: map[string]*entry{},
	}
}

// UseHome sets the position source for sessions whose client reports no
// position.
func (r *Registry) UseHome(l Geolocator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.home = l
}

func (r *Registry) homeLocator() Geolocator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.home
}

// OnEnd registers a hook run after a session ends.
func (r *Registry) OnEnd(fn func(sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEnd = fn
}

// KeepAlive registers a check that spares a session from expiry, e.g. while
// a client still watches its stream.
func (r *Registry) KeepAlive(fn func(sessionID string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keepAlive = fn
}

// Open creates a session and starts it with the given position source.
func (r *Registry) Open(ctx context.Context, locator Geolocator) (*Controller, error) {
	id := uuid.NewString()
	v := r.views(id)
	ctrl := NewController(id, Deps{
		Map:      v,
		List:     v,
		Form:     v,
		Notifier: v,
		Store:    r.store,
		Locator:  locator,
		Factory:  r.factory,
		Key:      r.key,
	})

	e := &entry{ctrl: ctrl, views: v}
	e.touch(r.now())
	r.mu.Lock()
	r.sessions[id] = e
	r.mu.Unlock()

	if err := ctrl.Start(ctx); err != nil {
		r.End(id)
		return nil, err
	}
	return ctrl, nil
}

// Get looks a session up and marks it as seen.
func (r *Registry) Get(id string) (*Controller, Views, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, nil, false
	}
	e.touch(r.now())
	return e.ctrl, e.views, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// End removes a session after flushing its pending save.
func (r *Registry) End(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	onEnd := r.onEnd
	r.mu.Unlock()
	if ok {
		e.ctrl.Close()
		if onEnd != nil {
			onEnd(id)
		}
	}
	return ok
}

// Sweep ends every session not seen for longer than idle whose keep-alive
// check does not hold it open. It returns the number of sessions ended.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle).UnixNano()

	r.mu.RLock()
	keepAlive := r.keepAlive
	var stale []string
	for id, e := range r.sessions {
		if e.lastSeen.Load() >= cutoff {
			continue
		}
		if keepAlive != nil && keepAlive(id) {
			continue
		}
		stale = append(stale, id)
	}
	r.mu.RUnlock()

	ended := 0
	for _, id := range stale {
		if r.End(id) {
			ended++
		}
	}
	if ended > 0 {
		log.Info().Int("ended", ended).Dur("idle", idle).Msg("expired idle sessions")
	}
	return ended
}

// RunSweeper sweeps idle sessions every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, idle, interval time.Duration) {
	if idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*entry{}
	onEnd := r.onEnd
	r.mu.Unlock()
	for id, e := range sessions {
		e.ctrl.Close()
		if onEnd != nil {
			onEnd(id)
		}
	}
}
