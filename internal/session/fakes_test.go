package session

import (
	"context"
	"errors"
	"sync"

	"github.com/j00les/workout-map/internal/shared/geo"
	"github.com/j00les/workout-map/internal/workout"
)

const testHandle MapHandle = "map-1"

type marker struct {
	at    geo.Coordinate
	label string
	kind  workout.Kind
}

type fakeViews struct {
	mu sync.Mutex

	initErr     error
	inits       []geo.Coordinate
	initCtxErrs []error
	markers     []marker
	pans        []geo.Coordinate

	rendered []workout.Snapshot
	clears   int

	formShown   bool
	shows       int
	hides       int
	validations []string
	kinds       []workout.Kind
	notices     []string

	onClick  func(geo.Coordinate) error
	onSelect func(string) error
}

func (f *fakeViews) Initialize(ctx context.Context, at geo.Coordinate) (MapHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCtxErrs = append(f.initCtxErrs, ctx.Err())
	if f.initErr != nil {
		return "", f.initErr
	}
	f.inits = append(f.inits, at)
	return testHandle, nil
}

func (f *fakeViews) PlaceMarker(h MapHandle, at geo.Coordinate, label string, kind workout.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h != testHandle {
		return errors.New("bad handle")
	}
	f.markers = append(f.markers, marker{at: at, label: label, kind: kind})
	return nil
}

func (f *fakeViews) PanTo(h MapHandle, at geo.Coordinate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h != testHandle {
		return errors.New("bad handle")
	}
	f.pans = append(f.pans, at)
	return nil
}

func (f *fakeViews) OnClick(_ MapHandle, fn func(geo.Coordinate) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onClick = fn
}

func (f *fakeViews) Render(s workout.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rendered = append(f.rendered, s)
	return nil
}

func (f *fakeViews) ClearAll() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.rendered = nil
	return nil
}

func (f *fakeViews) OnEntrySelected(fn func(string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSelect = fn
}

func (f *fakeViews) ShowForm() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formShown = true
	f.shows++
}

func (f *fakeViews) HideForm() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formShown = false
	f.hides++
}

func (f *fakeViews) ShowValidationError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validations = append(f.validations, msg)
}

func (f *fakeViews) ToggleKind(kind workout.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
}

func (f *fakeViews) Notify(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, msg)
}

func (f *fakeViews) Click(at geo.Coordinate) error {
	f.mu.Lock()
	fn := f.onClick
	f.mu.Unlock()
	if fn == nil {
		return &IllegalStateError{Op: "map click", Reason: "map is not ready"}
	}
	return fn(at)
}

func (f *fakeViews) Select(id string) error {
	f.mu.Lock()
	fn := f.onSelect
	f.mu.Unlock()
	if fn == nil {
		return &IllegalStateError{Op: "select workout", Reason: "list is not ready"}
	}
	return fn(id)
}

type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]workout.Snapshot
	saves   int
	saveErr error
	loadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]workout.Snapshot{}}
}

func (s *fakeStore) Save(_ context.Context, key string, records []workout.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[key] = append([]workout.Snapshot(nil), records...)
	return nil
}

func (s *fakeStore) Load(_ context.Context, key string) ([]workout.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]workout.Snapshot(nil), s.data[key]...), nil
}

func (s *fakeStore) saved(key string) ([]workout.Snapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], s.saves
}

// pendingLocator holds the request until the test answers it.
type pendingLocator struct {
	onSuccess func(geo.Coordinate)
	onFailure func(error)
}

func (p *pendingLocator) RequestPosition(onSuccess func(geo.Coordinate), onFailure func(error)) {
	p.onSuccess, p.onFailure = onSuccess, onFailure
}

func amount(v float64) *float64 { return &v }

var london = geo.Coordinate{Lat: 51.5, Lng: -0.12}
