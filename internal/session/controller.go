package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/j00les/workout-map/internal/shared/geo"
	"github.com/j00les/workout-map/internal/workout"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type State int

const (
	Idle State = iota
	AwaitingFormInput
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingFormInput:
		return "awaiting_form_input"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Deps struct {
	Map      MapGateway
	List     ListView
	Form     FormView
	Notifier Notifier
	Store    Store
	Locator  Geolocator
	Factory  *workout.Factory
	// Key is the persistence key the collection is saved under.
	Key string
}

// FormInput is a submitted workout form. Extra is cadence for running and
// elevation gain for cycling; nil amounts were left blank.
type FormInput struct {
	Kind        workout.Kind
	DistanceKm  *float64
	DurationMin *float64
	Extra       *float64
}

// Controller drives one map session. Every event handler takes the same
// lock, so events are processed one at a time in arrival order.
type Controller struct {
	id string

	maps     MapGateway
	list     ListView
	form     FormView
	notifier Notifier
	store    Store
	locator  Geolocator
	factory  *workout.Factory
	key      string
	persist  *persister
	logger   zerolog.Logger

	// ctx lives as long as the session; locator callbacks may fire after
	// the request that started the session has finished.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	started  bool
	degraded bool
	handle   MapHandle
	state    State
	kind     workout.Kind
	pending  *geo.Coordinate
	workouts []*workout.Record
}

func NewController(id string, d Deps) *Controller {
	if d.Factory == nil {
		d.Factory = workout.NewFactory()
	}
	logger := log.With().Str("session_id", id).Logger()
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		id:       id,
		maps:     d.Map,
		list:     d.List,
		form:     d.Form,
		notifier: d.Notifier,
		store:    d.Store,
		locator:  d.Locator,
		factory:  d.Factory,
		key:      d.Key,
		persist:  newPersister(d.Store, d.Key, logger),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		kind:     workout.Running,
	}
}

func (c *Controller) ID() string { return c.id }

// Start restores the persisted collection into the list, then asks for the
// user's position once. Markers for restored workouts are placed when the
// map comes up.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return c.illegal("start", "session already started")
	}
	c.started = true

	snapshots, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.logger.Error().Err(err).Str("key", c.key).Msg("load workouts failed")
		snapshots = nil
	}
	c.workouts = make([]*workout.Record, 0, len(snapshots))
	for _, s := range snapshots {
		c.workouts = append(c.workouts, workout.Restore(s))
	}

	if err := c.list.ClearAll(); err != nil {
		c.logger.Warn().Err(err).Msg("clear list failed")
	}
	for _, r := range c.workouts {
		c.render(r)
	}
	c.list.OnEntrySelected(func(id string) error {
		_, err := c.SelectWorkout(id)
		return err
	})
	c.logger.Info().Int("restored", len(c.workouts)).Msg("session started")
	c.mu.Unlock()

	// the locator may answer synchronously, so the lock must be free here
	c.locator.RequestPosition(
		func(at geo.Coordinate) { c.positionResolved(c.ctx, at) },
		c.positionFailed,
	)
	return nil
}

func (c *Controller) positionResolved(ctx context.Context, at geo.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != "" || c.degraded {
		return
	}
	h, err := c.maps.Initialize(ctx, at)
	if err != nil {
		c.degradeLocked(fmt.Errorf("initialize map: %w", err))
		return
	}
	c.handle = h
	c.logger.Info().Str("position", at.MapsURL()).Msg("map ready")

	c.maps.OnClick(h, c.MapClicked)
	for _, r := range c.workouts {
		c.placeMarker(r)
	}
}

func (c *Controller) positionFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != "" || c.degraded {
		return
	}
	c.degradeLocked(err)
}

func (c *Controller) degradeLocked(cause error) {
	c.degraded = true
	err := &GeolocationUnavailableError{Err: cause}
	c.logger.Warn().Err(err).Msg("map unavailable, continuing without it")
	c.notifier.Notify("Could not get your position. The map is unavailable, but your saved workouts are listed.")
}

// MapClicked stores the clicked point as the pending click, replacing any
// earlier one, and opens the form.
func (c *Controller) MapClicked(at geo.Coordinate) error {
	if err := at.Validate(); err != nil {
		return &workout.InvalidInputError{Fields: []workout.FieldError{
			{Field: workout.FieldCoordinate, Reason: workout.ReasonOutOfRange},
		}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == "" {
		return c.illegal("map click", "map is not ready")
	}
	c.pending = &at
	c.state = AwaitingFormInput
	c.form.ShowForm()
	return nil
}

// SubmitForm builds a workout at the pending click. Invalid input keeps the
// form open with the pending click intact so the user can correct it.
func (c *Controller) SubmitForm(in FormInput) (workout.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != AwaitingFormInput || c.pending == nil {
		return workout.Snapshot{}, c.illegal("submit form", "no pending map click")
	}

	r, err := c.factory.Create(workout.Input{
		Kind:        in.Kind,
		Coordinate:  *c.pending,
		DistanceKm:  in.DistanceKm,
		DurationMin: in.DurationMin,
		Extra:       in.Extra,
	})
	if err != nil {
		var invalid *workout.InvalidInputError
		if errors.As(err, &invalid) {
			c.logger.Debug().Err(err).Msg("workout rejected")
			c.form.ShowValidationError(invalid.Error())
		}
		return workout.Snapshot{}, err
	}

	c.workouts = append(c.workouts, r)
	c.placeMarker(r)
	c.render(r)
	c.persist.submit(c.snapshotsLocked())

	c.pending = nil
	c.state = Idle
	c.form.HideForm()

	c.logger.Info().Str("workout_id", r.ID()).Str("kind", string(r.Kind())).Msg("workout created")
	return r.Snapshot(), nil
}

// CancelForm drops the pending click and closes the form.
func (c *Controller) CancelForm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = nil
	c.state = Idle
	c.form.HideForm()
}

// SelectKind switches the form between running and cycling inputs.
func (c *Controller) SelectKind(kind workout.Kind) error {
	if !kind.Valid() {
		return &workout.InvalidInputError{Fields: []workout.FieldError{
			{Field: workout.FieldKind, Reason: workout.ReasonUnsupported},
		}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.kind = kind
	c.form.ToggleKind(kind)
	return nil
}

// SelectWorkout handles a click on a list entry: it counts the selection
// and centers the map on the workout.
func (c *Controller) SelectWorkout(id string) (workout.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.findLocked(id)
	if r == nil {
		return workout.Snapshot{}, c.illegal("select workout", fmt.Sprintf("unknown workout id %q", id))
	}
	r.RegisterSelection()

	if c.handle != "" {
		if err := c.maps.PanTo(c.handle, r.Coordinate()); err != nil {
			c.logger.Warn().Err(err).Str("workout_id", id).Msg("pan failed")
		}
	}
	return r.Snapshot(), nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Kind() workout.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

func (c *Controller) Pending() (geo.Coordinate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return geo.Coordinate{}, false
	}
	return *c.pending, true
}

func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

func (c *Controller) MapReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != ""
}

// Workouts returns the collection in insertion order.
func (c *Controller) Workouts() []workout.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotsLocked()
}

// Close flushes the last pending save and cancels the session context.
func (c *Controller) Close() {
	c.persist.close()
	c.cancel()
}

func (c *Controller) findLocked(id string) *workout.Record {
	for _, r := range c.workouts {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

func (c *Controller) snapshotsLocked() []workout.Snapshot {
	out := make([]workout.Snapshot, 0, len(c.workouts))
	for _, r := range c.workouts {
		out = append(out, r.Snapshot())
	}
	return out
}

func (c *Controller) placeMarker(r *workout.Record) {
	if err := c.maps.PlaceMarker(c.handle, r.Coordinate(), r.Description(), r.Kind()); err != nil {
		c.logger.Warn().Err(err).Str("workout_id", r.ID()).Msg("place marker failed")
	}
}

func (c *Controller) render(r *workout.Record) {
	if err := c.list.Render(r.Snapshot()); err != nil {
		c.logger.Warn().Err(err).Str("workout_id", r.ID()).Msg("render entry failed")
	}
}

func (c *Controller) illegal(op, reason string) error {
	err := &IllegalStateError{Op: op, Reason: reason}
	c.logger.Error().Err(err).Bool("contract_violation", true).Msg("handler called in illegal state")
	return err
}
