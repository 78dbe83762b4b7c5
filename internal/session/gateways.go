package session

import (
	"context"

	"github.com/j00les/workout-map/internal/shared/geo"
	"github.com/j00les/workout-map/internal/workout"
)

// MapHandle identifies an initialised map surface.
type MapHandle string

type MapGateway interface {
	Initialize(ctx context.Context, at geo.Coordinate) (MapHandle, error)
	PlaceMarker(h MapHandle, at geo.Coordinate, label string, kind workout.Kind) error
	PanTo(h MapHandle, at geo.Coordinate) error
	OnClick(h MapHandle, fn func(geo.Coordinate) error)
}

type ListView interface {
	Render(s workout.Snapshot) error
	ClearAll() error
	OnEntrySelected(fn func(id string) error)
}

// FormView owns the workout form, including which of the cadence and
// elevation inputs is visible.
type FormView interface {
	ShowForm()
	HideForm()
	ShowValidationError(msg string)
	ToggleKind(kind workout.Kind)
}

type Notifier interface {
	Notify(msg string)
}

// Store persists the ordered collection under an opaque key. Loading a key
// that was never saved returns an empty collection and no error.
type Store interface {
	Save(ctx context.Context, key string, records []workout.Snapshot) error
	Load(ctx context.Context, key string) ([]workout.Snapshot, error)
}

// Geolocator answers a position request exactly once, through one of the
// two callbacks.
type Geolocator interface {
	RequestPosition(onSuccess func(geo.Coordinate), onFailure func(error))
}

// Views bundles every UI-facing gateway of one session together with the
// entry points the client uses to report map clicks and list selections.
type Views interface {
	MapGateway
	ListView
	FormView
	Notifier

	Click(at geo.Coordinate) error
	Select(id string) error
}
