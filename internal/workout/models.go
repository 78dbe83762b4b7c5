package workout

import (
	"time"

	"github.com/j00les/workout-map/internal/shared/geo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Kind string

const (
	Running Kind = "running"
	Cycling Kind = "cycling"
)

func (k Kind) Valid() bool {
	return k == Running || k == Cycling
}

// Record is one workout. Running and cycling share every field except the
// extra input (cadence or elevation gain) and the derived metric (pace or
// speed), so both live in one struct keyed by kind.
type Record struct {
	id          string
	createdAt   time.Time
	coordinate  geo.Coordinate
	distanceKm  float64
	durationMin float64
	kind        Kind
	clickCount  int
	description string

	// cadence (spm) for running, elevation gain (m) for cycling
	extra float64
	// pace (min/km) for running, speed (km/h) for cycling
	metric float64
}

func (r *Record) ID() string                 { return r.id }
func (r *Record) CreatedAt() time.Time       { return r.createdAt }
func (r *Record) Coordinate() geo.Coordinate { return r.coordinate }
func (r *Record) DistanceKm() float64        { return r.distanceKm }
func (r *Record) DurationMin() float64       { return r.durationMin }
func (r *Record) Kind() Kind                 { return r.kind }
func (r *Record) ClickCount() int            { return r.clickCount }
func (r *Record) Description() string        { return r.description }

func (r *Record) CadenceSpm() (float64, bool) {
	return r.extra, r.kind == Running
}

func (r *Record) PaceMinPerKm() (float64, bool) {
	return r.metric, r.kind == Running
}

func (r *Record) ElevationGainM() (float64, bool) {
	return r.extra, r.kind == Cycling
}

func (r *Record) SpeedKmPerH() (float64, bool) {
	return r.metric, r.kind == Cycling
}

// RegisterSelection counts a pick from the workout list.
func (r *Record) RegisterSelection() {
	r.clickCount++
}

// Snapshot is the serialisable form of a Record. It carries the derived
// values so a restored record never recomputes them.
type Snapshot struct {
	ID          string         `json:"id" msgpack:"id"`
	Kind        Kind           `json:"type" msgpack:"type"`
	CreatedAt   time.Time      `json:"date" msgpack:"date"`
	Coordinate  geo.Coordinate `json:"coords" msgpack:"coords"`
	DistanceKm  float64        `json:"distance" msgpack:"distance"`
	DurationMin float64        `json:"duration" msgpack:"duration"`
	Description string         `json:"description" msgpack:"description"`
	ClickCount  int            `json:"clicks" msgpack:"clicks"`

	CadenceSpm     *float64 `json:"cadence,omitempty" msgpack:"cadence,omitempty"`
	PaceMinPerKm   *float64 `json:"pace,omitempty" msgpack:"pace,omitempty"`
	ElevationGainM *float64 `json:"elevation_gain,omitempty" msgpack:"elevation_gain,omitempty"`
	SpeedKmPerH    *float64 `json:"speed,omitempty" msgpack:"speed,omitempty"`
}

func (r *Record) Snapshot() Snapshot {
	s := Snapshot{
		ID:          r.id,
		Kind:        r.kind,
		CreatedAt:   r.createdAt,
		Coordinate:  r.coordinate,
		DistanceKm:  r.distanceKm,
		DurationMin: r.durationMin,
		Description: r.description,
		ClickCount:  r.clickCount,
	}
	extra, metric := r.extra, r.metric
	switch r.kind {
	case Running:
		s.CadenceSpm, s.PaceMinPerKm = &extra, &metric
	case Cycling:
		s.ElevationGainM, s.SpeedKmPerH = &extra, &metric
	}
	return s
}

// Restore rebuilds a record from a snapshot without validating it; the
// snapshot was produced from a record that passed validation.
func Restore(s Snapshot) *Record {
	r := &Record{
		id:          s.ID,
		createdAt:   s.CreatedAt,
		coordinate:  s.Coordinate,
		distanceKm:  s.DistanceKm,
		durationMin: s.DurationMin,
		kind:        s.Kind,
		clickCount:  s.ClickCount,
		description: s.Description,
	}
	switch s.Kind {
	case Running:
		r.extra, r.metric = deref(s.CadenceSpm), deref(s.PaceMinPerKm)
	case Cycling:
		r.extra, r.metric = deref(s.ElevationGainM), deref(s.SpeedKmPerH)
	}
	return r
}

func describe(kind Kind, at time.Time) string {
	return cases.Title(language.English).String(string(kind)) + " on " + at.Format("January 2")
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
