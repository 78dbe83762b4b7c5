package workout

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/j00les/workout-map/internal/shared/geo"
)

const (
	FieldKind       = "type"
	FieldCoordinate = "coordinate"
	FieldDistance   = "distance"
	FieldDuration   = "duration"
	FieldCadence    = "cadence"
	FieldElevation  = "elevation"
)

// Input is the raw form content. A nil amount means the field was left
// blank. Extra is cadence for running and elevation gain for cycling.
type Input struct {
	Kind        Kind
	Coordinate  geo.Coordinate
	DistanceKm  *float64
	DurationMin *float64
	Extra       *float64
}

// Factory validates form input and builds records. IDs combine the
// creation time with a counter so records created within the same
// millisecond still get distinct ids.
type Factory struct {
	seq atomic.Uint64
	now func() time.Time
}

func NewFactory() *Factory {
	return &Factory{now: time.Now}
}

// WithClock replaces the time source.
func (f *Factory) WithClock(now func() time.Time) *Factory {
	f.now = now
	return f
}

func (f *Factory) Create(in Input) (*Record, error) {
	var fields []FieldError
	check := func(field string, v *float64, positive bool) {
		switch {
		case v == nil:
			fields = append(fields, FieldError{Field: field, Reason: ReasonMissing})
		case math.IsNaN(*v) || math.IsInf(*v, 0):
			fields = append(fields, FieldError{Field: field, Reason: ReasonNonFinite})
		case positive && *v <= 0:
			fields = append(fields, FieldError{Field: field, Reason: ReasonNonPositive})
		}
	}

	if err := in.Coordinate.Validate(); err != nil {
		fields = append(fields, FieldError{Field: FieldCoordinate, Reason: ReasonOutOfRange})
	}
	check(FieldDistance, in.DistanceKm, true)
	check(FieldDuration, in.DurationMin, true)
	switch in.Kind {
	case Running:
		check(FieldCadence, in.Extra, true)
	case Cycling:
		// elevation gain may be zero or negative
		check(FieldElevation, in.Extra, false)
	default:
		fields = append(fields, FieldError{Field: FieldKind, Reason: ReasonUnsupported})
	}
	if len(fields) > 0 {
		return nil, &InvalidInputError{Fields: fields}
	}

	now := f.now()
	r := &Record{
		id:          f.nextID(now),
		createdAt:   now,
		coordinate:  in.Coordinate,
		distanceKm:  *in.DistanceKm,
		durationMin: *in.DurationMin,
		kind:        in.Kind,
		description: describe(in.Kind, now),
		extra:       *in.Extra,
	}
	if in.Kind == Running {
		r.metric = r.durationMin / r.distanceKm
	} else {
		r.metric = r.distanceKm / (r.durationMin / 60)
	}
	return r, nil
}

func (f *Factory) nextID(now time.Time) string {
	n := f.seq.Add(1)
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.FormatUint(n, 10)
}

// ParseAmount reads a numeric form value. Blank input is missing (nil);
// text that is not a number comes back as NaN so validation reports it as
// non-finite.
func ParseAmount(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		v = math.NaN()
	}
	return &v
}
