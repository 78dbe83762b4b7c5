package workout

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/j00les/workout-map/internal/shared/geo"
)

var london = geo.Coordinate{Lat: 51.5, Lng: -0.12}

func amount(v float64) *float64 { return &v }

func fixedClock() func() time.Time {
	at := time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestCreateRunning(t *testing.T) {
	f := NewFactory().WithClock(fixedClock())

	r, err := f.Create(Input{Kind: Running, Coordinate: london, DistanceKm: amount(5), DurationMin: amount(30), Extra: amount(180)})
	if err != nil {
		t.Fatalf("create running: %v", err)
	}
	pace, ok := r.PaceMinPerKm()
	if !ok || pace != 6.0 {
		t.Fatalf("expected pace 6.0, got %v", pace)
	}
	cadence, ok := r.CadenceSpm()
	if !ok || cadence != 180 {
		t.Fatalf("unexpected cadence: %v", cadence)
	}
	if _, ok := r.SpeedKmPerH(); ok {
		t.Fatalf("running record must not report speed")
	}
	if r.Description() != "Running on October 18" {
		t.Fatalf("unexpected description: %q", r.Description())
	}
	if r.ClickCount() != 0 {
		t.Fatalf("expected zero clicks")
	}
	if r.ID() == "" {
		t.Fatalf("expected id")
	}
	if r.Coordinate() != london {
		t.Fatalf("unexpected coordinate")
	}
}

func TestCreateCyclingNegativeElevation(t *testing.T) {
	f := NewFactory().WithClock(fixedClock())

	r, err := f.Create(Input{Kind: Cycling, Coordinate: london, DistanceKm: amount(20), DurationMin: amount(60), Extra: amount(-50)})
	if err != nil {
		t.Fatalf("create cycling: %v", err)
	}
	speed, ok := r.SpeedKmPerH()
	if !ok || speed != 20.0 {
		t.Fatalf("expected speed 20.0, got %v", speed)
	}
	elevation, _ := r.ElevationGainM()
	if elevation != -50 {
		t.Fatalf("unexpected elevation: %v", elevation)
	}
	if !strings.HasPrefix(r.Description(), "Cycling on ") {
		t.Fatalf("unexpected description: %q", r.Description())
	}
}

func TestCreateDerivedMetricsExact(t *testing.T) {
	f := NewFactory()
	cases := []struct{ distance, duration float64 }{
		{5, 30}, {3.7, 21.3}, {42.195, 211}, {0.1, 0.7},
	}
	for _, c := range cases {
		run, err := f.Create(Input{Kind: Running, Coordinate: london, DistanceKm: amount(c.distance), DurationMin: amount(c.duration), Extra: amount(170)})
		if err != nil {
			t.Fatalf("create running: %v", err)
		}
		if pace, _ := run.PaceMinPerKm(); pace != c.duration/c.distance {
			t.Fatalf("pace mismatch for %+v: %v", c, pace)
		}

		ride, err := f.Create(Input{Kind: Cycling, Coordinate: london, DistanceKm: amount(c.distance), DurationMin: amount(c.duration), Extra: amount(0)})
		if err != nil {
			t.Fatalf("create cycling: %v", err)
		}
		if speed, _ := ride.SpeedKmPerH(); speed != c.distance/(c.duration/60) {
			t.Fatalf("speed mismatch for %+v: %v", c, speed)
		}
	}
}

func TestCreateIDsUnique(t *testing.T) {
	f := NewFactory().WithClock(fixedClock())
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		r, err := f.Create(Input{Kind: Running, Coordinate: london, DistanceKm: amount(1), DurationMin: amount(5), Extra: amount(160)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[r.ID()] {
			t.Fatalf("duplicate id %s", r.ID())
		}
		seen[r.ID()] = true
	}
}

func TestCreateRejectsInvalidAmounts(t *testing.T) {
	f := NewFactory()
	bad := map[string]*float64{
		"zero":     amount(0),
		"negative": amount(-3),
		"nan":      amount(math.NaN()),
		"inf":      amount(math.Inf(1)),
		"missing":  nil,
	}
	for name, v := range bad {
		inputs := []struct {
			field string
			in    Input
		}{
			{FieldDistance, Input{Kind: Running, Coordinate: london, DistanceKm: v, DurationMin: amount(30), Extra: amount(180)}},
			{FieldDuration, Input{Kind: Cycling, Coordinate: london, DistanceKm: amount(5), DurationMin: v, Extra: amount(10)}},
			{FieldCadence, Input{Kind: Running, Coordinate: london, DistanceKm: amount(5), DurationMin: amount(30), Extra: v}},
		}
		for _, tc := range inputs {
			r, err := f.Create(tc.in)
			if r != nil {
				t.Fatalf("%s/%s: expected no record", name, tc.field)
			}
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("%s/%s: expected invalid input, got %v", name, tc.field, err)
			}
			if _, ok := invalid.Reason(tc.field); !ok {
				t.Fatalf("%s/%s: expected field reported, got %v", name, tc.field, invalid)
			}
		}
	}
}

func TestCreateReasons(t *testing.T) {
	f := NewFactory()
	_, err := f.Create(Input{Kind: Cycling, Coordinate: london, DistanceKm: nil, DurationMin: amount(-1), Extra: amount(math.NaN())})
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	want := map[string]Reason{
		FieldDistance:  ReasonMissing,
		FieldDuration:  ReasonNonPositive,
		FieldElevation: ReasonNonFinite,
	}
	for field, reason := range want {
		got, ok := invalid.Reason(field)
		if !ok || got != reason {
			t.Fatalf("field %s: expected %s, got %s", field, reason, got)
		}
	}
	if !strings.Contains(err.Error(), "duration must be a positive number") {
		t.Fatalf("message should name the constraint: %v", err)
	}
}

func TestCreateRejectsKindAndCoordinate(t *testing.T) {
	f := NewFactory()
	_, err := f.Create(Input{Kind: "swimming", Coordinate: geo.Coordinate{Lat: 95}, DistanceKm: amount(1), DurationMin: amount(1), Extra: amount(1)})
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if r, _ := invalid.Reason(FieldKind); r != ReasonUnsupported {
		t.Fatalf("expected unsupported kind, got %s", r)
	}
	if r, _ := invalid.Reason(FieldCoordinate); r != ReasonOutOfRange {
		t.Fatalf("expected out of range coordinate, got %s", r)
	}
}

func TestParseAmount(t *testing.T) {
	if ParseAmount("  ") != nil {
		t.Fatalf("blank should be missing")
	}
	if v := ParseAmount("5.5"); v == nil || *v != 5.5 {
		t.Fatalf("unexpected parse: %v", v)
	}
	if v := ParseAmount("abc"); v == nil || !math.IsNaN(*v) {
		t.Fatalf("expected NaN for text")
	}
}
