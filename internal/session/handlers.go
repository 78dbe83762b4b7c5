package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/j00les/workout-map/internal/shared/geo"
	"github.com/j00les/workout-map/internal/workout"
)

type sessionView struct {
	ID       string             `json:"id"`
	State    string             `json:"state"`
	Kind     workout.Kind       `json:"type"`
	MapReady bool               `json:"map_ready"`
	Degraded bool               `json:"degraded"`
	Pending  *geo.Coordinate    `json:"pending_click,omitempty"`
	Workouts []workout.Snapshot `json:"workouts"`
}

func viewOf(c *Controller) sessionView {
	v := sessionView{
		ID:       c.ID(),
		State:    c.State().String(),
		Kind:     c.Kind(),
		MapReady: c.MapReady(),
		Degraded: c.Degraded(),
		Workouts: c.Workouts(),
	}
	if at, ok := c.Pending(); ok {
		v.Pending = &at
	}
	return v
}

func RegisterRoutes(r fiber.Router, reg *Registry) {
	r.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			Lat              *float64 `json:"lat"`
			Lng              *float64 `json:"lng"`
			GeolocationError string   `json:"geolocation_error"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var locator Geolocator
		switch {
		case body.GeolocationError != "":
			locator = geo.Failed(body.GeolocationError)
		case body.Lat == nil || body.Lng == nil:
			if locator = reg.homeLocator(); locator == nil {
				locator = geo.Failed("no position reported")
			}
		default:
			locator = geo.Resolved(geo.Coordinate{Lat: *body.Lat, Lng: *body.Lng})
		}

		ctrl, err := reg.Open(c.Context(), locator)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(viewOf(ctrl))
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		ctrl, _, ok := reg.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return c.JSON(viewOf(ctrl))
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if !reg.End(c.Params("id")) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/clicks", func(c *fiber.Ctx) error {
		ctrl, views, ok := reg.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		var body struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := c.BodyParser(&body); err != nil || body.Lat == nil || body.Lng == nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng required")
		}
		if err := views.Click(geo.Coordinate{Lat: *body.Lat, Lng: *body.Lng}); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(viewOf(ctrl))
	})

	r.Put("/:id/form/kind", func(c *fiber.Ctx) error {
		ctrl, _, ok := reg.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		var body struct {
			Type string `json:"type" form:"type"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := ctrl.SelectKind(workout.Kind(body.Type)); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(viewOf(ctrl))
	})

	r.Delete("/:id/form", func(c *fiber.Ctx) error {
		ctrl, _, ok := reg.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		ctrl.CancelForm()
		return c.JSON(viewOf(ctrl))
	})

	r.Post("/:id/workouts", func(c *fiber.Ctx) error {
		ctrl, _, ok := reg.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		var body struct {
			Type      string `json:"type" form:"type"`
			Distance  string `json:"distance" form:"distance"`
			Duration  string `json:"duration" form:"duration"`
			Cadence   string `json:"cadence" form:"cadence"`
			Elevation string `json:"elevation" form:"elevation"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		in := FormInput{
			Kind:        workout.Kind(body.Type),
			DistanceKm:  workout.ParseAmount(body.Distance),
			DurationMin: workout.ParseAmount(body.Duration),
		}
		switch in.Kind {
		case workout.Running:
			in.Extra = workout.ParseAmount(body.Cadence)
		case workout.Cycling:
			in.Extra = workout.ParseAmount(body.Elevation)
		}

		created, err := ctrl.SubmitForm(in)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/:id/workouts", func(c *fiber.Ctx) error {
		ctrl, _, ok := reg.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return c.JSON(ctrl.Workouts())
	})

	r.Post("/:id/workouts/:workoutID/select", func(c *fiber.Ctx) error {
		ctrl, views, ok := reg.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		id := c.Params("workoutID")
		if err := views.Select(id); err != nil {
			return errorResponse(c, err)
		}
		for _, w := range ctrl.Workouts() {
			if w.ID == id {
				return c.JSON(w)
			}
		}
		return fiber.NewError(fiber.StatusNotFound, "workout not found")
	})
}

func errorResponse(c *fiber.Ctx, err error) error {
	var invalid *workout.InvalidInputError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  invalid.Error(),
			"fields": invalid.Fields,
		})
	}
	var illegal *IllegalStateError
	if errors.As(err, &illegal) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
