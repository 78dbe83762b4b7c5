package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/j00les/workout-map/internal/session"
	"github.com/j00les/workout-map/internal/shared/geo"
	"github.com/j00les/workout-map/internal/workout"
	"github.com/rs/zerolog/log"
)

const (
	popupMaxWidth = 200
	popupMinWidth = 100
)

// Broadcaster delivers a payload to every client watching a session.
type Broadcaster interface {
	Broadcast(sessionID string, payload []byte)
}

type Options struct {
	Zoom        int
	TileURL     string
	Attribution string
}

// Command is one instruction for the browser client.
type Command struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type markerPayload struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Label        string  `json:"label"`
	ClassName    string  `json:"class_name"`
	MaxWidth     int     `json:"max_width"`
	MinWidth     int     `json:"min_width"`
	AutoClose    bool    `json:"auto_close"`
	CloseOnClick bool    `json:"close_on_click"`
}

// Gateway implements the session's map, list, form and notice views by
// streaming commands to the browser, and routes the browser's map clicks
// and list selections back to the controller callbacks.
type Gateway struct {
	sessionID string
	out       Broadcaster
	opts      Options

	mu       sync.Mutex
	handle   session.MapHandle
	onClick  func(geo.Coordinate) error
	onSelect func(string) error
}

func New(sessionID string, out Broadcaster, opts Options) *Gateway {
	return &Gateway{sessionID: sessionID, out: out, opts: opts}
}

func (g *Gateway) Initialize(_ context.Context, at geo.Coordinate) (session.MapHandle, error) {
	err := g.send("map.init", fields{
		"lat":         at.Lat,
		"lng":         at.Lng,
		"zoom":        g.opts.Zoom,
		"tile_url":    g.opts.TileURL,
		"attribution": g.opts.Attribution,
	})
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	g.handle = session.MapHandle(g.sessionID)
	g.mu.Unlock()
	return g.handle, nil
}

func (g *Gateway) PlaceMarker(h session.MapHandle, at geo.Coordinate, label string, kind workout.Kind) error {
	if err := g.checkHandle(h); err != nil {
		return err
	}
	return g.send("map.marker", markerPayload{
		Lat:       at.Lat,
		Lng:       at.Lng,
		Label:     icon(kind) + " " + label,
		ClassName: string(kind) + "-popup",
		MaxWidth:  popupMaxWidth,
		MinWidth:  popupMinWidth,
	})
}

func (g *Gateway) PanTo(h session.MapHandle, at geo.Coordinate) error {
	if err := g.checkHandle(h); err != nil {
		return err
	}
	return g.send("map.pan", fields{
		"lat":      at.Lat,
		"lng":      at.Lng,
		"zoom":     g.opts.Zoom,
		"animate":  true,
		"duration": 1,
	})
}

func (g *Gateway) OnClick(h session.MapHandle, fn func(geo.Coordinate) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h == g.handle {
		g.onClick = fn
	}
}

func (g *Gateway) Render(s workout.Snapshot) error {
	return g.send("list.render", s)
}

func (g *Gateway) ClearAll() error {
	return g.send("list.clear", nil)
}

func (g *Gateway) OnEntrySelected(fn func(id string) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onSelect = fn
}

func (g *Gateway) ShowForm() { g.sendLogged("form.show", nil) }
func (g *Gateway) HideForm() { g.sendLogged("form.hide", nil) }

func (g *Gateway) ShowValidationError(msg string) {
	g.sendLogged("form.error", fields{"message": msg})
}

// ToggleKind shows the cadence input for running and the elevation input
// for cycling.
func (g *Gateway) ToggleKind(kind workout.Kind) {
	show, hide := "cadence", "elevation"
	if kind == workout.Cycling {
		show, hide = hide, show
	}
	g.sendLogged("form.kind", fields{"type": kind, "show": show, "hide": hide})
}

func (g *Gateway) Notify(msg string) {
	g.sendLogged("notice", fields{"message": msg})
}

// Click reports a click on the map surface.
func (g *Gateway) Click(at geo.Coordinate) error {
	g.mu.Lock()
	fn := g.onClick
	g.mu.Unlock()
	if fn == nil {
		return &session.IllegalStateError{Op: "map click", Reason: "map is not ready"}
	}
	return fn(at)
}

// Select reports a click on a list entry.
func (g *Gateway) Select(id string) error {
	g.mu.Lock()
	fn := g.onSelect
	g.mu.Unlock()
	if fn == nil {
		return &session.IllegalStateError{Op: "select workout", Reason: "list is not ready"}
	}
	return fn(id)
}

func (g *Gateway) checkHandle(h session.MapHandle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h == "" || h != g.handle {
		return fmt.Errorf("unknown map handle %q", h)
	}
	return nil
}

func (g *Gateway) send(typ string, payload any) error {
	raw, err := json.Marshal(Command{Type: typ, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s: %w", typ, err)
	}
	g.out.Broadcast(g.sessionID, raw)
	return nil
}

func (g *Gateway) sendLogged(typ string, payload any) {
	if err := g.send(typ, payload); err != nil {
		log.Error().Err(err).Str("session_id", g.sessionID).Msg("ui command dropped")
	}
}

type fields = map[string]any

func icon(kind workout.Kind) string {
	if kind == workout.Cycling {
		return "🚴‍♀️"
	}
	return "🏃‍♂️"
}
