// Package search runs the map's place search box: debounced autocomplete,
// last-request-wins result handling and fly-to on selection.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"wayfarer/internal/debounce"
	"wayfarer/internal/maps"
	"wayfarer/internal/mapview"
	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

const DefaultDebounce = 300 * time.Millisecond

var (
	ErrClosed     = errors.New("search session closed")
	ErrSuperseded = errors.New("selection superseded by newer input")
)

type State string

const (
	StateIdle     State = "idle"
	StateTyping   State = "typing"
	StateQuerying State = "querying"
	StateResults  State = "results"
	StateEmpty    State = "empty"
	StateError    State = "error"
	StateSelected State = "selected"
)

// Geocoder is the part of maps.Geocoder the search box needs.
type Geocoder interface {
	Autocomplete(ctx context.Context, query string, session maps.SessionToken, bias *types.Point) ([]maps.Prediction, error)
	ResolvePlace(ctx context.Context, placeID string, session maps.SessionToken) (maps.Place, error)
}

// Camera is implemented by *mapview.Viewport.
type Camera interface {
	FlyTo(p types.Point, zoom int) error
}

type Config struct {
	Debounce time.Duration
	Timeout  time.Duration
	// Interactive forwards confirmed selections to OnSelect.
	Interactive bool
	Bias        *types.Point
	OnSelect    func(mapview.Selection)
	// OnChange receives a snapshot after every state change.
	OnChange func(Snapshot)
}

// Snapshot is what the search box UI renders.
type Snapshot struct {
	State    State             `json:"state"`
	Query    string            `json:"query"`
	Results  []maps.Prediction `json:"results"`
	Open     bool              `json:"open"`
	Selected *maps.Place       `json:"selected,omitempty"`
}

// Controller owns one search box. Queries are debounced; a response is
// applied only if no newer query, selection or clear happened since it was
// issued.
type Controller struct {
	geo    Geocoder
	camera Camera
	cfg    Config
	task   *debounce.Task

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	snap       Snapshot
	gen        uint64
	session    maps.SessionToken
	hasSession bool
	closed     bool
}

func NewController(geo Geocoder, camera Camera, cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = mapview.DefaultOptions().Timeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		geo:    geo,
		camera: camera,
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		snap:   Snapshot{State: StateIdle},
	}
	c.task = debounce.New(cfg.Debounce, c.query)
	return c
}

// Input records a keystroke. Any in-flight lookup is superseded. Blank text
// clears the results at once without a lookup; anything else restarts the
// debounce window.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.snap.Query = text
	c.snap.Selected = nil
	c.gen++
	if strings.TrimSpace(text) == "" {
		c.snap.State = StateIdle
		c.snap.Results = nil
		c.snap.Open = false
		c.mu.Unlock()
		c.task.Cancel()
		c.notify()
		return
	}
	if !c.hasSession {
		c.session = maps.NewSessionToken()
		c.hasSession = true
	}
	c.snap.State = StateTyping
	c.mu.Unlock()
	c.task.Schedule()
	c.notify()
}

// Submit queries the current text immediately.
func (c *Controller) Submit() {
	c.task.Flush()
}

// Key handles the keys the search box reacts to.
func (c *Controller) Key(key string) {
	switch key {
	case "Enter":
		c.Submit()
	case "Escape":
		c.Clear()
	}
}

func (c *Controller) query() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	q := strings.TrimSpace(c.snap.Query)
	c.gen++
	gen := c.gen
	if q == "" {
		c.snap.State = StateIdle
		c.snap.Results = nil
		c.snap.Open = false
		c.mu.Unlock()
		c.notify()
		return
	}
	if !c.hasSession {
		c.session = maps.NewSessionToken()
		c.hasSession = true
	}
	session := c.session
	c.snap.State = StateQuerying
	c.mu.Unlock()
	c.notify()

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.Timeout)
	preds, err := c.geo.Autocomplete(ctx, q, session, c.cfg.Bias)
	cancel()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		logger.Debug("search: dropping stale results for %q", q)
		return
	}
	switch {
	case err != nil:
		logger.Error("search: autocomplete %q: %v", q, err)
		c.snap.State = StateError
		c.snap.Results = nil
	case len(preds) == 0:
		c.snap.State = StateEmpty
		c.snap.Results = nil
	default:
		c.snap.State = StateResults
		c.snap.Results = preds
	}
	c.snap.Open = true
	c.mu.Unlock()
	c.notify()
}

// Select resolves placeID, flies the camera there and, in interactive mode,
// hands the location to OnSelect. It ends the autocomplete session.
func (c *Controller) Select(ctx context.Context, placeID string) (maps.Place, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return maps.Place{}, ErrClosed
	}
	c.gen++
	gen := c.gen
	session := c.session
	c.mu.Unlock()
	c.task.Cancel()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	place, err := c.geo.ResolvePlace(ctx, placeID, session)
	cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return maps.Place{}, ErrClosed
	}
	if gen != c.gen {
		c.mu.Unlock()
		return maps.Place{}, ErrSuperseded
	}
	if err != nil {
		c.snap.State = StateError
		c.snap.Results = nil
		c.mu.Unlock()
		logger.Error("search: resolve place %s: %v", placeID, err)
		c.notify()
		return maps.Place{}, err
	}
	c.snap = Snapshot{State: StateSelected, Query: place.Name, Selected: &place}
	c.hasSession = false
	c.mu.Unlock()

	if c.camera != nil {
		if err := c.camera.FlyTo(place.Point, mapview.SearchResultZoom); err != nil {
			logger.Warn("search: fly to %s: %v", place.Point, err)
		}
	}
	if c.cfg.Interactive && c.cfg.OnSelect != nil {
		c.cfg.OnSelect(mapview.Selection{Lat: place.Point.Lat, Lng: place.Point.Lng, Address: place.Address})
	}
	c.notify()
	return place, nil
}

// Clear resets the box to idle with empty text.
func (c *Controller) Clear() {
	c.task.Cancel()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.snap = Snapshot{State: StateIdle}
	c.hasSession = false
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.snap
	s.Results = append([]maps.Prediction(nil), c.snap.Results...)
	return s
}

// Close cancels the pending query and in-flight lookups. Nothing changes
// state afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.task.Stop()
	c.cancel()
}

func (c *Controller) notify() {
	if c.cfg.OnChange == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	s := c.snap
	s.Results = append([]maps.Prediction(nil), c.snap.Results...)
	c.mu.Unlock()
	c.cfg.OnChange(s)
}
