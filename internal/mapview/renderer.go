package mapview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"wayfarer/internal/modules/location"
	"wayfarer/internal/modules/stats"
	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

var (
	ErrRebuildInProgress = errors.New("marker rebuild already in progress")
	ErrClosed            = errors.New("renderer closed")
)

// Input is everything one rendering pass depends on.
type Input struct {
	Locations    []location.Location
	Trips        []location.Trip
	SelectedTrip types.ID
	Current      *types.Point
	Clustering   bool
}

type Callbacks struct {
	// OnLocationClick runs on the goroutine that delivered the click.
	OnLocationClick func(location.Location)
}

// Route is one trip's rendered path.
type Route struct {
	Trip       location.Trip       `json:"trip"`
	Stops      []location.Location `json:"stops"`
	DistanceKm int                 `json:"distanceKm"`
	Color      string              `json:"color"`
	Weight     int                 `json:"weight"`
	Opacity    float64             `json:"opacity"`
	Polyline   Handle              `json:"polyline,omitempty"`
}

// Pass summarizes a finished rebuild.
type Pass struct {
	Routes     []Route    `json:"routes"`
	Standalone int        `json:"standalone"`
	Markers    int        `json:"markers"`
	Clusters   int        `json:"clusters"`
	Skipped    []types.ID `json:"skipped,omitempty"`
}

// Renderer owns every overlay it puts on a Surface. Each Rebuild tears down
// the previous pass and recreates markers from scratch.
type Renderer struct {
	surface  Surface
	viewport *Viewport
	opts     Options
	cb       Callbacks

	building atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	markers   []Handle
	polylines []Handle
	closed    bool
}

func NewRenderer(s Surface, opts Options, cb Callbacks) *Renderer {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Renderer{
		surface:  s,
		viewport: NewViewport(s, opts),
		opts:     opts,
		cb:       cb,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (r *Renderer) Viewport() *Viewport { return r.viewport }

// Building reports whether a rebuild is running.
func (r *Renderer) Building() bool { return r.building.Load() }

// Rebuild replaces the overlays on the surface with the ones for in and
// frames the result. A call made while another rebuild runs returns
// ErrRebuildInProgress without touching the surface.
func (r *Renderer) Rebuild(ctx context.Context, in Input) (pass Pass, err error) {
	if !r.building.CompareAndSwap(false, true) {
		return Pass{}, ErrRebuildInProgress
	}
	defer r.building.Store(false)
	if r.isClosed() {
		return Pass{}, ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	stop := context.AfterFunc(r.ctx, cancel)
	defer stop()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rebuild panicked: %v", p)
		}
		if err != nil && !errors.Is(err, ErrClosed) {
			logger.Error("map: rebuild failed: %v", err)
		}
	}()

	r.teardown()
	pass, err = r.build(ctx, in)
	if r.isClosed() {
		r.teardown()
		return pass, ErrClosed
	}
	return pass, err
}

func (r *Renderer) build(ctx context.Context, in Input) (Pass, error) {
	var pass Pass
	var pins []Handle

	trips := make(map[types.ID]location.Trip, len(in.Trips))
	for _, t := range in.Trips {
		trips[t.ID] = t
	}

	groups := make(map[types.ID][]location.Location)
	var order []types.ID
	var standalone []location.Location
	for _, l := range in.Locations {
		if l.TripID == "" {
			standalone = append(standalone, l)
			continue
		}
		if _, seen := groups[l.TripID]; !seen {
			order = append(order, l.TripID)
		}
		groups[l.TripID] = append(groups[l.TripID], l)
	}

	var focus []types.Point
	for _, id := range order {
		trip, ok := trips[id]
		if !ok {
			logger.Debug("map: no trip record for %s, skipping %d stops", id, len(groups[id]))
			pass.Skipped = append(pass.Skipped, id)
			continue
		}
		route, hs, err := r.buildRoute(ctx, trip, groups[id], in.SelectedTrip)
		pins = append(pins, hs...)
		if err != nil {
			return pass, err
		}
		pass.Routes = append(pass.Routes, route)
		if id == in.SelectedTrip {
			for _, s := range route.Stops {
				focus = append(focus, s.Point)
			}
		}
	}

	for _, l := range standalone {
		h, err := r.addPin(ctx, l.Point, MarkerVisual{
			Role:    RoleStandalone,
			Color:   KindColor(l.Kind),
			Opacity: 1.0,
			Title:   l.Name,
		})
		if err != nil {
			return pass, err
		}
		pins = append(pins, h)
		if err := r.wireLocation(h, l, StandalonePopup(l)); err != nil {
			return pass, err
		}
	}
	pass.Standalone = len(standalone)

	if in.Current != nil {
		pos := *in.Current
		h, err := r.addPin(ctx, pos, MarkerVisual{
			Role:    RoleCurrent,
			Color:   ColorCurrent,
			Opacity: 1.0,
			Title:   "Current location",
			ZIndex:  1000,
		})
		if err != nil {
			return pass, err
		}
		pins = append(pins, h)
		popup := CurrentPositionPopup(pos)
		if err := r.surface.On(h, EventClick, func() {
			if r.isClosed() {
				return
			}
			r.openPopup(popup, pos)
		}); err != nil {
			return pass, err
		}
	}

	pass.Markers = len(pins)
	if in.Clustering && len(pins) > r.opts.ClusterThreshold {
		clusters, err := r.surface.GroupMarkers(ctx, pins)
		if err != nil {
			return pass, fmt.Errorf("grouping markers: %w", err)
		}
		pass.Clusters = len(clusters)
	} else {
		for _, h := range pins {
			if err := r.surface.AttachMarker(h); err != nil {
				return pass, err
			}
		}
	}

	points := make([]types.Point, 0, len(in.Locations)+1)
	for _, l := range in.Locations {
		points = append(points, l.Point)
	}
	if in.Current != nil {
		points = append(points, *in.Current)
	}
	if err := r.viewport.Frame(points, in.SelectedTrip != "", focus); err != nil {
		return pass, fmt.Errorf("framing: %w", err)
	}
	return pass, nil
}

func (r *Renderer) buildRoute(ctx context.Context, trip location.Trip, stops []location.Location, selected types.ID) (Route, []Handle, error) {
	stops = append([]location.Location(nil), stops...)
	location.SortStops(stops)

	weight, opacity := Emphasis(trip.ID, selected)
	route := Route{
		Trip:       trip,
		Stops:      stops,
		DistanceKm: stats.TripDistanceKm(stops),
		Color:      TripColor(trip.Status),
		Weight:     weight,
		Opacity:    opacity,
	}

	if len(stops) >= 2 {
		pts := make([]types.Point, len(stops))
		for i, s := range stops {
			pts[i] = s.Point
		}
		h, err := r.surface.CreatePolyline(ctx, pts, PolylineStyle{
			Color:    route.Color,
			Weight:   weight,
			Opacity:  opacity,
			Geodesic: true,
		})
		if err != nil {
			return route, nil, fmt.Errorf("route for trip %s: %w", trip.ID, err)
		}
		r.track(&r.polylines, h)
		route.Polyline = h
	}

	zIndex := 1
	if trip.ID == selected {
		zIndex = 10
	}
	var hs []Handle
	for i, s := range stops {
		v := MarkerVisual{
			Role:    RoleTripStop,
			Glyph:   strconv.Itoa(i + 1),
			Color:   route.Color,
			Opacity: opacity,
			Title:   s.Name,
			ZIndex:  zIndex,
		}
		switch {
		case i == 0:
			v.Role, v.Glyph = RoleTripStart, GlyphStart
		case i == len(stops)-1:
			v.Role, v.Glyph = RoleTripEnd, GlyphEnd
		}
		h, err := r.addPin(ctx, s.Point, v)
		if err != nil {
			return route, hs, err
		}
		hs = append(hs, h)
		if err := r.wireLocation(h, s, TripStopPopup(s, trip, i+1, len(stops))); err != nil {
			return route, hs, err
		}
	}
	return route, hs, nil
}

func (r *Renderer) addPin(ctx context.Context, pos types.Point, v MarkerVisual) (Handle, error) {
	h, err := r.surface.CreateMarker(ctx, pos, v)
	if err != nil {
		return "", fmt.Errorf("marker %q: %w", v.Title, err)
	}
	r.track(&r.markers, h)
	return h, nil
}

// wireLocation gives a location pin its hover popup and click behavior.
func (r *Renderer) wireLocation(h Handle, l location.Location, popup PopupContent) error {
	if err := r.surface.On(h, EventHover, func() {
		if r.isClosed() {
			return
		}
		r.openPopup(popup, l.Point)
	}); err != nil {
		return err
	}
	return r.surface.On(h, EventClick, func() {
		if r.isClosed() {
			return
		}
		if err := r.surface.ClosePopup(); err != nil {
			logger.Debug("map: close popup: %v", err)
		}
		if r.cb.OnLocationClick != nil {
			r.cb.OnLocationClick(l)
		}
		if err := r.viewport.FlyTo(l.Point, MarkerClickZoom); err != nil {
			logger.Warn("map: fly to %s: %v", l.ID, err)
		}
	})
}

// openPopup keeps a single popup slot: the previous one closes first.
func (r *Renderer) openPopup(c PopupContent, pos types.Point) {
	if err := r.surface.ClosePopup(); err != nil {
		logger.Debug("map: close popup: %v", err)
		return
	}
	if err := r.surface.ShowPopup(c, pos); err != nil {
		logger.Debug("map: show popup: %v", err)
	}
}

func (r *Renderer) track(list *[]Handle, h Handle) {
	r.mu.Lock()
	*list = append(*list, h)
	r.mu.Unlock()
}

// teardown removes everything the previous pass created. Failures are
// logged and skipped so a broken handle cannot block the next pass.
func (r *Renderer) teardown() {
	r.mu.Lock()
	markers, polylines := r.markers, r.polylines
	r.markers, r.polylines = nil, nil
	r.mu.Unlock()

	if err := r.surface.ClosePopup(); err != nil {
		logger.Debug("map: teardown close popup: %v", err)
	}
	if err := r.surface.ClearClusters(); err != nil {
		logger.Debug("map: teardown clusters: %v", err)
	}
	for _, h := range markers {
		if err := r.surface.DetachMarker(h); err != nil {
			logger.Debug("map: teardown marker %s: %v", h, err)
		}
	}
	for _, h := range polylines {
		if err := r.surface.RemovePolyline(h); err != nil {
			logger.Debug("map: teardown polyline %s: %v", h, err)
		}
	}
}

func (r *Renderer) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close stops camera animations, aborts a running rebuild and removes the
// overlays. Interaction handlers that fire afterwards do nothing.
func (r *Renderer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.viewport.Stop()
	if r.building.CompareAndSwap(false, true) {
		r.teardown()
		r.building.Store(false)
	}
}
