package mapview

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"wayfarer/internal/types"
)

const (
	recorderWidthPx  = 1024
	recorderHeightPx = 768
	tileSizePx       = 256
	clusterGridPx    = 60
)

// RecordedMarker is a marker as the Recorder holds it.
type RecordedMarker struct {
	Handle    Handle       `json:"handle"`
	Position  types.Point  `json:"position"`
	Visual    MarkerVisual `json:"visual"`
	Attached  bool         `json:"attached"`
	Clustered bool         `json:"clustered,omitempty"`
	seq       int
}

type RecordedPolyline struct {
	Handle Handle        `json:"handle"`
	Points []types.Point `json:"points"`
	Style  PolylineStyle `json:"style"`
	seq    int
}

type RecordedCluster struct {
	Handle  Handle      `json:"handle"`
	Center  types.Point `json:"center"`
	Members []Handle    `json:"members"`
	seq     int
}

type RecordedPopup struct {
	Content  PopupContent `json:"content"`
	Position types.Point  `json:"position"`
}

// Scene is a snapshot of everything visible on a Recorder.
type Scene struct {
	Center    types.Point        `json:"center"`
	Zoom      int                `json:"zoom"`
	Markers   []RecordedMarker   `json:"markers"`
	Polylines []RecordedPolyline `json:"polylines"`
	Clusters  []RecordedCluster  `json:"clusters,omitempty"`
	Popup     *RecordedPopup     `json:"popup,omitempty"`
}

// Recorder is an in-memory Surface. It backs the demo binary and the tests,
// and computes fit-bounds zoom the way a 1024x768 Web Mercator viewport would.
type Recorder struct {
	mu        sync.Mutex
	seq       int
	markers   map[Handle]*RecordedMarker
	polylines map[Handle]*RecordedPolyline
	clusters  map[Handle]*RecordedCluster
	handlers  map[Handle]map[Event]func()
	mapClick  func(types.Point)
	popup     *RecordedPopup
	center    types.Point
	zoom      int
	zooms     []int
	fits      int

	createDelay time.Duration
	createErr   error
}

func NewRecorder() *Recorder {
	return &Recorder{
		markers:   make(map[Handle]*RecordedMarker),
		polylines: make(map[Handle]*RecordedPolyline),
		clusters:  make(map[Handle]*RecordedCluster),
		handlers:  make(map[Handle]map[Event]func()),
		zoom:      WorldZoom,
	}
}

// SetCreateDelay makes every CreateMarker call wait d, like a surface that
// loads marker libraries asynchronously.
func (r *Recorder) SetCreateDelay(d time.Duration) {
	r.mu.Lock()
	r.createDelay = d
	r.mu.Unlock()
}

// FailCreates makes CreateMarker and CreatePolyline return err until reset with nil.
func (r *Recorder) FailCreates(err error) {
	r.mu.Lock()
	r.createErr = err
	r.mu.Unlock()
}

func (r *Recorder) nextHandle(prefix string) (Handle, int) {
	r.seq++
	return Handle(fmt.Sprintf("%s-%d", prefix, r.seq)), r.seq
}

func (r *Recorder) CreateMarker(ctx context.Context, pos types.Point, v MarkerVisual) (Handle, error) {
	r.mu.Lock()
	delay, failure := r.createDelay, r.createErr
	r.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if failure != nil {
		return "", failure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h, seq := r.nextHandle("marker")
	r.markers[h] = &RecordedMarker{Handle: h, Position: pos, Visual: v, seq: seq}
	return h, nil
}

func (r *Recorder) AttachMarker(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.markers[h]
	if !ok {
		return fmt.Errorf("attach %s: unknown marker", h)
	}
	m.Attached = true
	return nil
}

func (r *Recorder) DetachMarker(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.markers[h]; !ok {
		return fmt.Errorf("detach %s: unknown marker", h)
	}
	delete(r.markers, h)
	delete(r.handlers, h)
	return nil
}

func (r *Recorder) CreatePolyline(ctx context.Context, pts []types.Point, style PolylineStyle) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	h, seq := r.nextHandle("polyline")
	r.polylines[h] = &RecordedPolyline{Handle: h, Points: append([]types.Point(nil), pts...), Style: style, seq: seq}
	return h, nil
}

func (r *Recorder) RemovePolyline(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polylines[h]; !ok {
		return fmt.Errorf("remove %s: unknown polyline", h)
	}
	delete(r.polylines, h)
	delete(r.handlers, h)
	return nil
}

func (r *Recorder) FitBounds(pts []types.Point, paddingPx int) error {
	b, ok := types.BoundsOf(pts)
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fits++
	r.center = b.Center()
	r.setZoomLocked(fitZoom(b, recorderWidthPx-2*paddingPx, recorderHeightPx-2*paddingPx))
	return nil
}

func (r *Recorder) SetCenter(p types.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.center = p
	return nil
}

func (r *Recorder) SetZoom(level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setZoomLocked(level)
	return nil
}

func (r *Recorder) setZoomLocked(level int) {
	r.zoom = clampZoom(level, MinZoom, MaxZoom)
	r.zooms = append(r.zooms, r.zoom)
}

func (r *Recorder) Zoom() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zoom, nil
}

func (r *Recorder) PanTo(p types.Point) error {
	return r.SetCenter(p)
}

func (r *Recorder) ShowPopup(c PopupContent, pos types.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popup = &RecordedPopup{Content: c, Position: pos}
	return nil
}

func (r *Recorder) ClosePopup() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popup = nil
	return nil
}

func (r *Recorder) On(h Handle, ev Event, fn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, isMarker := r.markers[h]
	_, isLine := r.polylines[h]
	if !isMarker && !isLine {
		return fmt.Errorf("subscribe %s: unknown overlay", h)
	}
	if r.handlers[h] == nil {
		r.handlers[h] = make(map[Event]func())
	}
	r.handlers[h][ev] = fn
	return nil
}

func (r *Recorder) OnMapClick(fn func(types.Point)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapClick = fn
	return nil
}

// GroupMarkers buckets markers into a screen-space grid at the current zoom.
// A bucket holding one marker is attached as is; larger buckets become a
// cluster whose handle is returned.
func (r *Recorder) GroupMarkers(ctx context.Context, hs []Handle) ([]Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cell := clusterGridPx * 360 / (tileSizePx * math.Exp2(float64(r.zoom)))
	type key struct{ x, y int64 }
	buckets := make(map[key][]*RecordedMarker)
	var order []key
	for _, h := range hs {
		m, ok := r.markers[h]
		if !ok {
			return nil, fmt.Errorf("group %s: unknown marker", h)
		}
		k := key{int64(math.Floor(m.Position.Lng / cell)), int64(math.Floor(m.Position.Lat / cell))}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], m)
	}

	var out []Handle
	for _, k := range order {
		members := buckets[k]
		if len(members) == 1 {
			members[0].Attached = true
			continue
		}
		h, seq := r.nextHandle("cluster")
		c := &RecordedCluster{Handle: h, seq: seq}
		var lat, lng float64
		for _, m := range members {
			m.Attached = true
			m.Clustered = true
			c.Members = append(c.Members, m.Handle)
			lat += m.Position.Lat
			lng += m.Position.Lng
		}
		n := float64(len(members))
		c.Center = types.Point{Lat: lat / n, Lng: lng / n}
		r.clusters[h] = c
		out = append(out, h)
	}
	return out, nil
}

func (r *Recorder) ClearClusters() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, c := range r.clusters {
		for _, mh := range c.Members {
			if m, ok := r.markers[mh]; ok {
				m.Clustered = false
				m.Attached = false
			}
		}
		delete(r.clusters, h)
	}
	return nil
}

// Fire runs the handler subscribed to ev on h, as a user interaction would.
func (r *Recorder) Fire(h Handle, ev Event) error {
	r.mu.Lock()
	fn := r.handlers[h][ev]
	r.mu.Unlock()
	if fn == nil {
		return fmt.Errorf("no %s handler on %s", ev, h)
	}
	fn()
	return nil
}

// ClickMap simulates a click on empty map space.
func (r *Recorder) ClickMap(p types.Point) {
	r.mu.Lock()
	fn := r.mapClick
	r.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// ZoomHistory lists every zoom level the camera passed through.
func (r *Recorder) ZoomHistory() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.zooms...)
}

// FitCount is the number of FitBounds calls with at least one point.
func (r *Recorder) FitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fits
}

// Markers returns every live marker, attached or not, in creation order.
func (r *Recorder) Markers() []RecordedMarker {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedMarker, 0, len(r.markers))
	for _, m := range r.markers {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (r *Recorder) Scene() Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Scene{Center: r.center, Zoom: r.zoom}
	for _, m := range r.markers {
		if m.Attached {
			s.Markers = append(s.Markers, *m)
		}
	}
	for _, p := range r.polylines {
		s.Polylines = append(s.Polylines, *p)
	}
	for _, c := range r.clusters {
		s.Clusters = append(s.Clusters, *c)
	}
	if r.popup != nil {
		p := *r.popup
		s.Popup = &p
	}
	sort.Slice(s.Markers, func(i, j int) bool { return s.Markers[i].seq < s.Markers[j].seq })
	sort.Slice(s.Polylines, func(i, j int) bool { return s.Polylines[i].seq < s.Polylines[j].seq })
	sort.Slice(s.Clusters, func(i, j int) bool { return s.Clusters[i].seq < s.Clusters[j].seq })
	return s
}

// fitZoom is the largest zoom at which b fits in a w x h pixel viewport.
func fitZoom(b types.Bounds, w, h int) int {
	w, h = max(w, 1), max(h, 1)
	latFrac := (mercatorLat(b.North) - mercatorLat(b.South)) / math.Pi
	lngSpan := b.East - b.West
	if lngSpan < 0 {
		lngSpan += 360
	}
	lngFrac := lngSpan / 360
	return min(zoomFor(h, latFrac), zoomFor(w, lngFrac), MaxZoom)
}

func mercatorLat(lat float64) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	y := math.Log((1+sin)/(1-sin)) / 2
	return math.Max(math.Min(y, math.Pi), -math.Pi) / 2
}

func zoomFor(px int, frac float64) int {
	if frac <= 0 {
		return MaxZoom
	}
	return int(math.Floor(math.Log2(float64(px) / tileSizePx / frac)))
}

func clampZoom(z, lo, hi int) int {
	return min(max(z, lo), hi)
}
