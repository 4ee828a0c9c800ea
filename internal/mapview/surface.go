// Package mapview turns journal locations into map overlays (route polylines,
// numbered pins, clusters) and drives the camera of a map rendering surface.
//
// The surface itself (Google Maps JS, a native SDK, or the in-memory
// Recorder) is an external capability; this package only talks to it through
// the Surface interface.
package mapview

import (
	"context"

	"wayfarer/internal/types"
)

// Handle identifies a marker, polyline or cluster created on a Surface.
type Handle string

// Event is a pointer interaction on an overlay.
type Event string

const (
	EventClick Event = "click"
	EventHover Event = "hover"
)

// PinRole says what a marker stands for; surfaces pick a shape from it.
type PinRole string

const (
	RoleTripStart  PinRole = "trip-start"
	RoleTripStop   PinRole = "trip-stop"
	RoleTripEnd    PinRole = "trip-end"
	RoleStandalone PinRole = "standalone"
	RoleCurrent    PinRole = "current"
)

const (
	GlyphStart = "▶"
	GlyphEnd   = "■"
)

// MarkerVisual is the render-agnostic description of a pin.
type MarkerVisual struct {
	Role    PinRole `json:"role"`
	Glyph   string  `json:"glyph,omitempty"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Title   string  `json:"title"`
	ZIndex  int     `json:"zIndex,omitempty"`
}

type PolylineStyle struct {
	Color    string  `json:"color"`
	Weight   int     `json:"weight"`
	Opacity  float64 `json:"opacity"`
	Geodesic bool    `json:"geodesic"`
}

// Surface is what the core needs from a map rendering capability. Markers
// are created detached and become visible through AttachMarker or
// GroupMarkers. Surfaces keep at most one popup open.
type Surface interface {
	CreateMarker(ctx context.Context, pos types.Point, v MarkerVisual) (Handle, error)
	AttachMarker(h Handle) error
	// DetachMarker removes the marker from the viewport; the handle must not be reused.
	DetachMarker(h Handle) error

	CreatePolyline(ctx context.Context, pts []types.Point, style PolylineStyle) (Handle, error)
	RemovePolyline(h Handle) error

	FitBounds(pts []types.Point, paddingPx int) error
	SetCenter(p types.Point) error
	SetZoom(level int) error
	Zoom() (int, error)
	PanTo(p types.Point) error

	ShowPopup(c PopupContent, pos types.Point) error
	ClosePopup() error

	On(h Handle, ev Event, fn func()) error
	OnMapClick(fn func(types.Point)) error

	GroupMarkers(ctx context.Context, hs []Handle) ([]Handle, error)
	ClearClusters() error
}
