// README: Common value objects shared across modules (ids and coordinates).
package types

import (
	"fmt"
	"math"
)

// ID is an opaque record identifier (Firestore document id, synthesized location id, ...).
type ID string

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// Valid reports whether the point lies inside the latitude/longitude ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Key formats the point at a fixed number of decimal places. Two points with
// the same key are treated as the same map position.
func (p Point) Key(precision int) string {
	return fmt.Sprintf("%.*f,%.*f", precision, p.Lat, precision, p.Lng)
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// Bounds is an axis-aligned lat/lng bounding box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoundsOf returns the bounding box of pts. ok is false when pts is empty.
func BoundsOf(pts []Point) (b Bounds, ok bool) {
	if len(pts) == 0 {
		return Bounds{}, false
	}
	b = Bounds{South: pts[0].Lat, North: pts[0].Lat, West: pts[0].Lng, East: pts[0].Lng}
	for _, p := range pts[1:] {
		b.South = math.Min(b.South, p.Lat)
		b.North = math.Max(b.North, p.Lat)
		b.West = math.Min(b.West, p.Lng)
		b.East = math.Max(b.East, p.Lng)
	}
	return b, true
}

// Center is the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// MaxSpan is the larger of the latitude and longitude extents, in degrees.
func (b Bounds) MaxSpan() float64 {
	return math.Max(b.North-b.South, b.East-b.West)
}
