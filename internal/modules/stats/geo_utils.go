// Package stats: geo_utils contains pure geographic computation helpers.
package stats

import (
	"math"

	"wayfarer/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// RouteDistanceKm sums the segment distances between consecutive points and
// rounds the total to the nearest kilometre.
func RouteDistanceKm(route []types.Point) int {
	var total float64
	for i := 1; i < len(route); i++ {
		total += HaversineKm(route[i-1], route[i])
	}
	return int(math.Round(total))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
