package mapview

import (
	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

const (
	ColorGold    = "#d4af37"
	ColorForest  = "#4c6b54"
	ColorRed     = "#b22222"
	ColorBrown   = "#8B7355"
	ColorCurrent = "#3b82f6"
)

// TripColor is the route and pin colour for a trip status.
func TripColor(s location.TripStatus) string {
	switch s {
	case location.TripCompleted, location.TripVisited:
		return ColorGold
	case location.TripActive:
		return ColorForest
	case location.TripPlanned:
		return ColorRed
	default:
		return ColorBrown
	}
}

// KindColor is the pin colour for a standalone location.
func KindColor(k location.Kind) string {
	switch k {
	case location.KindVisited:
		return ColorGold
	case location.KindPlanned:
		return ColorForest
	default:
		return ColorRed
	}
}

const (
	selectedWeight = 4
	defaultWeight  = 2
	dimmedOpacity  = 0.4
)

// Emphasis returns the stroke weight and opacity for trip given the current
// selection. It depends on nothing else, so reselecting a trip always yields
// the same values.
func Emphasis(trip, selected types.ID) (weight int, opacity float64) {
	weight = defaultWeight
	if selected != "" && trip == selected {
		weight = selectedWeight
	}
	opacity = 1.0
	if selected != "" && trip != selected {
		opacity = dimmedOpacity
	}
	return weight, opacity
}
