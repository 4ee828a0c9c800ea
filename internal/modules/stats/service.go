// README: Aggregate journal statistics (distance travelled, places, favourite destination).
package stats

import (
	"strings"

	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

type TripStats struct {
	TripID     types.ID `json:"tripId"`
	Name       string   `json:"name"`
	Stops      int      `json:"stops"`
	DistanceKm int      `json:"distanceKm"`
}

type Summary struct {
	Countries           int         `json:"countries"`
	Cities              int         `json:"cities"`
	TotalDistanceKm     int         `json:"totalDistanceKm"`
	TotalLocations      int         `json:"totalLocations"`
	FavoriteDestination string      `json:"favoriteDestination,omitempty"`
	Trips               []TripStats `json:"trips"`
}

// TripDistanceKm orders stops by timestamp and returns the rounded route length.
// stops is not modified.
func TripDistanceKm(stops []location.Location) int {
	ordered := append([]location.Location(nil), stops...)
	location.SortStops(ordered)
	route := make([]types.Point, len(ordered))
	for i, l := range ordered {
		route[i] = l.Point
	}
	return RouteDistanceKm(route)
}

// Aggregate computes journal-wide statistics. Locations that reference a trip
// missing from trips count toward place totals but not toward any route.
func Aggregate(trips []location.Trip, locations []location.Location) Summary {
	s := Summary{TotalLocations: len(locations), Trips: make([]TripStats, 0, len(trips))}

	byTrip := make(map[types.ID][]location.Location)
	for _, l := range locations {
		if l.TripID != "" {
			byTrip[l.TripID] = append(byTrip[l.TripID], l)
		}
	}
	for _, t := range trips {
		stops := byTrip[t.ID]
		d := TripDistanceKm(stops)
		s.TotalDistanceKm += d
		s.Trips = append(s.Trips, TripStats{TripID: t.ID, Name: t.Name, Stops: len(stops), DistanceKm: d})
	}

	countries := map[string]struct{}{}
	for _, t := range trips {
		for _, c := range t.CountriesVisited {
			if c = strings.TrimSpace(c); c != "" {
				countries[c] = struct{}{}
			}
		}
	}
	cities := map[string]struct{}{}
	for _, l := range locations {
		if c := strings.TrimSpace(l.Country); c != "" {
			countries[c] = struct{}{}
		}
		if c := cityOf(l); c != "" {
			cities[c] = struct{}{}
		}
	}
	s.Countries = len(countries)
	s.Cities = len(cities)
	s.FavoriteDestination = favoriteDestination(locations)
	return s
}

func cityOf(l location.Location) string {
	if c := strings.TrimSpace(l.City); c != "" {
		return c
	}
	return strings.TrimSpace(l.Name)
}

// favoriteDestination is the most frequent country (falling back to the
// location name); ties go to whichever was seen first.
func favoriteDestination(locations []location.Location) string {
	counts := map[string]int{}
	var order []string
	for _, l := range locations {
		key := strings.TrimSpace(l.Country)
		if key == "" {
			key = strings.TrimSpace(l.Name)
		}
		if key == "" {
			continue
		}
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}
	best, bestN := "", 0
	for _, k := range order {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}
