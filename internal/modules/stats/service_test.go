package stats

import (
	"testing"
	"time"

	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

func loc(id, trip string, lat, lng float64, country, city, name string, ts time.Time) location.Location {
	return location.Location{
		ID:      types.ID(id),
		TripID:  types.ID(trip),
		Point:   types.Point{Lat: lat, Lng: lng},
		Country: country,
		City:    city,
		Name:    name,
		Source:  &location.Entry{ID: types.ID(id), Timestamp: ts},
	}
}

func TestAggregate(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	trips := []location.Trip{
		{ID: "t1", Name: "Equator run", CountriesVisited: []string{"Ecuador", "Gabon"}},
		{ID: "t2", Name: "Empty"},
	}
	locations := []location.Location{
		// out of order on purpose: route must follow timestamps
		loc("c", "t1", 0, 2, "Ecuador", "Quito", "", base.Add(2*time.Hour)),
		loc("a", "t1", 0, 0, "Ecuador", "Quito", "", base),
		loc("b", "t1", 0, 1, "Ecuador", "", "Mitad del Mundo", base.Add(time.Hour)),
		loc("s1", "", 48.85, 2.35, "France", "Paris", "", base),
		loc("s2", "ghost", 10, 10, "", "", "Nowhere", base),
	}

	got := Aggregate(trips, locations)

	if got.TotalLocations != 5 {
		t.Errorf("TotalLocations = %d, want 5", got.TotalLocations)
	}
	if got.Countries != 3 {
		t.Errorf("Countries = %d, want 3 (Ecuador, Gabon, France)", got.Countries)
	}
	if got.Cities != 4 {
		t.Errorf("Cities = %d, want 4 (Quito, Mitad del Mundo, Paris, Nowhere)", got.Cities)
	}
	if got.TotalDistanceKm != 222 {
		t.Errorf("TotalDistanceKm = %d, want 222", got.TotalDistanceKm)
	}
	if got.FavoriteDestination != "Ecuador" {
		t.Errorf("FavoriteDestination = %q, want Ecuador", got.FavoriteDestination)
	}
	if len(got.Trips) != 2 || got.Trips[0].Stops != 3 || got.Trips[1].DistanceKm != 0 {
		t.Errorf("unexpected per-trip stats: %+v", got.Trips)
	}
}

func TestFavoriteDestination_TieGoesToFirstSeen(t *testing.T) {
	locations := []location.Location{
		{Name: "Lisbon"},
		{Country: "Japan"},
		{Name: "Lisbon"},
		{Country: "Japan"},
	}
	if got := favoriteDestination(locations); got != "Lisbon" {
		t.Errorf("favoriteDestination = %q, want Lisbon", got)
	}
	if got := favoriteDestination(nil); got != "" {
		t.Errorf("favoriteDestination(nil) = %q, want empty", got)
	}
}
