package mapview

import (
	"testing"
	"time"

	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

func testOptions() Options {
	return Options{
		RebuildDebounce:  20 * time.Millisecond,
		SettleDelay:      5 * time.Millisecond,
		ZoomStepInterval: 0,
		ClusterThreshold: 10,
		Timeout:          2 * time.Second,
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

var day0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func tripStop(trip types.ID, id string, lat, lng float64, dayOffset int) location.Location {
	e := &location.Entry{
		ID:        types.ID(id),
		TripID:    trip,
		Title:     "Stop " + id,
		Place:     location.Place{Lat: lat, Lng: lng, Name: "Stop " + id},
		Timestamp: day0.AddDate(0, 0, dayOffset),
	}
	return location.Location{
		ID:     types.ID("trip-" + string(trip) + "-" + id),
		Point:  types.Point{Lat: lat, Lng: lng},
		Name:   e.Place.Name,
		Kind:   location.KindVisited,
		TripID: trip,
		Source: e,
	}
}

func standalone(id string, lat, lng float64, kind location.Kind) location.Location {
	return location.Location{
		ID:    types.ID("standalone-" + id),
		Point: types.Point{Lat: lat, Lng: lng},
		Name:  "Place " + id,
		Kind:  kind,
	}
}

func zoomsAreSteps(zs []int) bool {
	for i := 1; i < len(zs); i++ {
		d := zs[i] - zs[i-1]
		if d != 1 && d != -1 {
			return false
		}
	}
	return true
}
