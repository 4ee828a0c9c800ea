// README: Journal records (trips, entries, custom pins) and the map Location they collapse into.
package location

import (
	"time"

	"wayfarer/internal/types"
)

// Kind classifies a map point.
type Kind string

const (
	KindVisited  Kind = "visited"
	KindPlanned  Kind = "planned"
	KindFavorite Kind = "favorite"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripDraft     TripStatus = "draft"
	TripPlanned   TripStatus = "planned"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
	// TripVisited is a legacy alias of completed still present in older documents.
	TripVisited TripStatus = "visited"
)

type Trip struct {
	ID               types.ID   `json:"id" firestore:"-"`
	UserID           types.ID   `json:"-" firestore:"userId"`
	Name             string     `json:"name" firestore:"name"`
	Status           TripStatus `json:"status" firestore:"status"`
	Description      string     `json:"description,omitempty" firestore:"description,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty" firestore:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty" firestore:"endDate,omitempty"`
	TotalEntries     int        `json:"totalEntries" firestore:"totalEntries"`
	CountriesVisited []string   `json:"countriesVisited,omitempty" firestore:"countriesVisited,omitempty"`
}

// Place is where an entry was written.
type Place struct {
	Lat     float64 `json:"lat" firestore:"lat"`
	Lng     float64 `json:"lng" firestore:"lng"`
	Name    string  `json:"name" firestore:"name"`
	Country string  `json:"country,omitempty" firestore:"country,omitempty"`
	City    string  `json:"city,omitempty" firestore:"city,omitempty"`
}

func (p Place) Point() types.Point {
	return types.Point{Lat: p.Lat, Lng: p.Lng}
}

// Entry is a journaled moment. TripID is empty for standalone entries.
type Entry struct {
	ID        types.ID  `json:"id" firestore:"-"`
	UserID    types.ID  `json:"-" firestore:"userId"`
	TripID    types.ID  `json:"tripId,omitempty" firestore:"tripId,omitempty"`
	Title     string    `json:"title" firestore:"title"`
	Place     Place     `json:"location" firestore:"location"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	Kind      Kind      `json:"kind,omitempty" firestore:"kind,omitempty"`
	Tags      []string  `json:"tags,omitempty" firestore:"tags,omitempty"`
}

// CustomPin is a map point the user placed by hand.
type CustomPin struct {
	ID        types.ID  `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Lat       float64   `json:"lat" firestore:"lat"`
	Lng       float64   `json:"lng" firestore:"lng"`
	Kind      Kind      `json:"kind" firestore:"kind"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// Location is one point of interest in a rendering pass.
type Location struct {
	ID       types.ID    `json:"id"`
	Point    types.Point `json:"coordinates"`
	Name     string      `json:"name"`
	Kind     Kind        `json:"kind"`
	TripID   types.ID    `json:"tripId,omitempty"`
	Source   *Entry      `json:"-"`
	IsCustom bool        `json:"isCustom"`
	Country  string      `json:"country,omitempty"`
	City     string      `json:"city,omitempty"`
}

// Timestamp is the source entry's timestamp, zero when there is none.
func (l Location) Timestamp() time.Time {
	if l.Source == nil {
		return time.Time{}
	}
	return l.Source.Timestamp
}

// KindForStatus maps a trip's status to the kind of its stops.
func KindForStatus(s TripStatus) Kind {
	switch s {
	case TripPlanned, TripDraft:
		return KindPlanned
	default:
		return KindVisited
	}
}
