package location

import (
	"fmt"

	"wayfarer/internal/types"
)

// CoordinatePrecision is the number of decimal places used to decide that two
// locations sit on the same spot (about 0.1 m at the equator).
const CoordinatePrecision = 6

func tripLocationID(tripID, entryID types.ID) types.ID {
	return types.ID(fmt.Sprintf("trip-%s-%s", tripID, entryID))
}

func standaloneLocationID(entryID types.ID) types.ID {
	return types.ID(fmt.Sprintf("standalone-%s", entryID))
}

// FromEntry converts an entry into a Location. trip may be nil.
func FromEntry(e Entry, trip *Trip) Location {
	src := e
	l := Location{
		Point:   e.Place.Point(),
		Name:    e.Place.Name,
		Kind:    KindVisited,
		Source:  &src,
		Country: e.Place.Country,
		City:    e.Place.City,
	}
	if l.Name == "" {
		l.Name = e.Title
	}
	if e.TripID != "" {
		l.ID = tripLocationID(e.TripID, e.ID)
		l.TripID = e.TripID
		if trip != nil {
			l.Kind = KindForStatus(trip.Status)
		}
		return l
	}
	l.ID = standaloneLocationID(e.ID)
	if e.Kind != "" {
		l.Kind = e.Kind
	}
	return l
}

// FromCustomPin converts a hand-placed pin into a Location.
func FromCustomPin(p CustomPin) Location {
	kind := p.Kind
	if kind == "" {
		kind = KindFavorite
	}
	return Location{
		ID:       p.ID,
		Point:    types.Point{Lat: p.Lat, Lng: p.Lng},
		Name:     p.Name,
		Kind:     kind,
		IsCustom: true,
	}
}

// Aggregate merges trip entries, standalone entries and custom pins into one
// location set with at most one Location per coordinate key.
//
// On a key collision a custom pin beats an entry-derived location; between
// two entry-derived locations the newer source timestamp wins, and on equal
// timestamps the later input wins. Output order is first-seen key order.
func Aggregate(entries []Entry, trips []Trip, pins []CustomPin) []Location {
	byTrip := make(map[types.ID]*Trip, len(trips))
	for i := range trips {
		byTrip[trips[i].ID] = &trips[i]
	}

	all := make([]Location, 0, len(entries)+len(pins))
	for _, e := range entries {
		if e.TripID != "" {
			all = append(all, FromEntry(e, byTrip[e.TripID]))
		}
	}
	for _, e := range entries {
		if e.TripID == "" {
			all = append(all, FromEntry(e, nil))
		}
	}
	for _, p := range pins {
		all = append(all, FromCustomPin(p))
	}
	return Dedupe(all)
}

// Dedupe collapses locations sharing a coordinate key using the Aggregate
// conflict policy. The input slice is not modified.
func Dedupe(in []Location) []Location {
	index := make(map[string]int, len(in))
	out := make([]Location, 0, len(in))
	for _, l := range in {
		k := l.Point.Key(CoordinatePrecision)
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, l)
			continue
		}
		if supersedes(l, out[i]) {
			out[i] = l
		}
	}
	return out
}

func supersedes(next, cur Location) bool {
	if next.IsCustom != cur.IsCustom {
		return next.IsCustom
	}
	if next.IsCustom {
		return true
	}
	return !next.Timestamp().Before(cur.Timestamp())
}
