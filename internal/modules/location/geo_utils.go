// Package location: geo_utils contains ordering helpers for trip stops.
package location

import (
	"sort"
	"time"
)

// SortStops orders stops by source timestamp ascending in place. The sort is
// stable; stops without a timestamp go last, in input order.
func SortStops(stops []Location) {
	sortByTime(stops, func(l Location) time.Time { return l.Timestamp() })
}

func sortByTime[T any](items []T, ts func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return earlier(ts(items[i]), ts(items[j]))
	})
}

// earlier is a strict order where the zero time ranks after every real time.
func earlier(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	}
	return a.Before(b)
}
