package location

import (
	"testing"
	"time"

	"wayfarer/internal/types"
)

func stop(id string, ts time.Time) Location {
	return Location{ID: "trip-t1-" + idOf(id), Source: &Entry{ID: idOf(id), Timestamp: ts}}
}

func idOf(s string) types.ID { return types.ID(s) }

func TestSortStops_Ascending(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	stops := []Location{
		stop("c", base.Add(2*time.Hour)),
		stop("a", base),
		stop("b", base.Add(time.Hour)),
	}

	SortStops(stops)

	want := []string{"a", "b", "c"}
	for i, w := range want {
		if string(stops[i].Source.ID) != w {
			t.Fatalf("position %d: got %s, want %s", i, stops[i].Source.ID, w)
		}
	}
}

func TestSortStops_StableForEqualTimestamps(t *testing.T) {
	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	stops := []Location{stop("x", ts), stop("y", ts), stop("z", ts)}

	SortStops(stops)

	if stops[0].Source.ID != "x" || stops[1].Source.ID != "y" || stops[2].Source.ID != "z" {
		t.Errorf("equal timestamps reordered: %v %v %v", stops[0].Source.ID, stops[1].Source.ID, stops[2].Source.ID)
	}
}

func TestSortStops_Empty(t *testing.T) {
	var stops []Location
	SortStops(stops)
}

func TestSortStops_UndatedStopsGoLast(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	undated := Location{ID: "trip-t1-u"}
	tests := []struct {
		name  string
		stops []Location
		want  []string
	}{
		{
			name:  "undated between dated",
			stops: []Location{stop("t3", base.Add(2*time.Hour)), undated, stop("t1", base)},
			want:  []string{"t1", "t3", "u"},
		},
		{
			name:  "undated first",
			stops: []Location{undated, stop("t2", base.Add(time.Hour)), stop("t1", base)},
			want:  []string{"t1", "t2", "u"},
		},
		{
			name:  "zero timestamp entry",
			stops: []Location{stop("z", time.Time{}), stop("t2", base.Add(time.Hour)), undated, stop("t1", base)},
			want:  []string{"t1", "t2", "z", "u"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortStops(tt.stops)
			for i, w := range tt.want {
				got := string(tt.stops[i].ID)
				if got != "trip-t1-"+w {
					t.Fatalf("position %d: got %s, want trip-t1-%s", i, got, w)
				}
			}
		})
	}
}
