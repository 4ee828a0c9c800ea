package mapview

import (
	"context"
	"testing"

	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

func TestTripColor(t *testing.T) {
	tests := []struct {
		status location.TripStatus
		want   string
	}{
		{location.TripCompleted, "#d4af37"},
		{location.TripVisited, "#d4af37"},
		{location.TripActive, "#4c6b54"},
		{location.TripPlanned, "#b22222"},
		{location.TripDraft, "#8B7355"},
		{"archived", "#8B7355"},
	}
	for _, tt := range tests {
		if got := TripColor(tt.status); got != tt.want {
			t.Errorf("TripColor(%q) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestKindColor(t *testing.T) {
	tests := []struct {
		kind location.Kind
		want string
	}{
		{location.KindVisited, ColorGold},
		{location.KindPlanned, ColorForest},
		{location.KindFavorite, ColorRed},
		{"", ColorRed},
	}
	for _, tt := range tests {
		if got := KindColor(tt.kind); got != tt.want {
			t.Errorf("KindColor(%q) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestEmphasis(t *testing.T) {
	tests := []struct {
		name        string
		trip, sel   types.ID
		wantWeight  int
		wantOpacity float64
	}{
		{"no selection", "a", "", 2, 1.0},
		{"selected", "a", "a", 4, 1.0},
		{"other selected", "a", "b", 2, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, o := Emphasis(tt.trip, tt.sel)
			if w != tt.wantWeight || o != tt.wantOpacity {
				t.Fatalf("got (%d, %v), want (%d, %v)", w, o, tt.wantWeight, tt.wantOpacity)
			}
		})
	}
}

func TestSelectionDimmingIsIdempotent(t *testing.T) {
	rec := NewRecorder()
	r := NewRenderer(rec, testOptions(), Callbacks{})
	defer r.Close()

	in := Input{
		Locations: []location.Location{
			tripStop("a", "1", 10, 10, 0), tripStop("a", "2", 11, 11, 1),
			tripStop("b", "3", 20, 20, 0), tripStop("b", "4", 21, 21, 1),
		},
		Trips: []location.Trip{
			{ID: "a", Name: "A", Status: location.TripActive},
			{ID: "b", Name: "B", Status: location.TripCompleted},
		},
	}
	styles := func(sel types.ID) []PolylineStyle {
		in.SelectedTrip = sel
		if _, err := r.Rebuild(context.Background(), in); err != nil {
			t.Fatalf("Rebuild: %v", err)
		}
		var out []PolylineStyle
		for _, p := range rec.Scene().Polylines {
			out = append(out, p.Style)
		}
		return out
	}

	first := styles("a")
	styles("")
	again := styles("a")
	if len(first) != 2 || len(again) != 2 {
		t.Fatalf("polylines = %d then %d, want 2", len(first), len(again))
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("style %d drifted: %+v then %+v", i, first[i], again[i])
		}
	}
	if first[0].Weight != 4 || first[1].Opacity != 0.4 {
		t.Fatalf("unexpected emphasis %+v", first)
	}
}
