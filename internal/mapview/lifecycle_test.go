package mapview

import (
	"context"
	"errors"
	"testing"

	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

func TestMapRejectsCallsOutsideReady(t *testing.T) {
	m := NewMap(NewRecorder(), 0)

	if err := m.SetCenter(types.Point{}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("before init: got %v, want ErrNotReady", err)
	}
	if err := m.Init(context.Background(), nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if m.State() != StateReady {
		t.Fatalf("state = %s, want ready", m.State())
	}
	if _, err := m.CreateMarker(context.Background(), types.Point{}, MarkerVisual{}); err != nil {
		t.Fatalf("CreateMarker: %v", err)
	}

	m.Dispose()
	m.Dispose()
	if _, err := m.Zoom(); !errors.Is(err, ErrDisposed) {
		t.Fatalf("after dispose: got %v, want ErrDisposed", err)
	}
	if err := m.Init(context.Background(), nil); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Init after dispose: got %v, want ErrDisposed", err)
	}
}

func TestMapInitFailure(t *testing.T) {
	tests := []struct {
		name      string
		loadErr   error
		wantQuota bool
	}{
		{"quota code", errors.New("Google Maps JavaScript API error: OVER_QUOTA"), true},
		{"quota message", errors.New("Quota Exceeded for this key"), true},
		{"generic", errors.New("network unreachable"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMap(NewRecorder(), 0)
			err := m.Init(context.Background(), func(context.Context) error { return tt.loadErr })
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrQuotaExceeded); got != tt.wantQuota {
				t.Fatalf("quota = %v, want %v (%v)", got, tt.wantQuota, err)
			}
			if m.State() != StateUninitialized {
				t.Fatalf("state = %s, want uninitialized", m.State())
			}
			if err := m.Init(context.Background(), nil); err != nil {
				t.Fatalf("retry: %v", err)
			}
		})
	}
}

func TestRendererOnUninitializedMapClearsBuildingFlag(t *testing.T) {
	m := NewMap(NewRecorder(), 0)
	r := NewRenderer(m, testOptions(), Callbacks{})
	defer r.Close()

	_, err := r.Rebuild(context.Background(), Input{
		Locations: []location.Location{standalone("1", 1, 1, location.KindVisited)},
	})
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("got %v, want ErrNotReady", err)
	}
	if r.Building() {
		t.Fatal("building flag left set")
	}
}
