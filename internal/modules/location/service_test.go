package location

import (
	"context"
	"errors"
	"sync"
	"testing"

	"wayfarer/internal/types"
)

// mockStore is an in-memory Store for testing.
type mockStore struct {
	mu      sync.Mutex
	trips   []Trip
	entries []Entry
	pins    []CustomPin
	err     error
}

func (m *mockStore) Trips(_ context.Context, _ types.ID) ([]Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips, m.err
}

func (m *mockStore) Entries(_ context.Context, _ types.ID) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, m.err
}

func (m *mockStore) CustomPins(_ context.Context, _ types.ID) ([]CustomPin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pins, m.err
}

func (m *mockStore) SaveCustomPin(_ context.Context, _ types.ID, p CustomPin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.pins = append(m.pins, p)
	return nil
}

func TestService_MapData(t *testing.T) {
	store := &mockStore{
		trips: []Trip{{ID: "t1", Status: TripActive}},
		entries: []Entry{
			{ID: "e1", TripID: "t1", Place: Place{Lat: 1, Lng: 1}, Timestamp: t0},
			{ID: "e2", Place: Place{Lat: 2, Lng: 2}, Timestamp: t0},
		},
	}
	svc := NewService(store)

	data, err := svc.MapData(context.Background(), "u1")
	if err != nil {
		t.Fatalf("MapData: %v", err)
	}
	if len(data.Locations) != 2 || len(data.Trips) != 1 {
		t.Fatalf("unexpected data: %d locations, %d trips", len(data.Locations), len(data.Trips))
	}
}

func TestService_MapDataStoreError(t *testing.T) {
	boom := errors.New("firestore unavailable")
	svc := NewService(&mockStore{err: boom})
	if _, err := svc.MapData(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := svc.MapData(context.Background(), ""); err != ErrBadRequest {
		t.Fatalf("expected ErrBadRequest for empty uid, got %v", err)
	}
}

func TestService_TripOrdersStops(t *testing.T) {
	store := &mockStore{
		trips: []Trip{{ID: "t1", Name: "Coast"}},
		entries: []Entry{
			{ID: "late", TripID: "t1", Place: Place{Lat: 3, Lng: 3}, Timestamp: t0.AddDate(0, 0, 2)},
			{ID: "early", TripID: "t1", Place: Place{Lat: 1, Lng: 1}, Timestamp: t0},
			{ID: "other", Place: Place{Lat: 5, Lng: 5}, Timestamp: t0},
		},
	}
	svc := NewService(store)

	trip, stops, err := svc.Trip(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatalf("Trip: %v", err)
	}
	if trip.Name != "Coast" || len(stops) != 2 {
		t.Fatalf("unexpected trip %+v with %d stops", trip, len(stops))
	}
	if stops[0].ID != "trip-t1-early" {
		t.Errorf("first stop = %s, want trip-t1-early", stops[0].ID)
	}
	if _, _, err := svc.Trip(context.Background(), "u1", "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_AddCustomPin(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store)
	ctx := context.Background()

	p, err := svc.AddCustomPin(ctx, "u1", AddPinCommand{Name: "  Lookout ", Lat: 10, Lng: 20})
	if err != nil {
		t.Fatalf("AddCustomPin: %v", err)
	}
	if p.ID == "" || p.Name != "Lookout" || p.Kind != KindFavorite {
		t.Errorf("unexpected pin %+v", p)
	}
	if len(store.pins) != 1 {
		t.Fatalf("expected pin to be saved")
	}

	bad := []AddPinCommand{
		{Name: "", Lat: 1, Lng: 1},
		{Name: "x", Lat: 95, Lng: 1},
		{Name: "x", Lat: 1, Lng: 1, Kind: "secret"},
	}
	for _, cmd := range bad {
		if _, err := svc.AddCustomPin(ctx, "u1", cmd); err != ErrBadRequest {
			t.Errorf("AddCustomPin(%+v) = %v, want ErrBadRequest", cmd, err)
		}
	}
}
