// README: Router tests; every endpoint runs against in-memory stores and stub collaborators.
package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wayfarer/internal/ai"
	wayhttp "wayfarer/internal/http"
	"wayfarer/internal/infra"
	"wayfarer/internal/maps"
	"wayfarer/internal/mapview"
	"wayfarer/internal/modules/aiusage"
	"wayfarer/internal/modules/history"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

var day0 = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, raw string) (*infra.FirebaseToken, error) {
	if raw != "good" {
		return nil, errors.New("bad token")
	}
	return &infra.FirebaseToken{UID: "u1"}, nil
}

type journalStore struct {
	mu      sync.Mutex
	trips   []location.Trip
	entries []location.Entry
	pins    []location.CustomPin
	callers []types.ID
}

func (s *journalStore) Trips(_ context.Context, uid types.ID) ([]location.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callers = append(s.callers, uid)
	return s.trips, nil
}

func (s *journalStore) seenCallers() []types.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.ID(nil), s.callers...)
}

func (s *journalStore) Entries(context.Context, types.ID) ([]location.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries, nil
}

func (s *journalStore) CustomPins(context.Context, types.ID) ([]location.CustomPin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pins, nil
}

func (s *journalStore) SaveCustomPin(_ context.Context, _ types.ID, p location.CustomPin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins = append(s.pins, p)
	return nil
}

type stubGeocoder struct {
	mu          sync.Mutex
	calls       int
	lastSession maps.SessionToken
	err         error
}

func (g *stubGeocoder) Autocomplete(_ context.Context, q string, session maps.SessionToken, _ *types.Point) ([]maps.Prediction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastSession = session
	if g.err != nil {
		return nil, g.err
	}
	return []maps.Prediction{{PlaceID: "p-" + q, MainText: q}}, nil
}

func (g *stubGeocoder) ResolvePlace(_ context.Context, id string, _ maps.SessionToken) (maps.Place, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return maps.Place{}, g.err
	}
	return maps.Place{PlaceID: id, Name: "Lisbon", Address: "Lisbon, Portugal", Point: types.Point{Lat: 38.72, Lng: -9.14}}, nil
}

func (g *stubGeocoder) ReverseGeocode(_ context.Context, p types.Point) (maps.Place, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return maps.Place{}, g.err
	}
	return maps.Place{Name: "Somewhere", Address: "Somewhere, Earth", Point: p}, nil
}

type historyRepo struct {
	mu    sync.Mutex
	items []history.Item
}

func (r *historyRepo) Insert(_ context.Context, _ types.ID, it *history.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it.ID = int64(len(r.items) + 1)
	it.CreatedAt = day0
	r.items = append([]history.Item{*it}, r.items...)
	return nil
}

func (r *historyRepo) ListRecent(_ context.Context, _ types.ID, limit int) ([]history.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.items) {
		limit = len(r.items)
	}
	return append([]history.Item(nil), r.items[:limit]...), nil
}

func (r *historyRepo) Clear(context.Context, types.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.items))
	r.items = nil
	return n, nil
}

func (r *historyRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type stubProvider struct{}

func (stubProvider) GenerateTripNarrative(_ context.Context, s ai.TripSummary) (*ai.Narrative, error) {
	return &ai.Narrative{Title: s.Name, Body: "A fine trip."}, nil
}

type usageRepo struct {
	mu   sync.Mutex
	left map[types.ID]int
}

func (u *usageRepo) UseToken(_ context.Context, uid types.ID, _ string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	n, ok := u.left[uid]
	if !ok || n <= 0 {
		return aiusage.ErrInsufficientTokens
	}
	u.left[uid] = n - 1
	return nil
}

func (u *usageRepo) EnsureUser(context.Context, types.ID, string) error { return nil }

func (u *usageRepo) Remaining(_ context.Context, uid types.ID, _ string) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.left[uid], nil
}

type fixture struct {
	router  *gin.Engine
	store   *journalStore
	geo     *stubGeocoder
	history *historyRepo
	usage   *usageRepo
}

func newFixture(t *testing.T, withAI bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		store: &journalStore{
			trips: []location.Trip{{ID: "t1", Name: "Iberia", Status: location.TripCompleted}},
			entries: []location.Entry{
				{ID: "e1", TripID: "t1", Place: location.Place{Lat: 40.42, Lng: -3.70, Name: "Madrid", Country: "Spain"}, Timestamp: day0},
				{ID: "e2", TripID: "t1", Place: location.Place{Lat: 38.72, Lng: -9.14, Name: "Lisbon", Country: "Portugal"}, Timestamp: day0.Add(48 * time.Hour)},
				{ID: "e3", Place: location.Place{Lat: 48.86, Lng: 2.35, Name: "Paris", Country: "France"}, Timestamp: day0},
			},
		},
		geo:     &stubGeocoder{},
		history: &historyRepo{},
		usage:   &usageRepo{left: map[types.ID]int{"u1": 1}},
	}
	locSvc := location.NewService(f.store)
	usage := aiusage.NewService(f.usage)
	var provider ai.NarrativeProvider
	if withAI {
		provider = stubProvider{}
	}
	opts := mapview.DefaultOptions()
	opts.Timeout = 2 * time.Second
	f.router = wayhttp.NewRouter(wayhttp.RouterDeps{
		Location:   locSvc,
		Geocoder:   f.geo,
		History:    history.NewService(f.history),
		Narrator:   service.NewTripNarrator(locSvc, provider, usage, time.Second),
		AIUsage:    usage,
		Verifier:   stubVerifier{},
		MapOptions: opts,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestMapAuth(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token good", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"rejected token", "Bearer forged", http.StatusUnauthorized},
		{"verified token", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, false)
			req := httptest.NewRequest(http.MethodGet, "/api/map", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}

			callers := f.store.seenCallers()
			if tc.want != http.StatusOK {
				if len(callers) != 0 {
					t.Fatalf("journal read for unauthenticated request: %v", callers)
				}
				return
			}
			if len(callers) == 0 {
				t.Fatal("journal never read")
			}
			for _, uid := range callers {
				if uid != "u1" {
					t.Fatalf("journal read as %q, want u1", uid)
				}
			}
		})
	}
}

type mapBody struct {
	Scene struct {
		Zoom      int `json:"zoom"`
		Markers   []json.RawMessage
		Polylines []json.RawMessage
	} `json:"scene"`
	Pass struct {
		Routes     []json.RawMessage `json:"routes"`
		Standalone int               `json:"standalone"`
		Markers    int               `json:"markers"`
	} `json:"pass"`
	Stats struct {
		TotalLocations int `json:"totalLocations"`
		Countries      int `json:"countries"`
	} `json:"stats"`
}

func TestMap(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(t, http.MethodGet, "/api/map", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("map = %d %s", w.Code, w.Body.String())
	}
	body := decode[mapBody](t, w)
	if len(body.Pass.Routes) != 1 || body.Pass.Standalone != 1 || body.Pass.Markers != 3 {
		t.Fatalf("pass = %+v", body.Pass)
	}
	if len(body.Scene.Markers) != 3 || len(body.Scene.Polylines) != 1 {
		t.Fatalf("scene markers=%d polylines=%d", len(body.Scene.Markers), len(body.Scene.Polylines))
	}
	if body.Scene.Zoom < mapview.AutoMinZoom || body.Scene.Zoom > mapview.AutoMaxZoom {
		t.Fatalf("zoom %d outside auto range", body.Scene.Zoom)
	}
	if body.Stats.TotalLocations != 3 || body.Stats.Countries != 3 {
		t.Fatalf("stats = %+v", body.Stats)
	}

	w = f.do(t, http.MethodGet, "/api/map?lat=51.5&lng=-0.12", nil)
	if got := decode[mapBody](t, w); got.Pass.Markers != 4 {
		t.Fatalf("current position pin missing: %+v", got.Pass)
	}

	for _, q := range []string{"?lat=abc&lng=1", "?lat=95&lng=1", "?cluster=maybe"} {
		if w := f.do(t, http.MethodGet, "/api/map"+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestAddCustomPin(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(t, http.MethodPost, "/api/locations/custom", map[string]any{"name": "Cafe", "lat": 41.15, "lng": -8.61})
	if w.Code != http.StatusCreated {
		t.Fatalf("add pin = %d %s", w.Code, w.Body.String())
	}
	pin := decode[location.CustomPin](t, w)
	if pin.Kind != location.KindFavorite || pin.ID == "" {
		t.Fatalf("pin = %+v", pin)
	}

	w = f.do(t, http.MethodPost, "/api/locations/custom", map[string]any{"name": "Cafe", "lat": 41.15, "lng": -8.61, "kind": "secret"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: expected 400, got %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/stats", nil)
	if got := decode[struct {
		TotalLocations int `json:"totalLocations"`
	}](t, w); got.TotalLocations != 4 {
		t.Fatalf("stats after pin = %+v", got)
	}
}

func TestAutocomplete(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(t, http.MethodGet, "/api/places/autocomplete?q=%20%20", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("blank query = %d %q", w.Code, w.Body.String())
	}
	if f.geo.calls != 0 {
		t.Fatalf("geocoder called %d times for a blank query", f.geo.calls)
	}

	session := uuid.New()
	w = f.do(t, http.MethodGet, "/api/places/autocomplete?q=lis&session="+session.String(), nil)
	preds := decode[[]maps.Prediction](t, w)
	if len(preds) != 1 || preds[0].PlaceID != "p-lis" {
		t.Fatalf("predictions = %+v", preds)
	}
	if uuid.UUID(f.geo.lastSession) != session {
		t.Fatal("session token not forwarded")
	}

	f.geo.err = maps.ErrNoResults
	if w := f.do(t, http.MethodGet, "/api/places/autocomplete?q=zzz", nil); w.Code != http.StatusNotFound {
		t.Fatalf("no results: expected 404, got %d", w.Code)
	}
}

func TestPlaceRecordsHistory(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(t, http.MethodGet, "/api/places/abc123", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("place = %d %s", w.Code, w.Body.String())
	}
	if got := decode[maps.Place](t, w); got.PlaceID != "abc123" {
		t.Fatalf("place = %+v", got)
	}
	if f.history.len() != 1 {
		t.Fatalf("history has %d items", f.history.len())
	}

	w = f.do(t, http.MethodGet, "/api/search/history?limit=5", nil)
	items := decode[[]history.Item](t, w)
	if len(items) != 1 || items[0].Name != "Lisbon" {
		t.Fatalf("history = %+v", items)
	}
	if w := f.do(t, http.MethodGet, "/api/search/history?limit=x", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", w.Code)
	}

	w = f.do(t, http.MethodDelete, "/api/search/history", nil)
	if w.Code != http.StatusOK || f.history.len() != 0 {
		t.Fatalf("clear = %d, %d left", w.Code, f.history.len())
	}
	w = f.do(t, http.MethodGet, "/api/search/history", nil)
	if w.Body.String() != "[]" {
		t.Fatalf("empty history = %q", w.Body.String())
	}
}

func TestReverse(t *testing.T) {
	f := newFixture(t, false)

	if w := f.do(t, http.MethodGet, "/api/places/reverse", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing coordinates: expected 400, got %d", w.Code)
	}
	w := f.do(t, http.MethodGet, "/api/places/reverse?lat=10&lng=20", nil)
	got := decode[maps.Place](t, w)
	if got.Name != "Somewhere" || got.Point != (types.Point{Lat: 10, Lng: 20}) {
		t.Fatalf("reverse = %+v", got)
	}
	if f.history.len() != 0 {
		t.Fatal("reverse lookups must not be recorded")
	}
}

func TestNarrative(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, false)
		if w := f.do(t, http.MethodPost, "/api/trips/t1/narrative", nil); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
	})

	f := newFixture(t, true)
	if w := f.do(t, http.MethodPost, "/api/trips/bad%20id/narrative", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/api/trips/nope/narrative", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown trip: expected 404, got %d", w.Code)
	}

	w := f.do(t, http.MethodPost, "/api/trips/t1/narrative", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("narrative = %d %s", w.Code, w.Body.String())
	}
	if got := decode[ai.Narrative](t, w); got.Title != "Iberia" {
		t.Fatalf("narrative = %+v", got)
	}

	if w := f.do(t, http.MethodPost, "/api/trips/t1/narrative", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("exhausted quota: expected 429, got %d", w.Code)
	}
	w = f.do(t, http.MethodGet, "/api/ai/usage", nil)
	if got := decode[map[string]int](t, w); got["remaining"] != 0 {
		t.Fatalf("usage = %+v", got)
	}
}
