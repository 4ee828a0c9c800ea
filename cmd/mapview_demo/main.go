// README: Headless map demo; renders a sample journal on the recording surface and prints the scene as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/maps"
	"wayfarer/internal/mapview"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/modules/stats"
	"wayfarer/internal/search"
	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

func main() {
	trip := flag.String("trip", "", "trip id to focus (iberia, alps)")
	cluster := flag.Bool("cluster", true, "group markers when there are many")
	query := flag.String("search", "", "place search to run after rendering (needs GOOGLE_MAPS_API_KEY)")
	pickLat := flag.Float64("pick-lat", 41.9028, "latitude of the simulated empty-map click")
	pickLng := flag.Float64("pick-lng", 12.4964, "longitude of the simulated empty-map click")
	flag.Parse()

	logger.SetDebug(os.Getenv("WAYFARER_DEBUG") != "")
	mc := config.LoadMap()
	opts := mc.Options(10 * time.Second)
	ctx := context.Background()

	rec := mapview.NewRecorder()
	m := mapview.NewMap(rec, opts.Timeout)
	if err := m.Init(ctx, nil); err != nil {
		log.Fatalf("map init: %v", err)
	}
	defer m.Dispose()

	r := mapview.NewRenderer(m, opts, mapview.Callbacks{
		OnLocationClick: func(l location.Location) {
			fmt.Fprintf(os.Stderr, "clicked %s (%s)\n", l.Name, l.Point)
		},
	})
	defer r.Close()
	sched := mapview.NewScheduler(r)
	defer sched.Close()

	trips, entries, pins := sampleJournal()
	locs := location.Aggregate(entries, trips, pins)
	sched.SetTrips(trips)
	sched.SetLocations(locs)
	sched.SetClustering(*cluster)
	sched.SelectTrip(types.ID(*trip))
	sched.SetCurrentPosition(&types.Point{Lat: 52.52, Lng: 13.405})
	sched.Flush()
	sched.Wait()
	r.Viewport().Wait()

	pass, err := sched.Last()
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	if ms := rec.Markers(); len(ms) > 0 {
		_ = rec.Fire(ms[0].Handle, mapview.EventClick)
		r.Viewport().Wait()
	}

	places := placesFromEnv()

	var picked *mapview.Selection
	var address mapview.AddressFunc
	if places != nil {
		address = func(ctx context.Context, p types.Point) (string, error) {
			place, err := places.ReverseGeocode(ctx, p)
			return place.Address, err
		}
	}
	picker := mapview.NewPicker(m, address, opts.Timeout, func(s mapview.Selection) { picked = &s })
	if err := picker.Enable(); err != nil {
		log.Fatalf("picker: %v", err)
	}
	rec.ClickMap(types.Point{Lat: *pickLat, Lng: *pickLng})
	picker.Close()

	if *query != "" {
		if places == nil {
			log.Print("GOOGLE_MAPS_API_KEY not set; skipping search")
		} else {
			runSearch(ctx, *query, places, r.Viewport(), mc)
		}
	}

	out := struct {
		Pass   mapview.Pass       `json:"pass"`
		Scene  mapview.Scene      `json:"scene"`
		Zooms  []int              `json:"zoomHistory"`
		Stats  stats.Summary      `json:"stats"`
		Picked *mapview.Selection `json:"picked,omitempty"`
	}{pass, rec.Scene(), rec.ZoomHistory(), stats.Aggregate(trips, locs), picked}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}

func placesFromEnv() *maps.PlacesService {
	key := os.Getenv("GOOGLE_MAPS_API_KEY")
	if key == "" {
		return nil
	}
	places, err := maps.NewPlacesService(key, "en")
	if err != nil {
		log.Printf("maps client: %v", err)
		return nil
	}
	return places
}

func runSearch(ctx context.Context, q string, places *maps.PlacesService, camera *mapview.Viewport, mc config.MapConfig) {
	settled := make(chan search.Snapshot, 1)
	c := search.NewController(places, camera, search.Config{
		Debounce:    mc.SearchDebounce,
		Interactive: true,
		OnSelect: func(s mapview.Selection) {
			fmt.Fprintf(os.Stderr, "selected %.5f,%.5f %s\n", s.Lat, s.Lng, s.Address)
		},
		OnChange: func(s search.Snapshot) {
			switch s.State {
			case search.StateResults, search.StateEmpty, search.StateError:
				select {
				case settled <- s:
				default:
				}
			}
		},
	})
	defer c.Close()

	c.Input(q)
	c.Submit()
	var snap search.Snapshot
	select {
	case snap = <-settled:
	case <-time.After(15 * time.Second):
		log.Print("search timed out")
		return
	}
	if len(snap.Results) == 0 {
		log.Printf("no results for %q (%s)", q, snap.State)
		return
	}
	if _, err := c.Select(ctx, snap.Results[0].PlaceID); err != nil {
		log.Printf("select: %v", err)
		return
	}
	camera.Wait()
}

func sampleJournal() ([]location.Trip, []location.Entry, []location.CustomPin) {
	day := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)
	at := func(d int) time.Time { return day.Add(time.Duration(d) * 24 * time.Hour) }
	trips := []location.Trip{
		{ID: "iberia", Name: "Iberian loop", Status: location.TripCompleted, CountriesVisited: []string{"Spain", "Portugal"}},
		{ID: "alps", Name: "Alps next summer", Status: location.TripPlanned},
	}
	entries := []location.Entry{
		{ID: "e1", TripID: "iberia", Title: "Arrival", Place: location.Place{Lat: 40.4168, Lng: -3.7038, Name: "Madrid", City: "Madrid", Country: "Spain"}, Timestamp: at(0)},
		{ID: "e2", TripID: "iberia", Title: "Fado night", Place: location.Place{Lat: 38.7223, Lng: -9.1393, Name: "Lisbon", City: "Lisbon", Country: "Portugal"}, Timestamp: at(3)},
		{ID: "e3", TripID: "iberia", Title: "Port tasting", Place: location.Place{Lat: 41.1579, Lng: -8.6291, Name: "Porto", City: "Porto", Country: "Portugal"}, Timestamp: at(5)},
		{ID: "e4", TripID: "iberia", Title: "Back home", Place: location.Place{Lat: 41.3874, Lng: 2.1686, Name: "Barcelona", City: "Barcelona", Country: "Spain"}, Timestamp: at(8)},
		{ID: "e5", TripID: "alps", Title: "Matterhorn", Place: location.Place{Lat: 46.0207, Lng: 7.7491, Name: "Zermatt", Country: "Switzerland"}, Timestamp: at(300)},
		{ID: "e6", TripID: "alps", Title: "Lake day", Place: location.Place{Lat: 46.6863, Lng: 7.8632, Name: "Interlaken", Country: "Switzerland"}, Timestamp: at(302)},
		{ID: "e7", Title: "Weekend away", Place: location.Place{Lat: 48.8566, Lng: 2.3522, Name: "Paris", Country: "France"}, Timestamp: at(-30)},
	}
	pins := []location.CustomPin{
		{ID: "pin-1", Name: "Someday: Kyoto", Lat: 35.0116, Lng: 135.7681, Kind: location.KindPlanned, CreatedAt: at(-10)},
	}
	return trips, entries, pins
}
