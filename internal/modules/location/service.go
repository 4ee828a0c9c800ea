// README: Location service loads a user's journal and shapes it into map input.
package location

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/types"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

// Store is the persistence the service needs. FirestoreStore implements it.
type Store interface {
	Trips(ctx context.Context, uid types.ID) ([]Trip, error)
	Entries(ctx context.Context, uid types.ID) ([]Entry, error)
	CustomPins(ctx context.Context, uid types.ID) ([]CustomPin, error)
	SaveCustomPin(ctx context.Context, uid types.ID, p CustomPin) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// MapData is everything a rendering pass needs for one user.
type MapData struct {
	Trips     []Trip     `json:"trips"`
	Entries   []Entry    `json:"-"`
	Locations []Location `json:"locations"`
}

func (s *Service) MapData(ctx context.Context, uid types.ID) (*MapData, error) {
	if uid == "" {
		return nil, ErrBadRequest
	}
	trips, err := s.store.Trips(ctx, uid)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Entries(ctx, uid)
	if err != nil {
		return nil, err
	}
	pins, err := s.store.CustomPins(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &MapData{
		Trips:     trips,
		Entries:   entries,
		Locations: Aggregate(entries, trips, pins),
	}, nil
}

// Trip returns one trip together with its ordered stops.
func (s *Service) Trip(ctx context.Context, uid, tripID types.ID) (*Trip, []Location, error) {
	data, err := s.MapData(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	for i := range data.Trips {
		if data.Trips[i].ID != tripID {
			continue
		}
		var stops []Location
		for _, l := range data.Locations {
			if l.TripID == tripID {
				stops = append(stops, l)
			}
		}
		SortStops(stops)
		return &data.Trips[i], stops, nil
	}
	return nil, nil, ErrNotFound
}

type AddPinCommand struct {
	Name string
	Lat  float64
	Lng  float64
	Kind Kind
}

func (s *Service) AddCustomPin(ctx context.Context, uid types.ID, cmd AddPinCommand) (*CustomPin, error) {
	name := strings.TrimSpace(cmd.Name)
	pt := types.Point{Lat: cmd.Lat, Lng: cmd.Lng}
	if uid == "" || name == "" || !pt.Valid() {
		return nil, ErrBadRequest
	}
	kind := cmd.Kind
	switch kind {
	case "":
		kind = KindFavorite
	case KindVisited, KindPlanned, KindFavorite:
	default:
		return nil, ErrBadRequest
	}
	p := CustomPin{
		ID:        types.ID(uuid.NewString()),
		Name:      name,
		Lat:       cmd.Lat,
		Lng:       cmd.Lng,
		Kind:      kind,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveCustomPin(ctx, uid, p); err != nil {
		return nil, err
	}
	return &p, nil
}
