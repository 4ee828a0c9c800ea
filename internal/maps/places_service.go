package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"wayfarer/internal/types"
)

var (
	ErrNoResults  = errors.New("no geocoding results")
	ErrEmptyQuery = errors.New("empty search query")
)

// SessionToken groups autocomplete keystrokes and the final place lookup
// into one billing session.
type SessionToken = maps.PlaceAutocompleteSessionToken

func NewSessionToken() SessionToken {
	return maps.NewPlaceAutocompleteSessionToken()
}

// Prediction is one autocomplete suggestion.
type Prediction struct {
	PlaceID       string `json:"placeId"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText,omitempty"`
}

// Place is a resolved location.
type Place struct {
	PlaceID string      `json:"placeId,omitempty"`
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Point   types.Point `json:"coordinates"`
}

// PlacesService handles interactions with the Google Places and Geocoding APIs.
type PlacesService struct {
	client   *maps.Client
	language string
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey, language string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client, language: language}, nil
}

// Autocomplete returns predictions for a partial query. bias, when non-nil,
// ranks results near that point first.
func (s *PlacesService) Autocomplete(ctx context.Context, query string, session SessionToken, bias *types.Point) ([]Prediction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	r := &maps.PlaceAutocompleteRequest{
		Input:        query,
		Language:     s.language,
		SessionToken: session,
	}
	if bias != nil {
		r.Location = &maps.LatLng{Lat: bias.Lat, Lng: bias.Lng}
		r.Radius = 50000
	}
	resp, err := s.client.PlaceAutocomplete(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places autocomplete: %w", err)
	}
	out := make([]Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		main := p.StructuredFormatting.MainText
		if main == "" {
			main = p.Description
		}
		out = append(out, Prediction{
			PlaceID:       p.PlaceID,
			MainText:      main,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}
	return out, nil
}

// ResolvePlace fetches name, address and coordinates for a prediction. It
// closes the autocomplete session.
func (s *PlacesService) ResolvePlace(ctx context.Context, placeID string, session SessionToken) (Place, error) {
	r := &maps.PlaceDetailsRequest{
		PlaceID:      placeID,
		Language:     s.language,
		SessionToken: session,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskName,
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometry,
		},
	}
	res, err := s.client.PlaceDetails(ctx, r)
	if err != nil {
		return Place{}, fmt.Errorf("place details %s: %w", placeID, err)
	}
	return Place{
		PlaceID: placeID,
		Name:    res.Name,
		Address: res.FormattedAddress,
		Point:   types.Point{Lat: res.Geometry.Location.Lat, Lng: res.Geometry.Location.Lng},
	}, nil
}

// ReverseGeocode names the closest address to p.
func (s *PlacesService) ReverseGeocode(ctx context.Context, p types.Point) (Place, error) {
	results, err := s.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Language: s.language,
	})
	if err != nil {
		return Place{}, fmt.Errorf("reverse geocode %s: %w", p, err)
	}
	if len(results) == 0 {
		return Place{}, ErrNoResults
	}
	best := results[0]
	return Place{
		PlaceID: best.PlaceID,
		Name:    shortName(best),
		Address: best.FormattedAddress,
		Point:   p,
	}, nil
}

// shortName prefers a point of interest, then the locality, then the first
// segment of the formatted address.
func shortName(r maps.GeocodingResult) string {
	for _, want := range []string{"point_of_interest", "establishment", "locality"} {
		for _, c := range r.AddressComponents {
			for _, t := range c.Types {
				if t == want {
					return c.LongName
				}
			}
		}
	}
	name, _, _ := strings.Cut(r.FormattedAddress, ",")
	return strings.TrimSpace(name)
}
