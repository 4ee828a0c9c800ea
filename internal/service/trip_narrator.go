package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wayfarer/internal/ai"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/modules/stats"
	"wayfarer/internal/types"
)

// ErrNarrativeDisabled is returned when no AI provider is configured.
var ErrNarrativeDisabled = errors.New("trip narratives are disabled")

// TripSource is satisfied by *location.Service.
type TripSource interface {
	Trip(ctx context.Context, uid, tripID types.ID) (*location.Trip, []location.Location, error)
}

// Quota is satisfied by *aiusage.Service.
type Quota interface {
	UseToken(ctx context.Context, uid types.ID) error
}

// TripNarrator orchestrates the journal lookup, the per-user allowance and
// the AI narrative generation.
type TripNarrator struct {
	trips    TripSource
	provider ai.NarrativeProvider
	quota    Quota
	timeout  time.Duration
}

// NewTripNarrator creates a TripNarrator. provider may be nil, in which case
// every call returns ErrNarrativeDisabled; a nil quota means no allowance.
func NewTripNarrator(trips TripSource, provider ai.NarrativeProvider, quota Quota, timeout time.Duration) *TripNarrator {
	return &TripNarrator{trips: trips, provider: provider, quota: quota, timeout: timeout}
}

// Narrate writes the story of one of the user's trips.
func (n *TripNarrator) Narrate(ctx context.Context, uid, tripID types.ID) (*ai.Narrative, error) {
	if n.provider == nil {
		return nil, ErrNarrativeDisabled
	}
	trip, stops, err := n.trips.Trip(ctx, uid, tripID)
	if err != nil {
		return nil, err
	}
	if n.quota != nil {
		if err := n.quota.UseToken(ctx, uid); err != nil {
			return nil, err
		}
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	narrative, err := n.provider.GenerateTripNarrative(ctx, Summarize(*trip, stops))
	if err != nil {
		log.Printf("AI Error: %v", err)
		return nil, fmt.Errorf("ai error: %w", err)
	}
	return narrative, nil
}

// Summarize flattens a trip and its ordered stops into the model input.
func Summarize(trip location.Trip, stops []location.Location) ai.TripSummary {
	sum := ai.TripSummary{
		Name:        trip.Name,
		Status:      string(trip.Status),
		Description: trip.Description,
		StartDate:   trip.StartDate,
		EndDate:     trip.EndDate,
		DistanceKm:  stats.TripDistanceKm(stops),
	}

	seen := make(map[string]bool)
	addCountry := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			sum.Countries = append(sum.Countries, c)
		}
	}
	for _, c := range trip.CountriesVisited {
		addCountry(c)
	}
	for _, s := range stops {
		stop := ai.StopSummary{Name: s.Name, City: s.City, Country: s.Country}
		if ts := s.Timestamp(); !ts.IsZero() {
			stop.Date = &ts
		}
		if s.Source != nil && s.Source.Title != s.Name {
			stop.Title = s.Source.Title
		}
		sum.Stops = append(sum.Stops, stop)
		addCountry(s.Country)
	}
	return sum
}
