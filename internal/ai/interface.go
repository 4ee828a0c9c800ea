package ai

import (
	"context"
)

// NarrativeProvider turns a trip's journal data into prose.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type NarrativeProvider interface {
	// GenerateTripNarrative writes a short travel story for one trip.
	GenerateTripNarrative(ctx context.Context, trip TripSummary) (*Narrative, error)
}
