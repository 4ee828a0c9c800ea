package ai

import "time"

// TripSummary is everything the model is told about a trip.
type TripSummary struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`

	// Stops are in visiting order.
	Stops      []StopSummary `json:"stops"`
	DistanceKm int           `json:"distanceKm"`
	Countries  []string      `json:"countries,omitempty"`
}

type StopSummary struct {
	Name    string     `json:"name"`
	City    string     `json:"city,omitempty"`
	Country string     `json:"country,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Title   string     `json:"title,omitempty"`
}

// Narrative captures the structured output from the AI model.
type Narrative struct {
	Title string `json:"title"`
	// Body is the story itself, a few short paragraphs.
	Body string `json:"narrative"`
	// Highlights are one-line memories worth pinning on the map.
	Highlights []string `json:"highlights,omitempty"`
}
