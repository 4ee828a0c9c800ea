package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrEmptyNarrative = errors.New("model returned an empty narrative")

// GeminiProvider implements NarrativeProvider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Use Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Narratives may vary between runs.
	model.SetTemperature(0.7)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// GenerateTripNarrative asks the model for a title, a short story and a few highlights.
func (p *GeminiProvider) GenerateTripNarrative(ctx context.Context, trip TripSummary) (*Narrative, error) {
	prompt, err := buildNarrativePrompt(trip)
	if err != nil {
		return nil, err
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	return parseNarrative(responseText.String())
}

func parseNarrative(raw string) (*Narrative, error) {
	cleanJSON := cleanJSONString(raw)
	var n Narrative
	if err := json.Unmarshal([]byte(cleanJSON), &n); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	n.Title = strings.TrimSpace(n.Title)
	n.Body = strings.TrimSpace(n.Body)
	if n.Body == "" {
		return nil, ErrEmptyNarrative
	}
	return &n, nil
}

// buildNarrativePrompt constructs the instructions for the AI.
func buildNarrativePrompt(trip TripSummary) (string, error) {
	data, err := json.MarshalIndent(trip, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding trip summary: %w", err)
	}

	return fmt.Sprintf(`Role: You write the travel journal for "Wayfarer", a personal trip diary.
Task: Write a warm, first-person narrative of the trip described below.

RULES:
1. Visit the stops in the order given. Never invent stops, dates or countries that are not in the data.
2. Mention the total distance (%d km) once, naturally.
3. Keep "narrative" under 250 words, in 2 or 3 short paragraphs separated by blank lines.
4. "title" is at most 8 words.
5. "highlights" has 1 to 3 one-sentence memories, each tied to a named stop.
6. If the trip is still planned or a draft, write it as an anticipation of the journey instead.

Trip data (JSON):
%s

Output JSON Schema:
{
  "title": "string",
  "narrative": "string",
  "highlights": ["string"]
}
`, trip.DistanceKm, data), nil
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
