// Package extraction turns free text into a CandidateEvent. Extractors are
// interchangeable tiers; the Orchestrator tries them in order and always ends
// with the deterministic FallbackExtractor.
package extraction

import (
	"context"
	"errors"
	"time"
)

var ErrExtractionFailed = errors.New("extraction failed")

const (
	ModelConfidence    = 0.8
	FallbackConfidence = 0.3

	DefaultTitle    = "Event"
	DefaultLocation = "TBD"
	DefaultDuration = time.Hour
	DefaultHour     = 14
)

type CandidateEvent struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
}

func (e CandidateEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Extractor is one extraction tier. A failing tier returns an error wrapping
// ErrExtractionFailed and never partial data.
type Extractor interface {
	Extract(ctx context.Context, text string, timezone string) (CandidateEvent, error)
}

// withValidRange restores End > Start using the default duration.
func withValidRange(e CandidateEvent) CandidateEvent {
	if !e.End.After(e.Start) {
		e.End = e.Start.Add(DefaultDuration)
	}
	return e
}
