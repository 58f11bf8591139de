package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quickcal/quickcal/internal/utils"
	"github.com/quickcal/quickcal/pkg/llm"
	log "github.com/sirupsen/logrus"
)

const DefaultModelTimeout = 20 * time.Second

const localDateTimeLayout = "2006-01-02T15:04:05"

// ModelExtractor asks a language model for the event and validates its answer.
type ModelExtractor struct {
	backend     llm.Backend
	clock       utils.Clock
	defaultZone string
	timeout     time.Duration
}

func NewModelExtractor(backend llm.Backend, clock utils.Clock, defaultZone string, timeout time.Duration) *ModelExtractor {
	if timeout <= 0 {
		timeout = DefaultModelTimeout
	}
	return &ModelExtractor{
		backend:     backend,
		clock:       clock,
		defaultZone: defaultZone,
		timeout:     timeout,
	}
}

func (m *ModelExtractor) Extract(ctx context.Context, text string, timezone string) (CandidateEvent, error) {
	loc := utils.LoadLocation(timezone, m.defaultZone)
	prompt := buildPrompt(text, m.clock.Now().In(loc))

	raw, err := m.generate(ctx, prompt)
	if err != nil {
		return CandidateEvent{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	log.Tracef("model output: %s", raw)

	return parseModelOutput(raw, text, loc)
}

type generation struct {
	text string
	err  error
}

// generate runs the backend in its own goroutine so a backend that ignores
// ctx still cannot hold the caller past the timeout.
func (m *ModelExtractor) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generation{err: fmt.Errorf("model backend panicked: %v", r)}
			}
		}()
		text, err := m.backend.Generate(ctx, prompt)
		done <- generation{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type modelEvent struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func parseModelOutput(raw string, text string, loc *time.Location) (CandidateEvent, error) {
	object, ok := firstJSONObject(raw)
	if !ok {
		return CandidateEvent{}, fmt.Errorf("%w: no JSON object in model output", ErrExtractionFailed)
	}

	var parsed modelEvent
	if err := json.Unmarshal([]byte(object), &parsed); err != nil {
		return CandidateEvent{}, fmt.Errorf("%w: malformed model output: %w", ErrExtractionFailed, err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return CandidateEvent{}, fmt.Errorf("%w: model output has no title", ErrExtractionFailed)
	}
	start, err := parseModelTime(parsed.Start, loc)
	if err != nil {
		return CandidateEvent{}, fmt.Errorf("%w: start: %w", ErrExtractionFailed, err)
	}
	end, err := parseModelTime(parsed.End, loc)
	if err != nil {
		return CandidateEvent{}, fmt.Errorf("%w: end: %w", ErrExtractionFailed, err)
	}

	location := strings.TrimSpace(parsed.Location)
	if location == "" {
		location = DefaultLocation
	}
	description := strings.TrimSpace(parsed.Description)
	if description == "" {
		description = text
	}

	return withValidRange(CandidateEvent{
		Title:       title,
		Start:       start.In(loc),
		End:         end.In(loc),
		Location:    location,
		Description: description,
		Confidence:  ModelConfidence,
	}), nil
}

func parseModelTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localDateTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
	}
	return t, nil
}
