// Package event is the facade the HTTP layer talks to: it chains extraction,
// the availability check and calendar creation.
package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quickcal/quickcal/internal/utils"
	"github.com/quickcal/quickcal/pkg/availability"
	"github.com/quickcal/quickcal/pkg/calendar"
	"github.com/quickcal/quickcal/pkg/extraction"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidInput = errors.New("invalid input")

type ProcessResult struct {
	Event        extraction.CandidateEvent `json:"event"`
	Availability availability.Result       `json:"availability"`
	Confidence   float64                   `json:"confidence"`
}

type Extractor interface {
	ProcessText(ctx context.Context, text string, timezone string) extraction.CandidateEvent
	Status() extraction.Status
}

type AvailabilityChecker interface {
	Check(ctx context.Context, identity calendar.Identity, start, end time.Time) (availability.Result, error)
}

type Config struct {
	// Timezone used when the caller does not send one.
	Timezone   string
	MaxResults int64
}

type Service interface {
	Process(ctx context.Context, identity calendar.Identity, text string, timezone string) (ProcessResult, error)
	Create(ctx context.Context, identity calendar.Identity, candidate extraction.CandidateEvent, timezone string) (calendar.ExistingEvent, error)
	ListUpcoming(ctx context.Context, identity calendar.Identity) ([]calendar.ExistingEvent, error)
	Status() extraction.Status
	ExportICS(candidate extraction.CandidateEvent) ([]byte, error)
}

type ServiceImpl struct {
	extractor Extractor
	checker   AvailabilityChecker
	stores    calendar.StoreProvider
	clock     utils.Clock
	cfg       Config
}

func NewService(extractor Extractor, checker AvailabilityChecker, stores calendar.StoreProvider, clock utils.Clock, cfg Config) *ServiceImpl {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = availability.DefaultMaxResults
	}
	return &ServiceImpl{
		extractor: extractor,
		checker:   checker,
		stores:    stores,
		clock:     clock,
		cfg:       cfg,
	}
}

func (s *ServiceImpl) Process(ctx context.Context, identity calendar.Identity, text string, timezone string) (ProcessResult, error) {
	if strings.TrimSpace(text) == "" {
		return ProcessResult{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if timezone == "" {
		timezone = s.cfg.Timezone
	}

	candidate := s.extractor.ProcessText(ctx, text, timezone)
	log.Debugf("extracted %q at %s (confidence %.1f)", candidate.Title, candidate.Start, candidate.Confidence)

	result, err := s.checker.Check(ctx, identity, candidate.Start, candidate.End)
	if err != nil {
		return ProcessResult{}, err
	}

	return ProcessResult{
		Event:        candidate,
		Availability: result,
		Confidence:   candidate.Confidence,
	}, nil
}

func (s *ServiceImpl) Create(ctx context.Context, identity calendar.Identity, candidate extraction.CandidateEvent, timezone string) (calendar.ExistingEvent, error) {
	if strings.TrimSpace(candidate.Title) == "" {
		return calendar.ExistingEvent{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if candidate.Start.IsZero() || !candidate.End.After(candidate.Start) {
		return calendar.ExistingEvent{}, fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}

	loc := utils.LoadLocation(timezone, s.cfg.Timezone)
	payload := calendar.EventPayload{
		Summary:     candidate.Title,
		Description: candidate.Description,
		Location:    candidate.Location,
		Start: calendar.EventTime{
			DateTime: candidate.Start.In(loc).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
		End: calendar.EventTime{
			DateTime: candidate.End.In(loc).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
	}

	store, err := s.stores.StoreFor(ctx, identity)
	if err != nil {
		return calendar.ExistingEvent{}, asStoreError(calendar.OpCreate, err)
	}
	created, err := store.CreateEvent(ctx, payload)
	if err != nil {
		return calendar.ExistingEvent{}, asStoreError(calendar.OpCreate, err)
	}
	log.Infof("created event %s", created.ID)
	return created, nil
}

func (s *ServiceImpl) ListUpcoming(ctx context.Context, identity calendar.Identity) ([]calendar.ExistingEvent, error) {
	store, err := s.stores.StoreFor(ctx, identity)
	if err != nil {
		return nil, asStoreError(calendar.OpList, err)
	}
	events, err := store.ListEvents(ctx, calendar.ListQuery{
		TimeMin:    s.clock.Now(),
		MaxResults: s.cfg.MaxResults,
	})
	if err != nil {
		return nil, asStoreError(calendar.OpList, err)
	}
	if events == nil {
		events = []calendar.ExistingEvent{}
	}
	return events, nil
}

func (s *ServiceImpl) Status() extraction.Status {
	return s.extractor.Status()
}

func asStoreError(op calendar.Operation, err error) error {
	var storeErr *calendar.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &calendar.StoreError{Op: op, Err: err}
}
