package calendar

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StubCalendar is an in-memory Store and StoreProvider. ListErr / CreateErr
// simulate store outages.
type StubCalendar struct {
	mu        sync.Mutex
	data      map[string]ExistingEvent
	Queries   []ListQuery
	Created   []EventPayload
	ListErr   error
	CreateErr error
	StoreErr  error
}

func NewStubCalendar() *StubCalendar {
	return &StubCalendar{data: map[string]ExistingEvent{}}
}

func (c *StubCalendar) StoreFor(_ context.Context, _ Identity) (Store, error) {
	if c.StoreErr != nil {
		return nil, c.StoreErr
	}
	return c, nil
}

func (c *StubCalendar) Add(title string, start, end time.Time) ExistingEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	event := ExistingEvent{ID: uuid.NewString(), Title: title, Start: start, End: end}
	c.data[event.ID] = event
	return event
}

func (c *StubCalendar) ListEvents(_ context.Context, query ListQuery) ([]ExistingEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries = append(c.Queries, query)
	if c.ListErr != nil {
		return nil, c.ListErr
	}

	var events []ExistingEvent
	for _, event := range c.data {
		if !event.End.After(query.TimeMin) {
			continue
		}
		if !query.TimeMax.IsZero() && !event.Start.Before(query.TimeMax) {
			continue
		}
		events = append(events, event)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	if !query.AllPages && query.MaxResults > 0 && int64(len(events)) > query.MaxResults {
		events = events[:query.MaxResults]
	}
	return events, nil
}

func (c *StubCalendar) CreateEvent(_ context.Context, payload EventPayload) (ExistingEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Created = append(c.Created, payload)
	if c.CreateErr != nil {
		return ExistingEvent{}, c.CreateErr
	}

	start, _, err := NormalizeTime(payload.Start.DateTime, "", payload.Start.TimeZone, nil)
	if err != nil {
		return ExistingEvent{}, err
	}
	end, _, err := NormalizeTime(payload.End.DateTime, "", payload.End.TimeZone, nil)
	if err != nil {
		return ExistingEvent{}, err
	}
	if payload.Summary == "" {
		return ExistingEvent{}, errors.New("summary is required")
	}

	event := ExistingEvent{
		ID:       uuid.NewString(),
		Title:    payload.Summary,
		Location: payload.Location,
		Start:    start,
		End:      end,
	}
	c.data[event.ID] = event
	return event, nil
}

func (c *StubCalendar) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string]ExistingEvent{}
	c.Queries = nil
	c.Created = nil
	c.ListErr = nil
	c.CreateErr = nil
	c.StoreErr = nil
}
