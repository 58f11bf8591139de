package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quickcal/quickcal/pkg/calendar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// Calendar is a calendar.Store backed by one Google calendar.
type Calendar struct {
	service      *gcal.Service
	calendarId   string
	fallbackZone *time.Location
}

func newGoogleCalendar(service *gcal.Service, calendarId string, fallbackZone *time.Location) *Calendar {
	return &Calendar{
		service:      service,
		calendarId:   calendarId,
		fallbackZone: fallbackZone,
	}
}

func (c *Calendar) ListEvents(ctx context.Context, query calendar.ListQuery) ([]calendar.ExistingEvent, error) {
	call := c.service.Events.List(c.calendarId).
		TimeMin(query.TimeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if !query.TimeMax.IsZero() {
		call = call.TimeMax(query.TimeMax.Format(time.RFC3339))
	}
	if query.MaxResults > 0 {
		call = call.MaxResults(query.MaxResults)
	}

	events := []calendar.ExistingEvent{}
	collect := func(page *gcal.Events) error {
		events = append(events, c.toExistingEvents(page.Items)...)
		return nil
	}

	var err error
	if query.AllPages && !query.TimeMax.IsZero() {
		err = call.Pages(ctx, collect)
	} else {
		var page *gcal.Events
		if page, err = call.Do(); err == nil {
			err = collect(page)
		}
	}
	if err != nil {
		err = storeError(calendar.OpList, err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func (c *Calendar) toExistingEvents(items []*gcal.Event) []calendar.ExistingEvent {
	events := make([]calendar.ExistingEvent, 0, len(items))
	for _, item := range items {
		if item.Status == "cancelled" {
			continue
		}
		event, err := c.toExistingEvent(item)
		if err != nil {
			log.Warnf("ignoring calendar event %s with unusable times: %v", item.Id, err)
			continue
		}
		events = append(events, event)
	}
	return events
}

func (c *Calendar) CreateEvent(ctx context.Context, payload calendar.EventPayload) (calendar.ExistingEvent, error) {
	log.Debugf("Adding event %q to calendar %s", payload.Summary, c.calendarId)

	created, err := c.service.Events.Insert(c.calendarId, &gcal.Event{
		Summary:     payload.Summary,
		Description: payload.Description,
		Location:    payload.Location,
		Start: &gcal.EventDateTime{
			DateTime: payload.Start.DateTime,
			TimeZone: payload.Start.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: payload.End.DateTime,
			TimeZone: payload.End.TimeZone,
		},
	}).Context(ctx).Do()
	if err != nil {
		err := storeError(calendar.OpCreate, err)
		log.Error(err)
		return calendar.ExistingEvent{}, err
	}

	event, err := c.toExistingEvent(created)
	if err != nil {
		return calendar.ExistingEvent{}, &calendar.StoreError{Op: calendar.OpCreate, Err: err}
	}
	return event, nil
}

func (c *Calendar) toExistingEvent(item *gcal.Event) (calendar.ExistingEvent, error) {
	if item.Start == nil || item.End == nil {
		return calendar.ExistingEvent{}, calendar.ErrEmptyTime
	}
	start, allDay, err := calendar.NormalizeTime(item.Start.DateTime, item.Start.Date, item.Start.TimeZone, c.fallbackZone)
	if err != nil {
		return calendar.ExistingEvent{}, fmt.Errorf("start: %w", err)
	}
	end, _, err := calendar.NormalizeTime(item.End.DateTime, item.End.Date, item.End.TimeZone, c.fallbackZone)
	if err != nil {
		return calendar.ExistingEvent{}, fmt.Errorf("end: %w", err)
	}
	return calendar.ExistingEvent{
		ID:       item.Id,
		Title:    item.Summary,
		Location: item.Location,
		Start:    start,
		End:      end,
		AllDay:   allDay,
		HTMLLink: item.HtmlLink,
	}, nil
}

// storeError tags credential problems with ErrUnauthenticated so callers can
// ask the user to sign in again.
func storeError(op calendar.Operation, err error) error {
	var apiErr *googleapi.Error
	var retrieveErr *oauth2.RetrieveError
	if (errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized) || errors.As(err, &retrieveErr) {
		err = fmt.Errorf("%w: %w", calendar.ErrUnauthenticated, err)
	}
	return &calendar.StoreError{Op: op, Err: err}
}
