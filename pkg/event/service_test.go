package event

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quickcal/quickcal/internal/utils"
	"github.com/quickcal/quickcal/pkg/availability"
	"github.com/quickcal/quickcal/pkg/calendar"
	"github.com/quickcal/quickcal/pkg/extraction"
	"github.com/quickcal/quickcal/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newYork = "America/New_York"

var nyc, _ = time.LoadLocation(newYork)

type fixture struct {
	service *ServiceImpl
	store   *calendar.StubCalendar
	backend *llm.StubBackend
	clock   *utils.MockClock
}

func setupService(t *testing.T) fixture {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 1, 15, 10, 0, 0, 0, nyc)}
	store := calendar.NewStubCalendar()
	backend := &llm.StubBackend{Service: llm.ServiceHosted, Err: errors.New("offline")}
	selector := llm.NewSelector(llm.Config{HostedCredential: "key"}, backend, nil)
	fallback := extraction.NewFallbackExtractor(clock, newYork)
	orchestrator := extraction.NewOrchestrator(selector, fallback,
		extraction.NewModelExtractor(selector, clock, newYork, time.Second))
	checker := availability.NewChecker(store, availability.Config{})
	service := NewService(orchestrator, checker, store, clock, Config{Timezone: newYork, MaxResults: 50})
	return fixture{service: service, store: store, backend: backend, clock: clock}
}

var identity = calendar.Identity{Subject: "uid-1", AccessToken: "token"}

func TestService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("should extract with fallback and report availability", func(t *testing.T) {
		// given
		f := setupService(t)

		// when
		result, err := f.service.Process(ctx, identity, "gym session tomorrow for 2 hours at the arc gym", newYork)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Gym Session", result.Event.Title)
		assert.Equal(t, extraction.FallbackConfidence, result.Confidence)
		assert.True(t, result.Availability.IsAvailable)
		assert.Equal(t, 1, f.backend.Calls())
	})

	t.Run("should use model result when backend answers", func(t *testing.T) {
		f := setupService(t)
		f.backend.Err = nil
		f.backend.Response = `{"title":"Gym Session","start":"2025-01-16T14:00:00-05:00","end":"2025-01-16T16:00:00-05:00","location":"Arc Gym"}`
		f.store.Add("Standup", time.Date(2025, 1, 16, 14, 0, 0, 0, nyc), time.Date(2025, 1, 16, 15, 0, 0, 0, nyc))

		result, err := f.service.Process(ctx, identity, "gym session tomorrow for 2 hours at the arc gym", newYork)

		require.NoError(t, err)
		assert.Equal(t, extraction.ModelConfidence, result.Confidence)
		assert.False(t, result.Availability.IsAvailable)
		require.Len(t, result.Availability.Conflicts, 1)
		assert.NotEmpty(t, result.Availability.SuggestedTimes)
	})

	t.Run("should reject blank text before extraction", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.Process(ctx, identity, "   ", newYork)

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, 0, f.backend.Calls())
		assert.Empty(t, f.store.Queries)
	})

	t.Run("should default timezone", func(t *testing.T) {
		f := setupService(t)

		result, err := f.service.Process(ctx, identity, "meeting at 3pm today", "")

		require.NoError(t, err)
		assert.Equal(t, newYork, result.Event.Start.Location().String())
	})

	t.Run("should propagate store failure", func(t *testing.T) {
		f := setupService(t)
		f.store.ListErr = errors.New("boom")

		_, err := f.service.Process(ctx, identity, "meeting at 3pm today", newYork)

		var storeErr *calendar.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, calendar.OpList, storeErr.Op)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 16, 19, 0, 0, 0, time.UTC)
	candidate := extraction.CandidateEvent{
		Title:       "Gym Session",
		Start:       start,
		End:         start.Add(2 * time.Hour),
		Location:    "Arc Gym",
		Description: "gym",
	}

	t.Run("should send payload in configured timezone", func(t *testing.T) {
		f := setupService(t)

		created, err := f.service.Create(ctx, identity, candidate, "")

		require.NoError(t, err)
		assert.Equal(t, "Gym Session", created.Title)
		require.Len(t, f.store.Created, 1)
		payload := f.store.Created[0]
		assert.Equal(t, "2025-01-16T14:00:00-05:00", payload.Start.DateTime)
		assert.Equal(t, newYork, payload.Start.TimeZone)
		assert.Equal(t, "2025-01-16T16:00:00-05:00", payload.End.DateTime)
		assert.Equal(t, "Arc Gym", payload.Location)
	})

	t.Run("should honour requested timezone", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.Create(ctx, identity, candidate, "Europe/Warsaw")

		require.NoError(t, err)
		assert.Equal(t, "2025-01-16T20:00:00+01:00", f.store.Created[0].Start.DateTime)
		assert.Equal(t, "Europe/Warsaw", f.store.Created[0].Start.TimeZone)
	})

	t.Run("should validate candidate", func(t *testing.T) {
		f := setupService(t)
		untitled := candidate
		untitled.Title = " "
		backwards := candidate
		backwards.End = backwards.Start

		_, errTitle := f.service.Create(ctx, identity, untitled, "")
		_, errRange := f.service.Create(ctx, identity, backwards, "")

		assert.ErrorIs(t, errTitle, ErrInvalidInput)
		assert.ErrorIs(t, errRange, ErrInvalidInput)
		assert.Empty(t, f.store.Created)
	})

	t.Run("should tag failure as create store error", func(t *testing.T) {
		f := setupService(t)
		f.store.CreateErr = errors.New("503")

		_, err := f.service.Create(ctx, identity, candidate, "")

		assert.ErrorIs(t, err, calendar.ErrStoreUnavailable)
		var storeErr *calendar.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, calendar.OpCreate, storeErr.Op)
	})
}

func TestService_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	now := f.clock.Now()
	f.store.Add("Past", now.Add(-3*time.Hour), now.Add(-2*time.Hour))
	f.store.Add("Next", now.Add(time.Hour), now.Add(2*time.Hour))

	events, err := f.service.ListUpcoming(ctx, identity)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Next", events[0].Title)
	require.Len(t, f.store.Queries, 1)
	assert.True(t, f.store.Queries[0].TimeMin.Equal(now))
	assert.Equal(t, int64(50), f.store.Queries[0].MaxResults)

	empty := setupService(t)
	events, err = empty.service.ListUpcoming(ctx, identity)
	require.NoError(t, err)
	assert.NotNil(t, events)
}

func TestService_Status(t *testing.T) {
	f := setupService(t)

	status := f.service.Status()

	assert.True(t, status.FallbackAvailable)
	assert.True(t, status.HostedAvailable)
	assert.Equal(t, llm.ServiceHosted, status.ActiveService)
}

func TestService_ExportICS(t *testing.T) {
	f := setupService(t)
	start := time.Date(2025, 1, 16, 19, 0, 0, 0, time.UTC)

	body, err := f.service.ExportICS(extraction.CandidateEvent{
		Title:       "Gym Session",
		Start:       start,
		End:         start.Add(2 * time.Hour),
		Location:    "Arc Gym",
		Description: "gym session tomorrow",
	})

	require.NoError(t, err)
	doc := string(body)
	assert.True(t, strings.HasPrefix(doc, "BEGIN:VCALENDAR"))
	assert.Contains(t, doc, "METHOD:PUBLISH")
	assert.Contains(t, doc, "SUMMARY:Gym Session")
	assert.Contains(t, doc, "LOCATION:Arc Gym")
	assert.Contains(t, doc, "DTSTART:20250116T190000Z")
	assert.Contains(t, doc, "DTEND:20250116T210000Z")

	_, err = f.service.ExportICS(extraction.CandidateEvent{Title: "x", Start: start, End: start})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
