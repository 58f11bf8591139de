package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quickcal/quickcal/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2025, 1, 16, hour, minute, 0, 0, time.UTC)
}

func TestChecker_Check(t *testing.T) {
	ctx := context.Background()
	identity := calendar.Identity{AccessToken: "token"}

	t.Run("should report conflict and non-conflicting suggestions", func(t *testing.T) {
		// given
		store := calendar.NewStubCalendar()
		existing := store.Add("Standup", at(14, 0), at(15, 0))
		checker := NewChecker(store, Config{})

		// when
		result, err := checker.Check(ctx, identity, at(14, 30), at(15, 30))

		// then
		require.NoError(t, err)
		assert.False(t, result.IsAvailable)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, existing.ID, result.Conflicts[0].ID)
		require.NotEmpty(t, result.SuggestedTimes)
		assert.Equal(t, at(15, 0), result.SuggestedTimes[0])
		for _, suggestion := range result.SuggestedTimes {
			assert.False(t, calendar.Overlaps(existing.Start, existing.End, suggestion, suggestion.Add(time.Hour)))
		}
		assert.Len(t, result.SuggestedTimes, DefaultSuggestions)
	})

	t.Run("should report available when window is empty", func(t *testing.T) {
		store := calendar.NewStubCalendar()
		checker := NewChecker(store, Config{})

		result, err := checker.Check(ctx, identity, at(14, 0), at(15, 0))

		require.NoError(t, err)
		assert.True(t, result.IsAvailable)
		assert.Empty(t, result.Conflicts)
		assert.NotNil(t, result.SuggestedTimes)
		assert.Empty(t, result.SuggestedTimes)
	})

	t.Run("should treat touching intervals as free", func(t *testing.T) {
		store := calendar.NewStubCalendar()
		store.Add("Before", at(13, 0), at(14, 0))
		store.Add("After", at(15, 0), at(16, 0))
		checker := NewChecker(store, Config{})

		result, err := checker.Check(ctx, identity, at(14, 0), at(15, 0))

		require.NoError(t, err)
		assert.True(t, result.IsAvailable)
	})

	t.Run("should query the probed window", func(t *testing.T) {
		store := calendar.NewStubCalendar()
		checker := NewChecker(store, Config{Step: 15 * time.Minute, MaxProbes: 4, MaxResults: 10})

		_, err := checker.Check(ctx, identity, at(14, 0), at(15, 0))

		require.NoError(t, err)
		require.Len(t, store.Queries, 1)
		assert.Equal(t, at(14, 0), store.Queries[0].TimeMin)
		assert.Equal(t, at(16, 0), store.Queries[0].TimeMax)
		assert.Equal(t, int64(10), store.Queries[0].MaxResults)
		assert.True(t, store.Queries[0].AllPages)
	})

	t.Run("should not suggest slots taken by events past the first page", func(t *testing.T) {
		// given more events in the window than fit on one page
		store := calendar.NewStubCalendar()
		store.Add("Busy", at(14, 0), at(15, 0))
		store.Add("Also busy", at(15, 0), at(15, 30))
		store.Add("Still busy", at(15, 30), at(16, 0))
		checker := NewChecker(store, Config{Step: 30 * time.Minute, MaxProbes: 8, Suggestions: 1, MaxResults: 1})

		// when
		result, err := checker.Check(ctx, identity, at(14, 0), at(15, 0))

		// then
		require.NoError(t, err)
		assert.Equal(t, []time.Time{at(16, 0)}, result.SuggestedTimes)
	})

	t.Run("should return fewer suggestions when probes run out", func(t *testing.T) {
		store := calendar.NewStubCalendar()
		store.Add("All afternoon", at(14, 0), at(18, 0))
		checker := NewChecker(store, Config{Step: 30 * time.Minute, MaxProbes: 8})

		result, err := checker.Check(ctx, identity, at(14, 0), at(15, 0))

		require.NoError(t, err)
		assert.False(t, result.IsAvailable)
		assert.Equal(t, []time.Time{at(18, 0)}, result.SuggestedTimes)
	})

	t.Run("should return conflicts ordered by start", func(t *testing.T) {
		store := calendar.NewStubCalendar()
		store.Add("Second", at(15, 0), at(15, 30))
		store.Add("First", at(14, 0), at(14, 30))
		checker := NewChecker(store, Config{})

		result, err := checker.Check(ctx, identity, at(14, 0), at(16, 0))

		require.NoError(t, err)
		require.Len(t, result.Conflicts, 2)
		assert.Equal(t, "First", result.Conflicts[0].Title)
		assert.Equal(t, "Second", result.Conflicts[1].Title)
	})

	t.Run("should reject empty range", func(t *testing.T) {
		checker := NewChecker(calendar.NewStubCalendar(), Config{})

		_, err := checker.Check(ctx, identity, base, base)

		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("should surface list failure as store error", func(t *testing.T) {
		store := calendar.NewStubCalendar()
		store.ListErr = errors.New("googleapi: 503")
		checker := NewChecker(store, Config{})

		_, err := checker.Check(ctx, identity, at(14, 0), at(15, 0))

		assert.ErrorIs(t, err, calendar.ErrStoreUnavailable)
		var storeErr *calendar.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, calendar.OpList, storeErr.Op)
	})

	t.Run("should surface store resolution failure as store error", func(t *testing.T) {
		store := calendar.NewStubCalendar()
		store.StoreErr = errors.New("token expired")
		checker := NewChecker(store, Config{})

		_, err := checker.Check(ctx, identity, at(14, 0), at(15, 0))

		assert.ErrorIs(t, err, calendar.ErrStoreUnavailable)
	})
}
