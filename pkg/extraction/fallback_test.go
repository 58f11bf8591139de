package extraction

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/quickcal/quickcal/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newYork = "America/New_York"

var nyc, _ = time.LoadLocation(newYork)

func fixedClock() *utils.MockClock {
	return &utils.MockClock{FixedNow: time.Date(2025, 1, 15, 10, 0, 0, 0, nyc)}
}

func TestFallbackExtractor_Parse(t *testing.T) {
	extractor := NewFallbackExtractor(fixedClock(), newYork)

	t.Run("should extract gym session with duration and location", func(t *testing.T) {
		// when
		result := extractor.Parse("gym session tomorrow for 2 hours at the arc gym", newYork)

		// then
		assert.Equal(t, "Gym Session", result.Title)
		assert.Equal(t, "Arc Gym", result.Location)
		assert.Equal(t, 2*time.Hour, result.Duration())
		assert.True(t, result.Start.Equal(time.Date(2025, 1, 16, 14, 0, 0, 0, nyc)))
		assert.Equal(t, "gym session tomorrow for 2 hours at the arc gym", result.Description)
		assert.Equal(t, FallbackConfidence, result.Confidence)
	})

	t.Run("should extract meeting today at 3pm", func(t *testing.T) {
		// when
		result := extractor.Parse("meeting at 3pm today", newYork)

		// then
		assert.Equal(t, "Meeting", result.Title)
		assert.Equal(t, DefaultLocation, result.Location)
		assert.Equal(t, time.Hour, result.Duration())
		assert.True(t, result.Start.Equal(time.Date(2025, 1, 15, 15, 0, 0, 0, nyc)))
	})

	t.Run("should convert 12am and 12pm", func(t *testing.T) {
		midnight := extractor.Parse("flight today 12am", newYork)
		noon := extractor.Parse("lunch today 12pm", newYork)

		assert.Equal(t, 0, midnight.Start.Hour())
		assert.Equal(t, 12, noon.Start.Hour())
	})

	t.Run("should read 24h clock time with minutes", func(t *testing.T) {
		result := extractor.Parse("standup 9:45", newYork)

		assert.Equal(t, "Standup", result.Title)
		assert.Equal(t, 9, result.Start.Hour())
		assert.Equal(t, 45, result.Start.Minute())
		assert.Equal(t, 16, result.Start.Day())
	})

	t.Run("should ignore invalid time of day", func(t *testing.T) {
		result := extractor.Parse("party tomorrow 13pm", newYork)

		assert.Equal(t, DefaultHour, result.Start.Hour())
	})

	t.Run("should sum hours and minutes", func(t *testing.T) {
		result := extractor.Parse("workshop for 1 hour 30 minutes", newYork)

		assert.Equal(t, 90*time.Minute, result.Duration())
	})

	t.Run("should use minutes alone", func(t *testing.T) {
		result := extractor.Parse("call with anna for 15 mins", newYork)

		assert.Equal(t, "Call With Anna", result.Title)
		assert.Equal(t, 15*time.Minute, result.Duration())
	})

	t.Run("should read location after at-sign", func(t *testing.T) {
		result := extractor.Parse("coffee @blue bottle tomorrow", newYork)

		assert.Equal(t, "Coffee", result.Title)
		assert.Equal(t, "Blue Bottle", result.Location)
	})

	t.Run("should skip time after at and keep later location", func(t *testing.T) {
		result := extractor.Parse("dinner at 7pm at the harbour inn", newYork)

		assert.Equal(t, "Dinner", result.Title)
		assert.Equal(t, "Harbour Inn", result.Location)
		assert.Equal(t, 19, result.Start.Hour())
	})

	t.Run("should default title for text starting with a stop word", func(t *testing.T) {
		result := extractor.Parse("tomorrow at 5pm", newYork)

		assert.Equal(t, DefaultTitle, result.Title)
	})

	t.Run("should fall back to default zone for unknown timezone", func(t *testing.T) {
		result := extractor.Parse("review", "Mars/Olympus")

		assert.Equal(t, nyc.String(), result.Start.Location().String())
	})

	t.Run("should use requested timezone", func(t *testing.T) {
		result := extractor.Parse("review today 9am", "Europe/Warsaw")

		assert.Equal(t, "Europe/Warsaw", result.Start.Location().String())
		assert.Equal(t, 9, result.Start.Hour())
		assert.Equal(t, 15, result.Start.Day())
	})

	t.Run("should never error through Extract", func(t *testing.T) {
		result, err := extractor.Extract(context.Background(), "", "")

		require.NoError(t, err)
		assert.Equal(t, DefaultTitle, result.Title)
	})
}

func TestFallbackExtractor_AlwaysValidRange(t *testing.T) {
	extractor := NewFallbackExtractor(fixedClock(), newYork)
	inputs := []string{
		"", "   ", "at", "@", "for", "0 hours", "0 minutes", "99:99", "13pm",
		"12am tomorrow", "for 0 hours and 0 mins", "at the", "9999 hours", "über café @ 5:61",
		"spät 23:59 for 9999 minutes", "!!!", "a 1 2 3 am pm hrs",
	}
	vocabulary := []string{
		"gym", "at", "@", "the", "for", "2", "hours", "30", "mins", "today", "tomorrow",
		"3pm", "12:30", "am", "pm", "0", "hr", "!", "café", "@home", "25:00",
	}
	rnd := rand.New(rand.NewSource(7))
	for range 200 {
		words := make([]string, rnd.Intn(8))
		for i := range words {
			words[i] = vocabulary[rnd.Intn(len(vocabulary))]
		}
		inputs = append(inputs, strings.Join(words, " "))
	}

	for _, input := range inputs {
		result := extractor.Parse(input, newYork)

		assert.True(t, result.End.After(result.Start), "end must follow start for %q", input)
		assert.NotEmpty(t, result.Title, "title for %q", input)
		assert.NotEmpty(t, result.Location, "location for %q", input)
	}
}
