package calendar

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var ErrEmptyTime = errors.New("event time has neither dateTime nor date")

// NormalizeTime converts the two shapes a store can report an event boundary
// in (a RFC3339 dateTime, or an all-day date) into a single instant. All-day
// dates resolve to midnight in the event's own time zone when it is known,
// otherwise in fallback. The boolean reports whether the value was a date.
func NormalizeTime(dateTime, date, timeZone string, fallback *time.Location) (time.Time, bool, error) {
	loc := fallback
	if loc == nil {
		loc = time.UTC
	}
	if timeZone != "" {
		if l, err := time.LoadLocation(timeZone); err == nil {
			loc = l
		}
	}

	if dateTime != "" {
		t, err := time.Parse(time.RFC3339, dateTime)
		if err == nil {
			return t, false, nil
		}
		// some stores omit the offset and rely on timeZone
		t, errLocal := time.ParseInLocation("2006-01-02T15:04:05", dateTime, loc)
		if errLocal != nil {
			return time.Time{}, false, fmt.Errorf("unable to parse dateTime %q: %w", dateTime, err)
		}
		return t, false, nil
	}
	if date != "" {
		t, err := time.ParseInLocation(dateLayout, date, loc)
		if err != nil {
			return time.Time{}, true, fmt.Errorf("unable to parse date %q: %w", date, err)
		}
		return t, true, nil
	}
	return time.Time{}, false, ErrEmptyTime
}

// Overlaps uses half-open semantics: touching intervals do not overlap.
func Overlaps(start, end, otherStart, otherEnd time.Time) bool {
	return otherStart.Before(end) && otherEnd.After(start)
}
