// Package availability checks a candidate interval against the user's calendar
// and proposes nearby free slots.
package availability

import (
	"context"
	"errors"
	"time"

	"github.com/quickcal/quickcal/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidRange = errors.New("end must be after start")

const (
	DefaultStep        = 30 * time.Minute
	DefaultMaxProbes   = 48
	DefaultSuggestions = 3
	DefaultMaxResults  = 50
)

type Result struct {
	IsAvailable    bool                     `json:"isAvailable"`
	Conflicts      []calendar.ExistingEvent `json:"conflicts"`
	SuggestedTimes []time.Time              `json:"suggestedTimes"`
}

type Config struct {
	Step        time.Duration
	MaxProbes   int
	Suggestions int
	MaxResults  int64
}

func (c Config) withDefaults() Config {
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	if c.MaxProbes <= 0 {
		c.MaxProbes = DefaultMaxProbes
	}
	if c.Suggestions <= 0 {
		c.Suggestions = DefaultSuggestions
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	return c
}

type Checker struct {
	stores calendar.StoreProvider
	cfg    Config
}

func NewChecker(stores calendar.StoreProvider, cfg Config) *Checker {
	return &Checker{stores: stores, cfg: cfg.withDefaults()}
}

func (c *Checker) Check(ctx context.Context, identity calendar.Identity, start, end time.Time) (Result, error) {
	if !end.After(start) {
		return Result{}, ErrInvalidRange
	}
	duration := end.Sub(start)

	store, err := c.stores.StoreFor(ctx, identity)
	if err != nil {
		return Result{}, &calendar.StoreError{Op: calendar.OpList, Err: err}
	}

	existing, err := store.ListEvents(ctx, calendar.ListQuery{
		TimeMin:    start,
		TimeMax:    start.Add(c.cfg.Step*time.Duration(c.cfg.MaxProbes) + duration),
		MaxResults: c.cfg.MaxResults,
		AllPages:   true,
	})
	if err != nil {
		var storeErr *calendar.StoreError
		if !errors.As(err, &storeErr) {
			err = &calendar.StoreError{Op: calendar.OpList, Err: err}
		}
		log.Errorf("failed to fetch events for availability check: %v", err)
		return Result{}, err
	}

	conflicts := conflictsWith(existing, start, end)
	result := Result{
		IsAvailable:    len(conflicts) == 0,
		Conflicts:      conflicts,
		SuggestedTimes: []time.Time{},
	}
	if !result.IsAvailable {
		result.SuggestedTimes = c.suggest(existing, start, duration)
	}
	log.Debugf("availability for %s-%s: %d conflicts, %d suggestions", start, end, len(conflicts), len(result.SuggestedTimes))
	return result, nil
}

func (c *Checker) suggest(existing []calendar.ExistingEvent, start time.Time, duration time.Duration) []time.Time {
	suggestions := []time.Time{}
	for k := 1; k <= c.cfg.MaxProbes && len(suggestions) < c.cfg.Suggestions; k++ {
		probe := start.Add(time.Duration(k) * c.cfg.Step)
		if len(conflictsWith(existing, probe, probe.Add(duration))) == 0 {
			suggestions = append(suggestions, probe)
		}
	}
	return suggestions
}

func conflictsWith(existing []calendar.ExistingEvent, start, end time.Time) []calendar.ExistingEvent {
	conflicts := []calendar.ExistingEvent{}
	for _, event := range existing {
		if calendar.Overlaps(event.Start, event.End, start, end) {
			conflicts = append(conflicts, event)
		}
	}
	return conflicts
}
