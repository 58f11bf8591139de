package extraction

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/quickcal/quickcal/internal/utils"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	hoursPattern    = regexp.MustCompile(`(?i)\b(\d{1,4})\s*(?:hours?|hrs?)\b`)
	minutesPattern  = regexp.MustCompile(`(?i)\b(\d{1,4})\s*(?:minutes?|mins?)\b`)
	meridiemPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clockPattern    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

var stopWords = map[string]struct{}{
	"for": {}, "at": {}, "tomorrow": {}, "today": {},
	"hour": {}, "hours": {}, "hr": {}, "hrs": {},
	"minute": {}, "minutes": {}, "min": {}, "mins": {},
	"am": {}, "pm": {},
}

var articles = map[string]struct{}{"the": {}, "a": {}, "an": {}}

// FallbackExtractor is the dependency free tier. It never fails.
type FallbackExtractor struct {
	clock       utils.Clock
	defaultZone string
}

func NewFallbackExtractor(clock utils.Clock, defaultZone string) *FallbackExtractor {
	return &FallbackExtractor{clock: clock, defaultZone: defaultZone}
}

func (f *FallbackExtractor) Extract(_ context.Context, text string, timezone string) (CandidateEvent, error) {
	return f.Parse(text, timezone), nil
}

func (f *FallbackExtractor) Parse(text string, timezone string) CandidateEvent {
	loc := utils.LoadLocation(timezone, f.defaultZone)
	now := f.clock.Now().In(loc)
	tokens := strings.Fields(text)

	day := now.AddDate(0, 0, 1)
	if mentionsToday(tokens) {
		day = now
	}
	hour, minute := parseTimeOfDay(text)
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)

	return withValidRange(CandidateEvent{
		Title:       parseTitle(tokens),
		Start:       start,
		End:         start.Add(parseDuration(text)),
		Location:    parseLocation(tokens),
		Description: text,
		Confidence:  FallbackConfidence,
	})
}

func parseTitle(tokens []string) string {
	var words []string
	for _, token := range tokens {
		word := trimPunctuation(token)
		if word == "" {
			continue
		}
		if isStopWord(strings.ToLower(word)) {
			break
		}
		words = append(words, word)
	}
	if len(words) == 0 {
		return DefaultTitle
	}
	return titleCase(words)
}

func parseLocation(tokens []string) string {
	for i, token := range tokens {
		word := strings.ToLower(trimPunctuation(token))
		var run []string
		switch {
		case word == "at" || word == "@":
			run = collectLocation(tokens[i+1:])
		case strings.HasPrefix(word, "@"):
			rest := strings.TrimPrefix(trimPunctuation(token), "@")
			run = collectLocation(append([]string{rest}, tokens[i+1:]...))
		default:
			continue
		}
		if len(run) > 0 {
			return titleCase(run)
		}
	}
	return DefaultLocation
}

func collectLocation(tokens []string) []string {
	var run []string
	for _, token := range tokens {
		word := trimPunctuation(token)
		if word == "" {
			continue
		}
		lower := strings.ToLower(word)
		if _, ok := articles[lower]; ok && len(run) == 0 {
			continue
		}
		if isStopWord(lower) {
			break
		}
		run = append(run, word)
	}
	return run
}

func parseDuration(text string) time.Duration {
	var total time.Duration
	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += time.Duration(n) * time.Hour
	}
	if m := minutesPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += time.Duration(n) * time.Minute
	}
	if total <= 0 {
		return DefaultDuration
	}
	return total
}

func parseTimeOfDay(text string) (int, int) {
	if m := meridiemPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return DefaultHour, 0
		}
		pm := strings.EqualFold(m[3], "pm")
		switch {
		case pm && hour != 12:
			hour += 12
		case !pm && hour == 12:
			hour = 0
		}
		return hour, minute
	}
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return DefaultHour, 0
		}
		return hour, minute
	}
	return DefaultHour, 0
}

func mentionsToday(tokens []string) bool {
	for _, token := range tokens {
		if strings.EqualFold(trimPunctuation(token), "today") {
			return true
		}
	}
	return false
}

func isStopWord(word string) bool {
	if word == "" {
		return false
	}
	if strings.HasPrefix(word, "@") || unicode.IsDigit([]rune(word)[0]) {
		return true
	}
	_, ok := stopWords[word]
	return ok
}

func trimPunctuation(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		return r != '@' && (unicode.IsPunct(r) || unicode.IsSymbol(r))
	})
}

// Caser is stateful, so each call gets its own.
func titleCase(words []string) string {
	return cases.Title(language.English).String(strings.Join(words, " "))
}
