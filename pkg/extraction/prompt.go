package extraction

import (
	"encoding/json"
	"fmt"
	"time"
)

const promptTemplate = `You convert a short free-text description into a single calendar event.

Current local date and time: %[1]s (%[2]s)
Timezone: %[3]s

Reply with one JSON object and nothing else, using exactly these fields:
{"title": string, "start": string, "end": string, "location": string, "description": string}

Rules:
- "start" and "end" are RFC3339 timestamps including the UTC offset of the timezone above.
- "today" means %[4]s and "tomorrow" means %[5]s. Without a date, use tomorrow.
- Without an explicit time of day, start at 14:00 local time.
- Without an explicit duration, the event lasts 1 hour.
- Without a location, use "TBD".
- The title is short and Title Cased.
- The description repeats the input text.

Examples:
Input: gym session tomorrow for 2 hours at the arc gym
Output: %[6]s

Input: meeting at 3pm today
Output: %[7]s

Input: %[8]s
Output:`

type promptExample struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func buildPrompt(text string, now time.Time) string {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	tomorrow := today.AddDate(0, 0, 1)

	gymStart := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), DefaultHour, 0, 0, 0, loc)
	meetingStart := time.Date(today.Year(), today.Month(), today.Day(), 15, 0, 0, 0, loc)

	return fmt.Sprintf(promptTemplate,
		now.Format("Monday, 2006-01-02 15:04"),
		now.Format("-07:00"),
		loc.String(),
		today.Format(time.DateOnly),
		tomorrow.Format(time.DateOnly),
		example("Gym Session", gymStart, gymStart.Add(2*time.Hour), "Arc Gym", "gym session tomorrow for 2 hours at the arc gym"),
		example("Meeting", meetingStart, meetingStart.Add(DefaultDuration), DefaultLocation, "meeting at 3pm today"),
		text,
	)
}

func example(title string, start, end time.Time, location, description string) string {
	out, _ := json.Marshal(promptExample{
		Title:       title,
		Start:       start.Format(time.RFC3339),
		End:         end.Format(time.RFC3339),
		Location:    location,
		Description: description,
	})
	return string(out)
}
