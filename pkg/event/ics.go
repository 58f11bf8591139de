package event

import (
	"fmt"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/quickcal/quickcal/pkg/extraction"
)

const productId = "-//quickcal//event export//EN"

// ExportICS renders the candidate as a single-event iCalendar document.
func (s *ServiceImpl) ExportICS(candidate extraction.CandidateEvent) ([]byte, error) {
	if !candidate.End.After(candidate.Start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productId)

	ev := cal.AddEvent(uuid.NewString() + "@quickcal")
	ev.SetDtStampTime(s.clock.Now())
	ev.SetStartAt(candidate.Start)
	ev.SetEndAt(candidate.End)
	ev.SetSummary(candidate.Title)
	if candidate.Location != "" && candidate.Location != extraction.DefaultLocation {
		ev.SetLocation(candidate.Location)
	}
	if candidate.Description != "" {
		ev.SetDescription(candidate.Description)
	}

	return []byte(cal.Serialize()), nil
}
