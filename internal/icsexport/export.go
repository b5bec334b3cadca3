// Package icsexport renders a session's events as an iCalendar file using the
// same all-day mapping the calendar sync uses. It lets a user preview or
// import the list without writing to their calendar.
package icsexport

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/syllabi/internal/calendar"
	"github.com/MikeSquared-Agency/syllabi/internal/extractor"
)

const productID = "-//MikeSquared-Agency//syllabi//EN"

// propColorID carries the calendar color so re-imports keep it.
const propColorID = ics.ComponentProperty("X-SYLLABI-COLOR-ID")

// Render returns an iCalendar document with one all-day VEVENT per event.
// UIDs are derived from sessionID and position, so re-rendering the same
// session yields the same UIDs.
func Render(sessionID uuid.UUID, events []extractor.Event, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for i, ev := range events {
		entry := calendar.Map(ev)

		day, err := time.Parse("2006-01-02", entry.Start.Date)
		if err != nil {
			return "", fmt.Errorf("event %d: bad date %q: %w", i, entry.Start.Date, err)
		}

		uid := uuid.NewSHA1(sessionID, []byte(fmt.Sprintf("%d/%s", i, ev.Title)))
		vevent := cal.AddEvent(uid.String() + "@syllabi")
		vevent.SetDtStampTime(now.UTC())
		vevent.SetSummary(entry.Summary)
		vevent.SetDescription(entry.Description)
		vevent.SetAllDayStartAt(day)
		// DTEND is exclusive for all-day events.
		vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
		vevent.SetProperty(ics.ComponentPropertyCategories, string(ev.EventType))
		vevent.SetProperty(propColorID, entry.ColorID)

		for _, r := range entry.Reminders.Overrides {
			alarm := vevent.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-PT%dM", r.Minutes))
			alarm.SetProperty(ics.ComponentPropertyDescription, entry.Summary)
		}
	}

	return cal.Serialize(), nil
}
