package calendar

import (
	"strings"

	"github.com/MikeSquared-Agency/syllabi/internal/extractor"
)

// DefaultColorID is used for any event type outside the color table.
const DefaultColorID = "1"

var colorIDs = map[extractor.EventType]string{
	extractor.EventHomework: "2",  // sage
	extractor.EventQuiz:     "6",  // tangerine
	extractor.EventExam:     "11", // tomato
	extractor.EventProject:  "3",  // grape
}

// ReminderMinutes are the popup reminders attached to every entry.
var ReminderMinutes = []int{30, 1440}

// ColorID returns the calendar color for an event type.
func ColorID(t extractor.EventType) string {
	if id, ok := colorIDs[t]; ok {
		return id
	}
	return DefaultColorID
}

// Map converts an event into an all-day calendar entry on its due date.
// Time of day and StartDate are dropped: entries are all-day by policy.
func Map(ev extractor.Event) Entry {
	desc := ev.ClassName + " - " + string(ev.EventType)
	if ev.Description != "" {
		desc += "\n\n" + ev.Description
	}

	day := datePart(ev.DueDate)

	overrides := make([]Reminder, len(ReminderMinutes))
	for i, m := range ReminderMinutes {
		overrides[i] = Reminder{Method: "popup", Minutes: m}
	}

	return Entry{
		Summary:     ev.Title,
		Description: desc,
		Start:       EventDate{Date: day},
		End:         EventDate{Date: day},
		ColorID:     ColorID(ev.EventType),
		Reminders: Reminders{
			UseDefault: false,
			Overrides:  overrides,
		},
	}
}

// MapAll maps events in order.
func MapAll(events []extractor.Event) []Entry {
	entries := make([]Entry, len(events))
	for i, ev := range events {
		entries[i] = Map(ev)
	}
	return entries
}

func datePart(iso string) string {
	if i := strings.IndexByte(iso, 'T'); i >= 0 {
		return iso[:i]
	}
	return iso
}
