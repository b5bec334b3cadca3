package extractor

import "time"

// EventType is the category of a syllabus obligation.
type EventType string

const (
	EventHomework EventType = "homework"
	EventQuiz     EventType = "quiz"
	EventExam     EventType = "exam"
	EventProject  EventType = "project"

	// FallbackEventType replaces any category the model invents.
	FallbackEventType = EventHomework

	// UnknownClass is used when the syllabus never names the course.
	UnknownClass = "Unknown Class"
)

// EventTypes lists the accepted categories in prompt order.
var EventTypes = []EventType{EventHomework, EventQuiz, EventExam, EventProject}

// Valid reports whether t is one of the four known categories.
func (t EventType) Valid() bool {
	switch t {
	case EventHomework, EventQuiz, EventExam, EventProject:
		return true
	}
	return false
}

// Date layouts of the canonical Event form.
const (
	LocalLayout = "2006-01-02T15:04:05"
	ZonedLayout = "2006-01-02T15:04:05Z07:00"
)

// Event is one validated syllabus obligation. Dates are ISO-8601 strings in
// LocalLayout, or ZonedLayout when the model supplied an offset.
type Event struct {
	EventType   EventType `json:"eventType"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	StartDate   string    `json:"startDate"`
	ClassName   string    `json:"className"`
}

// Due parses DueDate. Validated events always parse.
func (e Event) Due() (time.Time, error) {
	return parseCanonical(e.DueDate)
}

// Start parses StartDate. Validated events always parse.
func (e Event) Start() (time.Time, error) {
	return parseCanonical(e.StartDate)
}

func parseCanonical(s string) (time.Time, error) {
	if t, err := time.Parse(ZonedLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(LocalLayout, s)
}

// RawEvent is one untrusted record from the completion service.
type RawEvent map[string]any
