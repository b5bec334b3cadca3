package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/syllabi/internal/groq"
)

const extractionSystemPrompt = `You are a syllabus parser. Extract calendar events from syllabi and return them as JSON.

Each event should have:
- eventType: one of %s
- title: brief name of the assignment/event
- description: additional details if available (optional, can be empty string)
- dueDate: ISO 8601 format (YYYY-MM-DDTHH:MM:SS), use 23:59:59 as the end time for assignments without specific times. If no year is specified, assume the current year %d.
- startDate: ISO 8601 format (YYYY-MM-DDTHH:MM:SS), use 30 minutes before dueDate as a default
- className: the course name/code from the syllabus

If there is no className, use a default of "%s". If there is not a specific eventType keyword, use your best judgment to categorize the event into one of the categories.
Return ONLY valid JSON with an "events" array, no markdown formatting or explanation.`

const extractionUserPrompt = "Parse this syllabus:\n\n%s"

const correctionSystemPrompt = `You are a syllabus parser. Update the event list based on user corrections.

Every event keeps the same fields: eventType (one of %s), title, description, dueDate and startDate (ISO 8601, YYYY-MM-DDTHH:MM:SS) and className.
Return the COMPLETE updated list, not only the changed events.
Return ONLY valid JSON with an "events" array in the same format as before.`

const correctionUserPrompt = `Original syllabus:
%s

Current events:
%s

User corrections:
%s

Please update the events based on these corrections.`

// BuildExtractionMessages returns the system/user pair for a first pass over
// syllabus text. now supplies the year assumed for undated entries.
func BuildExtractionMessages(text string, now time.Time) []groq.Message {
	return []groq.Message{
		{Role: "system", Content: fmt.Sprintf(extractionSystemPrompt, quotedTypes(), now.Year(), UnknownClass)},
		{Role: "user", Content: fmt.Sprintf(extractionUserPrompt, text)},
	}
}

// BuildCorrectionMessages returns the system/user pair that asks the model to
// re-derive the whole event list from the original text, the current list and
// the user's correction.
func BuildCorrectionMessages(text string, current []Event, correction string) ([]groq.Message, error) {
	if current == nil {
		current = []Event{}
	}
	encoded, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal current events: %w", err)
	}
	return []groq.Message{
		{Role: "system", Content: fmt.Sprintf(correctionSystemPrompt, quotedTypes())},
		{Role: "user", Content: fmt.Sprintf(correctionUserPrompt, text, encoded, correction)},
	}, nil
}

func quotedTypes() string {
	parts := make([]string, len(EventTypes))
	for i, t := range EventTypes {
		parts[i] = `"` + string(t) + `"`
	}
	return strings.Join(parts, ", ")
}
