package extractor

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

// DefaultLeadTime is how long before the due date an event starts when the
// model gives no start.
const DefaultLeadTime = 30 * time.Minute

var (
	datedLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		LocalLayout,
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	// Parsed without a year, these come back in year 0.
	yearlessLayouts = []string{
		"01-02T15:04:05",
		"01-02T15:04",
		"--01-02T15:04:05",
		"--01-02T15:04",
	}
	yearlessDateLayouts = []string{"01-02", "--01-02"}
)

// Validator normalises untrusted records into Events.
type Validator struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewValidator(logger *slog.Logger, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{logger: logger, now: now}
}

// Validate fills defaults and checks every record, preserving order. It fails
// only when a record has no usable title or due date.
func (v *Validator) Validate(raw []RawEvent) ([]Event, error) {
	events := make([]Event, 0, len(raw))
	year := v.now().Year()
	for i, rec := range raw {
		ev, err := v.validateOne(i, rec, year)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (v *Validator) validateOne(idx int, rec RawEvent, year int) (Event, error) {
	var ev Event

	title, _ := stringField(rec, "title")
	ev.Title = strings.TrimSpace(title)
	if ev.Title == "" {
		return Event{}, apperr.Validation("event %d: missing title", idx)
	}

	ev.ClassName, _ = stringField(rec, "className")
	ev.ClassName = strings.TrimSpace(ev.ClassName)
	if ev.ClassName == "" {
		ev.ClassName = UnknownClass
	}

	rawType, _ := stringField(rec, "eventType")
	ev.EventType = EventType(strings.ToLower(strings.TrimSpace(rawType)))
	if !ev.EventType.Valid() {
		v.logger.Warn("unknown event type, using fallback",
			"index", idx,
			"title", ev.Title,
			"event_type", rawType,
			"fallback", string(FallbackEventType),
		)
		ev.EventType = FallbackEventType
	}

	dueRaw, ok := stringField(rec, "dueDate")
	if !ok || strings.TrimSpace(dueRaw) == "" {
		return Event{}, apperr.Validation("event %d (%s): missing dueDate", idx, ev.Title)
	}
	due, err := parseDate(dueRaw, year)
	if err != nil {
		return Event{}, apperr.Validation("event %d (%s): unparsable dueDate %q: %v", idx, ev.Title, dueRaw, err)
	}
	ev.DueDate = due.String()

	start := stamp{t: due.t.Add(-DefaultLeadTime), zoned: due.zoned}
	if startRaw, ok := stringField(rec, "startDate"); ok && strings.TrimSpace(startRaw) != "" {
		start, err = parseDate(startRaw, year)
		if err != nil {
			return Event{}, apperr.Validation("event %d (%s): unparsable startDate %q: %v", idx, ev.Title, startRaw, err)
		}
	}
	if start.t.After(due.t) {
		v.logger.Warn("event starts after it is due",
			"index", idx,
			"title", ev.Title,
			"start", start.String(),
			"due", due.String(),
		)
	}
	ev.StartDate = start.String()

	ev.Description, _ = stringField(rec, "description")
	ev.Description = strings.TrimSpace(ev.Description)

	return ev, nil
}

// stringField reads key as a string. Numbers are rendered; anything else
// counts as absent.
func stringField(rec RawEvent, key string) (string, bool) {
	switch val := rec[key].(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}

type stamp struct {
	t     time.Time
	zoned bool
}

func (s stamp) String() string {
	if s.zoned {
		return s.t.Format(ZonedLayout)
	}
	return s.t.Format(LocalLayout)
}

// parseDate accepts the date shapes models commonly emit. Date-only values
// are due at 23:59:59. Values without a year, or with a year-0 placeholder,
// fall in year; a day that does not exist in that year is an error.
func parseDate(raw string, year int) (stamp, error) {
	st, ok := parseStamp(strings.TrimSpace(raw))
	if !ok {
		return stamp{}, fmt.Errorf("unrecognised date %q", raw)
	}
	if st.t.Year() != 0 {
		return st, nil
	}

	t := st.t
	dated := time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	if dated.Month() != t.Month() || dated.Day() != t.Day() {
		return stamp{}, fmt.Errorf("%s %d does not exist in %d", t.Month(), t.Day(), year)
	}
	st.t = dated
	return st, nil
}

func parseStamp(s string) (stamp, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return stamp{t: t.Truncate(time.Second), zoned: true}, true
	}
	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return stamp{t: t.Truncate(time.Second)}, true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return stamp{t: t}, true
		}
	}
	for _, layout := range append([]string{"2006-01-02"}, yearlessDateLayouts...) {
		if t, err := time.Parse(layout, s); err == nil {
			return stamp{t: endOfDay(t.Year(), t.Month(), t.Day())}, true
		}
	}
	return stamp{}, false
}

func endOfDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 23, 59, 59, 0, time.UTC)
}
