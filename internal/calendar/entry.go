package calendar

// Entry is the provider-facing shape of one event, as posted to the
// Calendar v3 events.insert endpoint.
type Entry struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       EventDate `json:"start"`
	End         EventDate `json:"end"`
	ColorID     string    `json:"colorId"`
	Reminders   Reminders `json:"reminders"`
}

// EventDate carries an all-day date (YYYY-MM-DD).
type EventDate struct {
	Date string `json:"date"`
}

type Reminders struct {
	UseDefault bool       `json:"useDefault"`
	Overrides  []Reminder `json:"overrides"`
}

type Reminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}
