package extractor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
	"github.com/MikeSquared-Agency/syllabi/internal/groq"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
}

type staticKey string

func (k staticKey) Get(context.Context) (string, error) { return string(k), nil }

// completionServer answers every chat-completion call with content and
// records the decoded requests.
func completionServer(t *testing.T, content string, seen *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			*seen = append(*seen, req)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func newTestExtractor(url string) *Extractor {
	llm := groq.NewClient(staticKey("gsk_test"), "test-model")
	llm.SetTestTransport(url)
	return New(llm, discardLogger(), WithClock(fixedClock))
}

func TestExtract_EndToEndScenario(t *testing.T) {
	content := `{"events":[{"eventType":"homework","title":"Homework 1: Variables","dueDate":"2024-09-15T23:59:59","startDate":"2024-09-15T23:29:59","className":"Unknown Class"}]}`
	var seen []map[string]any
	server := completionServer(t, content, &seen)
	defer server.Close()

	ext := newTestExtractor(server.URL)
	events, err := ext.Extract(context.Background(), "Homework 1: Variables - Due September 15, 2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Event{
		EventType:   EventHomework,
		Title:       "Homework 1: Variables",
		Description: "",
		DueDate:     "2024-09-15T23:59:59",
		StartDate:   "2024-09-15T23:29:59",
		ClassName:   "Unknown Class",
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0] != want {
		t.Errorf("event mismatch:\n got %+v\nwant %+v", events[0], want)
	}

	if len(seen) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(seen))
	}
	msgs := seen[0]["messages"].([]any)
	user := msgs[1].(map[string]any)["content"].(string)
	if !strings.Contains(user, "Homework 1: Variables - Due September 15, 2024") {
		t.Errorf("expected syllabus text in user message, got %q", user)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	ext := New(nil, discardLogger())

	for _, text := range []string{"", "   \n\t"} {
		_, err := ext.Extract(context.Background(), text)
		if apperr.KindOf(err) != apperr.KindInput {
			t.Errorf("Extract(%q): expected input error, got %v", text, err)
		}
	}
}

func TestExtract_InvalidJSON(t *testing.T) {
	server := completionServer(t, "this is not json", nil)
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), "some syllabus")
	if apperr.KindOf(err) != apperr.KindParse {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestExtract_NoEventsField(t *testing.T) {
	server := completionServer(t, `{"items":[]}`, nil)
	defer server.Close()

	events, err := newTestExtractor(server.URL).Extract(context.Background(), "some syllabus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d", len(events))
	}
}

func TestExtract_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), "some syllabus")
	if apperr.KindOf(err) != apperr.KindService {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestExtract_PropertiesHold(t *testing.T) {
	content := `{"events":[
		{"eventType":"Quiz","title":"Quiz 1","dueDate":"2024-09-22"},
		{"eventType":"lab","title":"Lab 3","dueDate":"10-04","className":"CS 101"},
		{"title":"Final","dueDate":"2024-12-18T14:00:00Z","startDate":"2024-12-18T12:00:00Z"}
	]}`
	server := completionServer(t, content, nil)
	defer server.Close()

	events, err := newTestExtractor(server.URL).Extract(context.Background(), "CS 101 syllabus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, ev := range events {
		if !ev.EventType.Valid() {
			t.Errorf("event %d: invalid type %q", i, ev.EventType)
		}
		if _, err := ev.Due(); err != nil {
			t.Errorf("event %d: dueDate %q does not parse: %v", i, ev.DueDate, err)
		}
		if _, err := ev.Start(); err != nil {
			t.Errorf("event %d: startDate %q does not parse: %v", i, ev.StartDate, err)
		}
	}
	if events[1].DueDate != "2025-10-04T23:59:59" {
		t.Errorf("expected current-year due date, got %q", events[1].DueDate)
	}
}

func TestRevise_FullReplacement(t *testing.T) {
	content := `{"events":[
		{"eventType":"exam","title":"Midterm","dueDate":"2024-10-15T09:00:00","className":"CS 101"},
		{"eventType":"exam","title":"Final","dueDate":"2024-12-18T14:00:00","className":"CS 101"}
	]}`
	var seen []map[string]any
	server := completionServer(t, content, &seen)
	defer server.Close()

	current := make([]Event, 5)
	for i := range current {
		current[i] = Event{EventType: EventHomework, Title: "HW", DueDate: "2024-09-01T23:59:59", StartDate: "2024-09-01T23:29:59", ClassName: "CS 101"}
	}

	events, err := newTestExtractor(server.URL).Revise(context.Background(), "CS 101 syllabus", current, "only keep the exams")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected exactly 2 events after revision, got %d", len(events))
	}

	user := seen[0]["messages"].([]any)[1].(map[string]any)["content"].(string)
	for _, want := range []string{"Original syllabus:\nCS 101 syllabus", "Current events:", `"title": "HW"`, "User corrections:\nonly keep the exams"} {
		if !strings.Contains(user, want) {
			t.Errorf("expected correction prompt to contain %q", want)
		}
	}
}

func TestRevise_EmptyCorrection(t *testing.T) {
	ext := New(nil, discardLogger())
	_, err := ext.Revise(context.Background(), "syllabus", nil, "  ")
	if apperr.KindOf(err) != apperr.KindInput {
		t.Fatalf("expected input error, got %v", err)
	}
}
