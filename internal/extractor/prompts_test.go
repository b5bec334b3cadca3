package extractor

import (
	"strings"
	"testing"
	"time"
)

func TestBuildExtractionMessages(t *testing.T) {
	now := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	msgs := BuildExtractionMessages("CS 101\nQuiz 1 - Sept 22", now)

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("unexpected roles %q/%q", msgs[0].Role, msgs[1].Role)
	}

	system := msgs[0].Content
	for _, want := range []string{
		`"homework", "quiz", "exam", "project"`,
		"23:59:59",
		"current year 2026",
		"30 minutes before dueDate",
		`"Unknown Class"`,
		`"events" array`,
	} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if msgs[1].Content != "Parse this syllabus:\n\nCS 101\nQuiz 1 - Sept 22" {
		t.Errorf("unexpected user message %q", msgs[1].Content)
	}
}

func TestBuildExtractionMessages_Pure(t *testing.T) {
	now := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	a := BuildExtractionMessages("same", now)
	b := BuildExtractionMessages("same", now)
	if a[0] != b[0] || a[1] != b[1] {
		t.Error("expected identical messages for identical inputs")
	}
}

func TestBuildCorrectionMessages_NilEvents(t *testing.T) {
	msgs, err := BuildCorrectionMessages("syllabus", nil, "add the final")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msgs[1].Content, "Current events:\n[]") {
		t.Errorf("expected empty list to serialise as [], got %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[0].Content, `"events" array`) {
		t.Error("expected correction system prompt to restate the output contract")
	}
}
