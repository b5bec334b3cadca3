package hermes

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSyncSignalWireFormat(t *testing.T) {
	signal := SyncSignal{
		SessionID:     "b7c1",
		Total:         3,
		Created:       1,
		FailedIndex:   1,
		FailedSummary: "Quiz 1",
		Message:       "Rate Limit Exceeded",
		Timestamp:     time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(signal)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"session_id", "total", "created", "failed_index", "failed_summary", "message", "timestamp"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected field %q in %s", key, data)
		}
	}
}

func TestSyncSignalOmitsEmptyFailure(t *testing.T) {
	data, _ := json.Marshal(SyncSignal{SessionID: "x", Total: 1, Created: 1, FailedIndex: -1})

	var fields map[string]any
	json.Unmarshal(data, &fields)
	if _, ok := fields["failed_summary"]; ok {
		t.Error("expected failed_summary omitted on success")
	}
	if fields["failed_index"].(float64) != -1 {
		t.Errorf("expected failed_index -1, got %v", fields["failed_index"])
	}
}

func TestSubjects(t *testing.T) {
	subjects := map[string]string{
		"parsed":    SubjectEventsParsed,
		"revised":   SubjectEventsRevised,
		"completed": SubjectSyncCompleted,
		"failed":    SubjectSyncFailed,
	}
	for name, s := range subjects {
		if !strings.HasPrefix(s, "syllabi.") {
			t.Errorf("%s subject %q must live under syllabi.", name, s)
		}
	}
}
