package extractor

import (
	"testing"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

func body(content string) []byte {
	// content is embedded as a JSON string literal.
	return []byte(`{"choices":[{"message":{"content":` + content + `}}]}`)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		wantLen  int
		wantKind apperr.Kind
	}{
		{name: "events array", body: body(`"{\"events\":[{\"title\":\"a\"},{\"title\":\"b\"}]}"`), wantLen: 2},
		{name: "missing events", body: body(`"{\"other\":1}"`), wantLen: 0},
		{name: "null events", body: body(`"{\"events\":null}"`), wantLen: 0},
		{name: "bare array has no events field", body: body(`"[{\"title\":\"HW\",\"dueDate\":\"2024-09-15\"}]"`), wantLen: 0},
		{name: "scalar document", body: body(`"42"`), wantLen: 0},
		{name: "content not json", body: body(`"sure! here are your events"`), wantKind: apperr.KindParse},
		{name: "events not array", body: body(`"{\"events\":{\"title\":\"a\"}}"`), wantKind: apperr.KindParse},
		{name: "element not object", body: body(`"{\"events\":[\"a\"]}"`), wantKind: apperr.KindParse},
		{name: "no choices", body: []byte(`{"choices":[]}`), wantKind: apperr.KindParse},
		{name: "body not json", body: []byte(`<html>`), wantKind: apperr.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.body)
			if tt.wantKind != apperr.KindUnknown {
				if apperr.KindOf(err) != tt.wantKind {
					t.Fatalf("expected %q error, got %v", tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != tt.wantLen {
				t.Errorf("expected %d events, got %d", tt.wantLen, len(got))
			}
		})
	}
}

func TestParseResponse_KeepsRecordsUnvalidated(t *testing.T) {
	got, err := ParseResponse(body(`"{\"events\":[{\"eventType\":\"party\",\"dueDate\":\"whenever\"}]}"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0]["eventType"] != "party" || got[0]["dueDate"] != "whenever" {
		t.Errorf("expected raw fields untouched, got %v", got[0])
	}
}
