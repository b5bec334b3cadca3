package extractor

import (
	"bytes"
	"encoding/json"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseResponse pulls the event records out of a raw chat-completion body.
// A missing "events" field, including content that is not an object, yields
// an empty slice; content that is not JSON at all is a parse error. Record contents are left to the Validator.
func ParseResponse(body []byte) ([]RawEvent, error) {
	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindParse, err, "completion response is not valid JSON")
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.Parse("completion response has no choices")
	}
	return ParseContent(resp.Choices[0].Message.Content)
}

// ParseContent parses the model's message content.
func ParseContent(content string) ([]RawEvent, error) {
	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindParse, err, "completion content is not valid JSON")
	}

	// Only an object can carry "events"; a bare array or scalar has none.
	obj, ok := doc.(map[string]any)
	if !ok {
		return []RawEvent{}, nil
	}

	events := obj["events"]
	if events == nil {
		return []RawEvent{}, nil
	}
	list, ok := events.([]any)
	if !ok {
		return nil, apperr.Parse(`"events" is not an array`)
	}

	out := make([]RawEvent, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, apperr.Parse("event %d is not an object", i)
		}
		out = append(out, RawEvent(rec))
	}
	return out, nil
}

// compactJSON is used to log raw model output on a single line.
func compactJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(body)
	}
	return buf.String()
}
