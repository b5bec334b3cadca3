package processor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/syllabi/internal/hermes"
)

// inboundTimeout bounds a parse started from a bus message, which has no
// caller context of its own.
const inboundTimeout = 2 * time.Minute

// SubmissionEvent is a syllabus handed over on the message bus.
type SubmissionEvent struct {
	Text     string `json:"text"`
	DraftKey string `json:"draft_key,omitempty"`
	Source   string `json:"source,omitempty"`
}

// HandleSubmission is the NATS handler for hermes.SubjectSyllabusSubmitted.
// The resulting session is announced on hermes.SubjectEventsParsed like any
// other parse.
func (p *Processor) HandleSubmission(subject string, data []byte) {
	var evt SubmissionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Warn("failed to parse submission event", "subject", subject, "error", err)
		return
	}
	if strings.TrimSpace(evt.Text) == "" {
		p.logger.Warn("ignoring empty submission", "source", evt.Source)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
	defer cancel()

	s, err := p.Parse(ctx, evt.Text, evt.DraftKey)
	if err != nil {
		p.logger.Error("submission parse failed",
			"source", evt.Source,
			"draft_key", evt.DraftKey,
			"error", err,
		)
		p.publish(hermes.SubjectParseFailed, map[string]any{
			"source":    evt.Source,
			"draft_key": evt.DraftKey,
			"error":     err.Error(),
		})
		return
	}

	p.logger.Info("submission parsed",
		"session_id", s.ID,
		"source", evt.Source,
		"events", len(s.Events),
	)
}
