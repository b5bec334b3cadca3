package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
	"github.com/MikeSquared-Agency/syllabi/internal/groq"
)

// Completer is the completion-service call the extractor depends on.
type Completer interface {
	Complete(ctx context.Context, messages []groq.Message) ([]byte, error)
}

type Extractor struct {
	llm       Completer
	validator *Validator
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Extractor)

// WithClock overrides the clock used for the current-year default.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func New(llm Completer, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{llm: llm, logger: logger, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	e.validator = NewValidator(logger, e.now)
	return e
}

// Extract turns syllabus text into validated events.
func (e *Extractor) Extract(ctx context.Context, text string) ([]Event, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Input("Please paste syllabus text first")
	}

	e.logger.Info("extracting events from syllabus", "text_len", len(text))

	events, err := e.run(ctx, BuildExtractionMessages(text, e.now()))
	if err != nil {
		return nil, fmt.Errorf("extract events: %w", err)
	}

	e.logger.Info("extraction complete", "events", len(events))
	return events, nil
}

// Revise re-derives the full event list from the original text, the current
// list and a free-text correction. The result replaces current entirely;
// nothing is merged client-side.
func (e *Extractor) Revise(ctx context.Context, originalText string, current []Event, correction string) ([]Event, error) {
	if strings.TrimSpace(correction) == "" {
		return nil, apperr.Input("Please enter corrections or clarifications")
	}
	if strings.TrimSpace(originalText) == "" {
		return nil, apperr.Input("Please paste syllabus text first")
	}

	messages, err := BuildCorrectionMessages(originalText, current, correction)
	if err != nil {
		return nil, err
	}

	e.logger.Info("revising events",
		"current_events", len(current),
		"correction_len", len(correction),
	)

	events, err := e.run(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("revise events: %w", err)
	}

	e.logger.Info("revision complete",
		"before", len(current),
		"after", len(events),
	)
	return events, nil
}

func (e *Extractor) run(ctx context.Context, messages []groq.Message) ([]Event, error) {
	body, err := e.llm.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	raw, err := ParseResponse(body)
	if err != nil {
		e.logger.Error("failed to parse completion response",
			"error", err,
			"raw", compactJSON(body),
		)
		return nil, err
	}

	return e.validator.Validate(raw)
}
