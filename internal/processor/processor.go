package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
	"github.com/MikeSquared-Agency/syllabi/internal/calendar"
	"github.com/MikeSquared-Agency/syllabi/internal/drafts"
	"github.com/MikeSquared-Agency/syllabi/internal/extractor"
	"github.com/MikeSquared-Agency/syllabi/internal/hermes"
)

// Extractor produces event lists from syllabus text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]extractor.Event, error)
	Revise(ctx context.Context, originalText string, current []extractor.Event, correction string) ([]extractor.Event, error)
}

// Calendar commits mapped entries to the user's calendar.
type Calendar interface {
	SyncAll(ctx context.Context, token string, entries []calendar.Entry) (calendar.SyncReport, error)
}

// Publisher announces session changes. *hermes.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// SyncRecorder keeps an audit trail of sync batches. *store.Store satisfies it.
type SyncRecorder interface {
	RecordSync(ctx context.Context, sessionID uuid.UUID, report calendar.SyncReport) (uuid.UUID, error)
}

// Session is one syllabus being reviewed before it is committed to a calendar.
type Session struct {
	ID        uuid.UUID         `json:"id"`
	Text      string            `json:"text"`
	DraftKey  string            `json:"draftKey,omitempty"`
	Events    []extractor.Event `json:"events"`
	Revision  int               `json:"revision"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (s *Session) snapshot() Session {
	out := *s
	out.Events = append([]extractor.Event(nil), s.Events...)
	return out
}

// Processor owns the in-memory sessions and runs the parse, revise and sync
// steps against them. At most one revise or sync runs per session at a time.
type Processor struct {
	extractor Extractor
	calendar  Calendar
	publisher Publisher
	recorder  SyncRecorder
	drafts    drafts.Store
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	inflight map[uuid.UUID]string
}

type Option func(*Processor)

func WithPublisher(pub Publisher) Option { return func(p *Processor) { p.publisher = pub } }

func WithRecorder(rec SyncRecorder) Option { return func(p *Processor) { p.recorder = rec } }

// WithDrafts lets a successful sync clear the session's saved draft.
func WithDrafts(d drafts.Store) Option { return func(p *Processor) { p.drafts = d } }

func WithClock(now func() time.Time) Option { return func(p *Processor) { p.now = now } }

func New(ext Extractor, cal Calendar, logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		extractor: ext,
		calendar:  cal,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*Session),
		inflight:  make(map[uuid.UUID]string),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse extracts events from text and opens a new session for them.
func (p *Processor) Parse(ctx context.Context, text, draftKey string) (Session, error) {
	events, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return Session{}, err
	}

	now := p.now()
	s := &Session{
		ID:        uuid.New(),
		Text:      text,
		DraftKey:  draftKey,
		Events:    events,
		CreatedAt: now,
		UpdatedAt: now,
	}

	p.mu.Lock()
	p.sessions[s.ID] = s
	out := s.snapshot()
	p.mu.Unlock()

	p.logger.Info("session opened", "session_id", s.ID, "events", len(events))
	p.publish(hermes.SubjectEventsParsed, hermes.EventsSignal{
		SessionID: s.ID.String(),
		Events:    len(events),
		Timestamp: now,
	})
	return out, nil
}

// Revise replaces the session's events with the model's answer to a
// correction. On failure the previous events are left untouched.
func (p *Processor) Revise(ctx context.Context, id uuid.UUID, correction string) (Session, error) {
	s, err := p.acquire(id, "revision")
	if err != nil {
		return Session{}, err
	}
	defer p.release(id)

	events, err := p.extractor.Revise(ctx, s.Text, s.Events, correction)
	if err != nil {
		p.logger.Warn("revision failed, keeping previous events", "session_id", id, "error", err)
		return Session{}, err
	}

	p.mu.Lock()
	cur, ok := p.sessions[id]
	if !ok {
		p.mu.Unlock()
		return Session{}, apperr.NotFound("session %s was discarded during revision", id)
	}
	cur.Events = events
	cur.Revision++
	cur.UpdatedAt = p.now()
	out := cur.snapshot()
	p.mu.Unlock()

	p.logger.Info("session revised",
		"session_id", id,
		"revision", out.Revision,
		"before", len(s.Events),
		"after", len(events),
	)
	p.publish(hermes.SubjectEventsRevised, hermes.EventsSignal{
		SessionID: id.String(),
		Events:    len(events),
		Revision:  out.Revision,
		Timestamp: out.UpdatedAt,
	})
	return out, nil
}

// Sync maps the session's events and submits them in order, stopping at the
// first failure. A fully successful sync closes the session and clears its
// draft; a partial one leaves the session open.
func (p *Processor) Sync(ctx context.Context, id uuid.UUID, tokens calendar.TokenSource) (calendar.SyncReport, error) {
	s, err := p.acquire(id, "sync")
	if err != nil {
		return calendar.SyncReport{}, err
	}
	defer p.release(id)

	if len(s.Events) == 0 {
		return calendar.SyncReport{}, apperr.Input("No events to add")
	}

	token, err := calendar.AcquireToken(ctx, tokens)
	if err != nil {
		return calendar.SyncReport{}, err
	}

	// A started batch runs to completion or to its first failure; the caller
	// going away does not abort it.
	ctx = context.WithoutCancel(ctx)
	report, syncErr := p.calendar.SyncAll(ctx, token, calendar.MapAll(s.Events))

	if p.recorder != nil {
		if runID, err := p.recorder.RecordSync(ctx, id, report); err != nil {
			p.logger.Error("failed to record sync run", "session_id", id, "error", err)
		} else {
			p.logger.Debug("sync run recorded", "session_id", id, "run_id", runID)
		}
	}

	subject := hermes.SubjectSyncCompleted
	if syncErr != nil {
		subject = hermes.SubjectSyncFailed
	}
	p.publish(subject, hermes.SyncSignal{
		SessionID:     id.String(),
		Total:         report.Total,
		Created:       report.Created,
		FailedIndex:   report.FailedIndex,
		FailedSummary: report.FailedSummary,
		Message:       report.Message,
		Timestamp:     p.now(),
	})

	if syncErr != nil {
		return report, syncErr
	}

	p.mu.Lock()
	delete(p.sessions, id)
	p.mu.Unlock()

	if p.drafts != nil && s.DraftKey != "" {
		if err := p.drafts.Remove(ctx, s.DraftKey); err != nil {
			p.logger.Warn("failed to clear draft", "draft_key", s.DraftKey, "error", err)
		}
	}

	p.logger.Info("session synced and closed", "session_id", id, "created", report.Created)
	return report, nil
}

// Get returns a copy of the session.
func (p *Processor) Get(id uuid.UUID) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[id]
	if !ok {
		return Session{}, apperr.NotFound("session %s not found", id)
	}
	return s.snapshot(), nil
}

// Discard drops a session. Work already in flight for it finishes but its
// result is not stored.
func (p *Processor) Discard(id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[id]; !ok {
		return apperr.NotFound("session %s not found", id)
	}
	delete(p.sessions, id)
	p.logger.Info("session discarded", "session_id", id)
	return nil
}

// Len is the number of open sessions.
func (p *Processor) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Sweep discards sessions untouched for longer than ttl. Busy sessions are
// skipped.
func (p *Processor) Sweep(ttl time.Duration) int {
	cutoff := p.now().Add(-ttl)

	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for id, s := range p.sessions {
		if _, busy := p.inflight[id]; busy {
			continue
		}
		if s.UpdatedAt.Before(cutoff) {
			delete(p.sessions, id)
			n++
		}
	}
	return n
}

func (p *Processor) acquire(id uuid.UUID, op string) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[id]
	if !ok {
		return Session{}, apperr.NotFound("session %s not found", id)
	}
	if running, busy := p.inflight[id]; busy {
		return Session{}, apperr.Conflict("a %s is already in progress for this session", running)
	}
	p.inflight[id] = op
	return s.snapshot(), nil
}

func (p *Processor) release(id uuid.UUID) {
	p.mu.Lock()
	delete(p.inflight, id)
	p.mu.Unlock()
}

func (p *Processor) publish(subject string, data any) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish", "subject", subject, "error", err)
	}
}

// Preview renders one line per event, numbered from 1, e.g.
// "1. Homework 1 — CS 101 • homework • Sep 15, 2024".
func Preview(events []extractor.Event) []string {
	lines := make([]string, 0, len(events))
	for i, ev := range events {
		date := ev.DueDate
		if due, err := ev.Due(); err == nil {
			date = due.Format("Jan 2, 2006")
		}
		lines = append(lines, fmt.Sprintf("%d. %s — %s • %s • %s", i+1, ev.Title, ev.ClassName, ev.EventType, date))
	}
	return lines
}
