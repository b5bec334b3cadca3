package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published by the syllabus service.
const (
	SubjectEventsParsed  = "syllabi.events.parsed"
	SubjectEventsRevised = "syllabi.events.revised"
	SubjectSyncCompleted = "syllabi.sync.completed"
	SubjectSyncFailed    = "syllabi.sync.failed"
	SubjectRegistered    = "syllabi.service.registered"
	SubjectParseFailed   = "syllabi.parse.failed"

	// SubjectSyllabusSubmitted is consumed: other services hand over
	// syllabus text for parsing.
	SubjectSyllabusSubmitted = "syllabi.syllabus.submitted"
)

// EventsSignal announces a new event list for a session.
type EventsSignal struct {
	SessionID string    `json:"session_id"`
	Events    int       `json:"events"`
	Revision  int       `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncSignal announces the outcome of a calendar batch.
type SyncSignal struct {
	SessionID     string    `json:"session_id"`
	Total         int       `json:"total"`
	Created       int       `json:"created"`
	FailedIndex   int       `json:"failed_index"`
	FailedSummary string    `json:"failed_summary,omitempty"`
	Message       string    `json:"message,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("syllabi"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
