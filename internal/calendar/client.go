package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

const (
	DefaultBaseURL    = "https://www.googleapis.com/calendar/v3"
	DefaultCalendarID = "primary"
)

// Client creates events on a Google Calendar.
type Client struct {
	baseURL    string
	calendarID string
	timeout    time.Duration
	logger     *slog.Logger
}

func NewClient(calendarID string, logger *slog.Logger) *Client {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &Client{
		baseURL:    DefaultBaseURL,
		calendarID: calendarID,
		timeout:    30 * time.Second,
		logger:     logger,
	}
}

func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// SetTestTransport points the client at an httptest server.
func (c *Client) SetTestTransport(u string) {
	c.SetBaseURL(u)
}

// CreatedEvent is the provider's acknowledgement of one entry.
type CreatedEvent struct {
	Index    int    `json:"index"`
	Summary  string `json:"summary"`
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

// service builds an events service that authenticates every request with
// the caller's access token.
func (c *Client) service(ctx context.Context, token string) (*gcal.Service, error) {
	httpClient := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   http.DefaultTransport,
		},
	}
	// The generated client resolves method paths relative to the endpoint,
	// which therefore needs its trailing slash.
	svc, err := gcal.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(c.baseURL+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}

// Create submits a single entry.
func (c *Client) Create(ctx context.Context, token string, entry Entry) (CreatedEvent, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return CreatedEvent{}, err
	}
	return c.insert(ctx, svc, entry)
}

func (c *Client) insert(ctx context.Context, svc *gcal.Service, entry Entry) (CreatedEvent, error) {
	ev, err := svc.Events.Insert(c.calendarID, toEvent(entry)).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return CreatedEvent{}, apperr.Service("%s", providerMessage(apiErr))
		}
		return CreatedEvent{}, apperr.Wrap(apperr.KindService, err, "calendar request failed")
	}
	return CreatedEvent{Summary: entry.Summary, ID: ev.Id, HTMLLink: ev.HtmlLink}, nil
}

// toEvent converts an entry into the API's event resource. UseDefault is
// forced onto the wire so the calendar's own default reminders stay off.
func toEvent(entry Entry) *gcal.Event {
	overrides := make([]*gcal.EventReminder, len(entry.Reminders.Overrides))
	for i, r := range entry.Reminders.Overrides {
		overrides[i] = &gcal.EventReminder{Method: r.Method, Minutes: int64(r.Minutes)}
	}
	return &gcal.Event{
		Summary:     entry.Summary,
		Description: entry.Description,
		Start:       &gcal.EventDateTime{Date: entry.Start.Date},
		End:         &gcal.EventDateTime{Date: entry.End.Date},
		ColorId:     entry.ColorID,
		Reminders: &gcal.EventReminders{
			UseDefault:      entry.Reminders.UseDefault,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

func providerMessage(apiErr *googleapi.Error) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if text := http.StatusText(apiErr.Code); text != "" {
		return "Failed to add event to calendar: " + text
	}
	return fmt.Sprintf("Failed to add event to calendar: status %d", apiErr.Code)
}
