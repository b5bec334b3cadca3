package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	// Temperature is fixed low so repeated runs over the same syllabus
	// produce near-identical event lists.
	Temperature = 0.1
)

// KeySource yields the completion API key. It is consulted once per call.
type KeySource interface {
	Get(ctx context.Context) (string, error)
}

type Client struct {
	keys    KeySource
	model   string
	baseURL string
	client  *http.Client
}

func NewClient(keys KeySource, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		keys:    keys,
		model:   model,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// SetBaseURL points the client at a different OpenAI-compatible endpoint.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetTestTransport points the client at an httptest server.
func (c *Client) SetTestTransport(url string) {
	c.SetBaseURL(url)
}

func (c *Client) Model() string { return c.model }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type request struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat-completion request in JSON-object mode and returns
// the raw response body. It never retries.
func (c *Client) Complete(ctx context.Context, messages []Message) ([]byte, error) {
	apiKey, err := c.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(request{
		Model:          c.model,
		Messages:       messages,
		Temperature:    Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindService, err, "Groq API call failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindService, err, "read Groq response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) apiKey(ctx context.Context) (string, error) {
	if c.keys == nil {
		return "", apperr.Auth("Groq API key not set. Please add it in settings.")
	}
	key, err := c.keys.Get(ctx)
	if err != nil {
		// A store outage is not the user's key being wrong; leave it
		// unclassified unless the store already said what it is.
		if apperr.KindOf(err) != apperr.KindUnknown {
			return "", err
		}
		return "", fmt.Errorf("read Groq API key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", apperr.Auth("Groq API key not set. Please add it in settings.")
	}
	return key, nil
}

func statusError(code int, body []byte) error {
	statusText := http.StatusText(code)
	if statusText == "" {
		statusText = fmt.Sprintf("status %d", code)
	}
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return apperr.Service("Groq API error: %s (%d): %s", statusText, code, errResp.Error.Message)
	}
	return apperr.Service("Groq API error: %s (%d)", statusText, code)
}
