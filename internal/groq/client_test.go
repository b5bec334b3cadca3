package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

type staticKey string

func (k staticKey) Get(context.Context) (string, error) { return string(k), nil }

type failingKey struct{ err error }

func (k failingKey) Get(context.Context) (string, error) { return "", k.err }

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer gsk_test" {
			t.Errorf("expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", r.Header.Get("Content-Type"))
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %q", req.Model)
		}
		if req.Temperature != 0.1 {
			t.Errorf("expected temperature 0.1, got %v", req.Temperature)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %q", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hello" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"events\":[]}"}}]}`))
	}))
	defer server.Close()

	c := NewClient(staticKey("gsk_test"), "test-model")
	c.SetTestTransport(server.URL)

	body, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "you are a test"},
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(body), `"choices"`) {
		t.Errorf("expected raw body to be returned, got %q", body)
	}
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "rate_limit",
				"message": "slow down",
			},
		})
	}))
	defer server.Close()

	c := NewClient(staticKey("gsk_test"), "test-model")
	c.SetTestTransport(server.URL)

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for API error response")
	}
	if apperr.KindOf(err) != apperr.KindService {
		t.Errorf("expected service error, got %q", apperr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "Too Many Requests") || !strings.Contains(err.Error(), "slow down") {
		t.Errorf("expected status text and provider message, got %q", err.Error())
	}
}

func TestComplete_SingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(staticKey("gsk_test"), "")
	c.SetTestTransport(server.URL)

	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly one request, got %d", calls)
	}
}

func TestComplete_MissingKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without an API key")
	}))
	defer server.Close()

	for name, keys := range map[string]KeySource{
		"nil source": nil,
		"empty key":  staticKey(""),
	} {
		t.Run(name, func(t *testing.T) {
			c := NewClient(keys, "test-model")
			c.SetTestTransport(server.URL)

			_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
			if apperr.KindOf(err) != apperr.KindAuth {
				t.Errorf("expected auth error, got %v", err)
			}
		})
	}
}

func TestNewClient_DefaultModel(t *testing.T) {
	c := NewClient(staticKey("gsk_x"), "")
	if c.Model() != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, c.Model())
	}
}

func TestComplete_KeyStoreFailureIsNotAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when the key cannot be read")
	}))
	defer server.Close()

	outage := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	c := NewClient(failingKey{err: outage}, "test-model")
	c.SetTestTransport(server.URL)

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := apperr.KindOf(err); kind == apperr.KindAuth {
		t.Errorf("store outage must not surface as an auth error, got %q", kind)
	}
	if !errors.Is(err, outage) {
		t.Errorf("expected cause preserved, got %v", err)
	}

	c = NewClient(failingKey{err: apperr.Service("settings unavailable")}, "test-model")
	c.SetTestTransport(server.URL)
	if _, err := c.Complete(context.Background(), nil); apperr.KindOf(err) != apperr.KindService {
		t.Errorf("expected classified store error passed through, got %v", err)
	}
}
