package calendar

import (
	"context"
	"strings"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

// TokenSource produces a bearer token for the calendar service. It is called
// once per sync batch.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", apperr.Auth("calendar access token is not configured")
	}
	return string(t), nil
}

// AcquireToken fetches one token from src. Provider errors are passed through
// verbatim as auth errors; nothing is retried.
func AcquireToken(ctx context.Context, src TokenSource) (string, error) {
	if src == nil {
		return "", apperr.Auth("no calendar token provider configured")
	}
	token, err := src.Token(ctx)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			return "", err
		}
		return "", apperr.Classify(apperr.KindAuth, err)
	}
	if strings.TrimSpace(token) == "" {
		return "", apperr.Auth("calendar token provider returned an empty token")
	}
	return token, nil
}
