package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_Wrapped(t *testing.T) {
	base := Parse("completion content is not JSON")
	wrapped := fmt.Errorf("extract: %w", base)

	if got := KindOf(wrapped); got != KindParse {
		t.Errorf("KindOf = %q, want %q", got, KindParse)
	}
	if !Is(wrapped, KindParse) {
		t.Error("expected Is(wrapped, KindParse)")
	}
	if Is(wrapped, KindService) {
		t.Error("did not expect Is(wrapped, KindService)")
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf = %q, want unknown", got)
	}
	if Is(nil, KindUnknown) {
		t.Error("nil error must not match any kind")
	}
}

func TestWrap_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindService, cause, "completion request")

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable")
	}
	if err.Error() != "completion request: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClassify_KeepsMessage(t *testing.T) {
	err := Classify(KindAuth, errors.New("The user did not approve access."))
	if err.Error() != "The user did not approve access." {
		t.Errorf("expected verbatim message, got %q", err.Error())
	}
	if KindOf(err) != KindAuth {
		t.Errorf("expected auth kind, got %q", KindOf(err))
	}
}
