package drafts

import (
	"context"
	"testing"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, _ := m.Get(ctx, "popup"); ok {
		t.Fatal("expected no draft initially")
	}

	if err := m.Set(ctx, "popup", "CS 101 syllabus"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	text, ok, err := m.Get(ctx, "popup")
	if err != nil || !ok || text != "CS 101 syllabus" {
		t.Fatalf("Get = %q, %v, %v", text, ok, err)
	}

	if err := m.Remove(ctx, "popup"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "popup"); ok {
		t.Error("expected draft removed")
	}
	if err := m.Remove(ctx, "popup"); err != nil {
		t.Errorf("removing a missing draft should be a no-op, got %v", err)
	}
}
