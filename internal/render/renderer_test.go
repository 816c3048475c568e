package render

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/expando/internal/match"
)

func TestRenderPlainText(t *testing.T) {
	r := New(NewRegistry(DummyExtension{}))
	m := match.Match{
		Trigger:  ":hello",
		Content:  match.ContentText,
		Template: "Hello, world",
	}
	res := r.Render(context.Background(), m, nil)
	if res.Kind != ResultText || res.Text != "Hello, world" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.CursorRewind != 0 {
		t.Fatalf("expected no rewind, got %d", res.CursorRewind)
	}
}

func TestRenderCursorHint(t *testing.T) {
	r := New(NewRegistry())
	m := match.Match{
		Trigger:  ":tag",
		Content:  match.ContentText,
		Template: "<p>$|$</p>",
	}
	res := r.Render(context.Background(), m, nil)
	if res.Text != "<p></p>" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if res.CursorRewind != 4 {
		t.Fatalf("expected rewind 4, got %d", res.CursorRewind)
	}
}

func TestRenderVariableSubstitution(t *testing.T) {
	r := New(NewRegistry(DummyExtension{}))
	m := match.Match{
		Trigger:  ":sig",
		Content:  match.ContentText,
		Template: "Best, {{ name }}",
		Vars: []match.Variable{
			{Name: "name", Extension: "dummy", Params: map[string]any{"echo": "Ada"}},
		},
	}
	res := r.Render(context.Background(), m, nil)
	if res.Text != "Best, Ada" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestRenderNewlineNormalization(t *testing.T) {
	r := New(NewRegistry())
	m := match.Match{Trigger: ":x", Content: match.ContentText, Template: "a\r\nb\r\nc"}
	res := r.Render(context.Background(), m, nil)
	if res.Text != "a\nb\nc" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	// Idempotency (invariant 3): normalizing twice yields the same result.
	if normalizeNewlines(res.Text) != res.Text {
		t.Fatalf("normalization not idempotent: %q", normalizeNewlines(res.Text))
	}
}

func TestRenderImageMatch(t *testing.T) {
	r := New(NewRegistry())
	m := match.Match{Trigger: ":logo", Content: match.ContentImage, ImagePath: "/tmp/logo.png"}
	res := r.Render(context.Background(), m, nil)
	if res.Kind != ResultImage || res.ImagePath != "/tmp/logo.png" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

type erroringExtension struct{}

func (erroringExtension) Name() string { return "boom" }
func (erroringExtension) Calculate(_ context.Context, _ map[string]any, _ []string) (string, bool, error) {
	return "", false, errors.New("boom")
}

func TestRenderExtensionErrorAbortsExpansion(t *testing.T) {
	r := New(NewRegistry(erroringExtension{}))
	m := match.Match{
		Trigger:  ":x",
		Content:  match.ContentText,
		Template: "{{ v }}",
		Vars:     []match.Variable{{Name: "v", Extension: "boom"}},
	}
	res := r.Render(context.Background(), m, nil)
	if res.Kind != ResultError || res.Err == nil {
		t.Fatalf("expected ResultError, got %+v", res)
	}
}

func TestRenderUnknownExtensionIsError(t *testing.T) {
	r := New(NewRegistry())
	m := match.Match{
		Trigger:  ":x",
		Content:  match.ContentText,
		Template: "{{ v }}",
		Vars:     []match.Variable{{Name: "v", Extension: "nope"}},
	}
	res := r.Render(context.Background(), m, nil)
	if res.Kind != ResultError {
		t.Fatalf("expected ResultError, got %+v", res)
	}
}
