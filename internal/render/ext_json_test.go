package render

import (
	"context"
	"testing"
)

func TestJSONExtensionGetPath(t *testing.T) {
	ext := JSONExtension{}
	doc := `{"user": {"name": "ada", "age": 36}}`
	out, ok, err := ext.Calculate(context.Background(), map[string]any{"path": "user.name"}, []string{doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || out != "ada" {
		t.Fatalf("got (%q, %v), want (\"ada\", true)", out, ok)
	}
}

func TestJSONExtensionMissingPath(t *testing.T) {
	ext := JSONExtension{}
	doc := `{"user": {"name": "ada"}}`
	_, ok, err := ext.Calculate(context.Background(), map[string]any{"path": "user.missing"}, []string{doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a path that does not exist")
	}
}

func TestJSONExtensionSetThenGet(t *testing.T) {
	ext := JSONExtension{}
	doc := `{"user": {"name": "ada"}}`
	out, ok, err := ext.Calculate(context.Background(), map[string]any{
		"set":  map[string]any{"user.name": "grace"},
		"path": "user.name",
	}, []string{doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || out != "grace" {
		t.Fatalf("got (%q, %v), want (\"grace\", true)", out, ok)
	}
}

func TestJSONExtensionNoArgs(t *testing.T) {
	ext := JSONExtension{}
	_, ok, err := ext.Calculate(context.Background(), map[string]any{"path": "x"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false with no positional args")
	}
}
