package render

import (
	"context"
	"math/rand"
	"testing"
)

func TestRandomExtensionBasic(t *testing.T) {
	ext := RandomExtension{Rand: rand.New(rand.NewSource(1))}
	choices := []any{"first", "second", "third"}
	out, ok, err := ext.Calculate(context.Background(), map[string]any{"choices": choices}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	found := false
	for _, c := range choices {
		if c.(string) == out {
			found = true
		}
	}
	if !found {
		t.Fatalf("output %q not among choices", out)
	}
}

func TestRandomExtensionWithArgs(t *testing.T) {
	ext := RandomExtension{Rand: rand.New(rand.NewSource(1))}
	choices := []any{"first $0", "second $0", "$0 third"}
	out, ok, err := ext.Calculate(context.Background(), map[string]any{"choices": choices}, []string{"test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	rendered := map[string]bool{"first test": true, "second test": true, "test third": true}
	if !rendered[out] {
		t.Fatalf("unexpected rendered output: %q", out)
	}
}

func TestRandomExtensionNoChoices(t *testing.T) {
	ext := RandomExtension{}
	_, ok, err := ext.Calculate(context.Background(), map[string]any{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false with no choices param")
	}
}
