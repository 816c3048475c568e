package render

import (
	"context"
	"testing"
)

func TestDummyExtensionEcho(t *testing.T) {
	ext := DummyExtension{}
	out, ok, err := ext.Calculate(context.Background(), map[string]any{"echo": "hi there"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || out != "hi there" {
		t.Fatalf("got (%q, %v), want (\"hi there\", true)", out, ok)
	}
}

func TestDummyExtensionNoParam(t *testing.T) {
	ext := DummyExtension{}
	_, ok, err := ext.Calculate(context.Background(), map[string]any{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false with no echo param")
	}
}

func TestEchoExtensionName(t *testing.T) {
	if (EchoExtension{}).Name() != "echo" {
		t.Fatal("expected EchoExtension.Name() == \"echo\"")
	}
}
