package render

import (
	"context"
	"testing"
)

func TestAIExtensionUnknownProvider(t *testing.T) {
	ext := AIExtension{}
	_, _, err := ext.Calculate(context.Background(), map[string]any{
		"provider": "carrier-pigeon",
		"prompt":   "hello",
	}, nil)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestAIExtensionNoPrompt(t *testing.T) {
	ext := AIExtension{}
	_, ok, err := ext.Calculate(context.Background(), map[string]any{"provider": "openai"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false with no prompt param")
	}
}
