package render

import (
	"context"
	"testing"
)

func TestLuaExtensionBasic(t *testing.T) {
	ext := LuaExtension{}
	out, ok, err := ext.Calculate(context.Background(), map[string]any{
		"script": `result = "hello " .. args[1]`,
	}, []string{"world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || out != "hello world" {
		t.Fatalf("got (%q, %v), want (\"hello world\", true)", out, ok)
	}
}

func TestLuaExtensionTrim(t *testing.T) {
	ext := LuaExtension{}
	out, ok, err := ext.Calculate(context.Background(), map[string]any{
		"script": `result = "  padded  "`,
		"trim":   true,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || out != "padded" {
		t.Fatalf("got (%q, %v), want (\"padded\", true)", out, ok)
	}
}

func TestLuaExtensionNoResultGlobal(t *testing.T) {
	ext := LuaExtension{}
	_, ok, err := ext.Calculate(context.Background(), map[string]any{
		"script": `local x = 1`,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false when script sets no result global")
	}
}

func TestLuaExtensionScriptError(t *testing.T) {
	ext := LuaExtension{}
	_, _, err := ext.Calculate(context.Background(), map[string]any{
		"script": `this is not lua`,
	}, nil)
	if err == nil {
		t.Fatal("expected error for invalid lua syntax")
	}
}

func TestLuaExtensionNoScriptParam(t *testing.T) {
	ext := LuaExtension{}
	_, ok, err := ext.Calculate(context.Background(), map[string]any{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false with no script param")
	}
}
