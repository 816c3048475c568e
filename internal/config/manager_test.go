package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/expando/internal/engine"
	"github.com/dshills/expando/internal/platform"
)

type fakeInspector struct {
	win platform.WindowInfo
	err error
}

func (f fakeInspector) CurrentWindow() (platform.WindowInfo, error) {
	return f.win, f.err
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestNewRequiresDefaultDocument(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(dir); err != ErrNoDefaultDocument {
		t.Fatalf("New() error = %v, want ErrNoDefaultDocument", err)
	}
}

func TestDefaultConfigDecodesBaseDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yml", `
backend: clipboard
enable_passive: false
paste_shortcut: CTRL+SHIFT+V
action_noop_interval: 250
restore_clipboard_delay: 75
`)

	m, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cfg := m.DefaultConfig()
	if cfg.Backend != engine.BackendClipboard {
		t.Errorf("Backend = %v, want BackendClipboard", cfg.Backend)
	}
	if cfg.EnablePassive {
		t.Error("EnablePassive = true, want false")
	}
	if cfg.PasteShortcut != "CTRL+SHIFT+V" {
		t.Errorf("PasteShortcut = %q", cfg.PasteShortcut)
	}
	if cfg.ActionNoopInterval != 250*time.Millisecond {
		t.Errorf("ActionNoopInterval = %v, want 250ms", cfg.ActionNoopInterval)
	}
	if cfg.RestoreClipboardDelay != 75*time.Millisecond {
		t.Errorf("RestoreClipboardDelay = %v, want 75ms", cfg.RestoreClipboardDelay)
	}
}

func TestActiveConfigWithoutInspectorReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yml", `backend: inject`)
	writeFile(t, dir, "terminal.yml", `
filter_class: "^terminal$"
backend: clipboard
`)

	m, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cfg := m.ActiveConfig()
	if cfg.Backend != engine.BackendInject {
		t.Errorf("Backend = %v, want BackendInject (no inspector wired)", cfg.Backend)
	}
}

func TestActiveConfigMatchesOverrideByClass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yml", `
backend: inject
preserve_clipboard: true
`)
	writeFile(t, dir, "terminal.yml", `
filter_class: "^(xterm|gnome-terminal)$"
backend: clipboard
`)

	m, err := New(dir, WithWindowInspector(fakeInspector{win: platform.WindowInfo{Class: "xterm"}}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cfg := m.ActiveConfig()
	if cfg.Backend != engine.BackendClipboard {
		t.Errorf("Backend = %v, want BackendClipboard (matched override)", cfg.Backend)
	}
	if !cfg.PreserveClipboard {
		t.Error("PreserveClipboard should still come from the default document")
	}
}

func TestActiveConfigFallsBackWhenNoOverrideMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yml", `backend: inject`)
	writeFile(t, dir, "terminal.yml", `
filter_class: "^xterm$"
backend: clipboard
`)

	m, err := New(dir, WithWindowInspector(fakeInspector{win: platform.WindowInfo{Class: "firefox"}}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cfg := m.ActiveConfig()
	if cfg.Backend != engine.BackendInject {
		t.Errorf("Backend = %v, want BackendInject (no override matched)", cfg.Backend)
	}
}

func TestActiveConfigFirstMatchingOverrideWinsByFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yml", `backend: inject`)
	writeFile(t, dir, "a-first.yml", `
filter_title: ".*"
paste_shortcut: CTRL+V
`)
	writeFile(t, dir, "b-second.yml", `
filter_title: ".*"
paste_shortcut: CTRL+SHIFT+V
`)

	m, err := New(dir, WithWindowInspector(fakeInspector{win: platform.WindowInfo{Title: "anything"}}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cfg := m.ActiveConfig()
	if cfg.PasteShortcut != "CTRL+V" {
		t.Errorf("PasteShortcut = %q, want CTRL+V from the first matching file", cfg.PasteShortcut)
	}
}

func TestActiveConfigInspectorErrorFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yml", `backend: inject`)
	writeFile(t, dir, "terminal.yml", `
filter_class: ".*"
backend: clipboard
`)

	m, err := New(dir, WithWindowInspector(fakeInspector{err: errWindowLookup}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cfg := m.ActiveConfig()
	if cfg.Backend != engine.BackendInject {
		t.Errorf("Backend = %v, want BackendInject (inspector error)", cfg.Backend)
	}
}

func TestOverrideWithNoFiltersNeverMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yml", `backend: inject`)
	writeFile(t, dir, "stray.yml", `backend: clipboard`)

	m, err := New(dir, WithWindowInspector(fakeInspector{win: platform.WindowInfo{Title: "anything"}}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cfg := m.ActiveConfig()
	if cfg.Backend != engine.BackendInject {
		t.Errorf("Backend = %v, want BackendInject (filterless document should not apply)", cfg.Backend)
	}
}

func TestInvalidFilterPatternFailsLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yml", `backend: inject`)
	writeFile(t, dir, "broken.yml", `filter_title: "("`)

	if _, err := New(dir); err == nil {
		t.Fatal("New() expected an error for an invalid filter_title regexp")
	}
}

var errWindowLookup = &windowLookupError{}

type windowLookupError struct{}

func (*windowLookupError) Error() string { return "window lookup failed" }
