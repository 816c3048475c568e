// Package stub provides in-memory, dependency-free implementations of
// the platform capability interfaces. internal/engine's tests build
// their own narrower fakes; this package exists for cmd/expando's
// --console demo mode, where there is no real focused application to
// inject keystrokes into, only a virtual text buffer to render to the
// terminal.
package stub

import (
	"fmt"
	"sync"

	"github.com/dshills/expando/internal/platform"
)

// Keyboard simulates keystroke delivery into an in-memory text buffer
// instead of a real focused application. The cursor is a rune index into
// the buffer; DeleteString and MoveCursorLeft operate relative to it.
type Keyboard struct {
	mu     sync.Mutex
	buffer []rune
	cursor int
}

// NewKeyboard returns an empty virtual document.
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Snapshot returns the current buffer contents and cursor position.
func (k *Keyboard) Snapshot() (text string, cursor int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return string(k.buffer), k.cursor
}

func (k *Keyboard) DeleteString(n int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i := 0; i < n && k.cursor > 0; i++ {
		k.buffer = append(k.buffer[:k.cursor-1], k.buffer[k.cursor:]...)
		k.cursor--
	}
	return nil
}

func (k *Keyboard) SendString(s string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	runes := []rune(s)
	tail := append([]rune{}, k.buffer[k.cursor:]...)
	k.buffer = append(append(k.buffer[:k.cursor], runes...), tail...)
	k.cursor += len(runes)
	return nil
}

func (k *Keyboard) SendEnter() error {
	return k.SendString("\n")
}

func (k *Keyboard) MoveCursorLeft(n int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.cursor -= n
	if k.cursor < 0 {
		k.cursor = 0
	}
	return nil
}

func (k *Keyboard) TriggerCopy() error { return nil }

func (k *Keyboard) TriggerPaste(shortcut string) error { return nil }

// TypeChar inserts a single user keystroke into the virtual document at
// the cursor.
func (k *Keyboard) TypeChar(s string) {
	_ = k.SendString(s)
}

// Backspace removes the character before the cursor, mirroring what
// BACKSPACE does in a real text field.
func (k *Keyboard) Backspace() {
	_ = k.DeleteString(1)
}

// Clipboard is an in-memory clipboard.
type Clipboard struct {
	mu        sync.Mutex
	text      string
	haveText  bool
	imagePath string
}

// NewClipboard returns an empty in-memory clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

func (c *Clipboard) GetClipboard() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.haveText
}

func (c *Clipboard) SetClipboard(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text, c.haveText = text, true
	return nil
}

func (c *Clipboard) SetClipboardImage(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imagePath = path
	return nil
}

// WindowInspector always reports the same fixed window, used when the
// --console demo has no real window manager to query.
type WindowInspector struct {
	Info platform.WindowInfo
}

// NewWindowInspector returns an inspector reporting a synthetic console window.
func NewWindowInspector() *WindowInspector {
	return &WindowInspector{Info: platform.WindowInfo{Title: "expando console", Class: "expando-console"}}
}

func (w *WindowInspector) CurrentWindow() (platform.WindowInfo, error) {
	return w.Info, nil
}

// String renders the virtual document with a caret marker.
func (k *Keyboard) String() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	cursor := k.cursor
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(k.buffer) {
		cursor = len(k.buffer)
	}
	return fmt.Sprintf("%s│%s", string(k.buffer[:cursor]), string(k.buffer[cursor:]))
}
