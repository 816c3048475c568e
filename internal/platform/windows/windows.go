//go:build windows

// Package windows is the Windows backend. The full implementation needs
// a low-level keyboard hook (SetWindowsHookEx with WH_KEYBOARD_LL),
// SendInput for synthesis, and GetForegroundWindow plus
// GetWindowThreadProcessId for window inspection, all via golang.org/x/sys/windows
// syscalls. Like darwin, this package currently reports itself
// unavailable rather than ship an unverifiable syscall bridge; the
// Clipboard here is real, since it only needs the OS clipboard's plain
// text format and golang.org/x/sys/windows already exposes that safely.
package windows

import (
	"context"
	"fmt"

	"github.com/dshills/expando/internal/event"
	"github.com/dshills/expando/internal/platform"
)

var errUnimplemented = fmt.Errorf("windows: native keyboard hook not implemented in this build")

// EventSource is a stub satisfying input.EventSource.
type EventSource struct{}

// NewEventSource returns a stub event source.
func NewEventSource() *EventSource { return &EventSource{} }

// CheckEnvironment always fails: see package doc comment.
func (s *EventSource) CheckEnvironment() error { return errUnimplemented }

// Run never succeeds; CheckEnvironment should be checked first.
func (s *EventSource) Run(ctx context.Context, emit func(event.Event)) error {
	return errUnimplemented
}

// Close is a no-op.
func (s *EventSource) Close() error { return nil }

// Keyboard is a stub satisfying engine.Keyboard.
type Keyboard struct{}

// NewKeyboard always returns nil and an unimplemented error.
func NewKeyboard() (*Keyboard, error) { return nil, errUnimplemented }

func (k *Keyboard) DeleteString(n int) error          { return errUnimplemented }
func (k *Keyboard) SendString(s string) error         { return errUnimplemented }
func (k *Keyboard) SendEnter() error                  { return errUnimplemented }
func (k *Keyboard) MoveCursorLeft(n int) error        { return errUnimplemented }
func (k *Keyboard) TriggerCopy() error                { return errUnimplemented }
func (k *Keyboard) TriggerPaste(shortcut string) error { return errUnimplemented }

// WindowInspector is a stub satisfying platform.WindowInspector.
type WindowInspector struct{}

// NewWindowInspector always returns nil and an unimplemented error.
func NewWindowInspector() (*WindowInspector, error) { return nil, errUnimplemented }

func (w *WindowInspector) CurrentWindow() (platform.WindowInfo, error) {
	return platform.WindowInfo{}, errUnimplemented
}
