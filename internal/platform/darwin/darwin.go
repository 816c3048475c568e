//go:build darwin

// Package darwin is the macOS backend. The full implementation needs a
// CGEventTap for the keypress hook and the Accessibility API
// (AXUIElement) for window inspection, both of which require an
// Objective-C/CGo bridge and an Accessibility permission grant from the
// user; neither is implementable without a running macOS target to
// verify against. This package currently reports itself unavailable so
// the rest of expando degrades to the termsource dev backend, following
// the source's own pattern of a per-OS module that can report "not
// supported here" instead of crashing.
package darwin

import (
	"context"
	"fmt"

	"github.com/dshills/expando/internal/event"
	"github.com/dshills/expando/internal/platform"
)

var errUnimplemented = fmt.Errorf("darwin: native backend not implemented in this build")

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

func (k *Keyboard) DeleteString(n int) error              { return errUnimplemented }
func (k *Keyboard) SendString(s string) error             { return errUnimplemented }
func (k *Keyboard) SendEnter() error                      { return errUnimplemented }
func (k *Keyboard) MoveCursorLeft(n int) error             { return errUnimplemented }
func (k *Keyboard) TriggerCopy() error                    { return errUnimplemented }
func (k *Keyboard) TriggerPaste(shortcut string) error     { return errUnimplemented }

// WindowInspector is a stub satisfying platform.WindowInspector.
type WindowInspector struct{}

// NewWindowInspector always returns nil and an unimplemented error.
func NewWindowInspector() (*WindowInspector, error) { return nil, errUnimplemented }

func (w *WindowInspector) CurrentWindow() (platform.WindowInfo, error) {
	return platform.WindowInfo{}, errUnimplemented
}
