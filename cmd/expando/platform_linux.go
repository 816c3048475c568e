//go:build linux

package main

import (
	"github.com/dshills/expando/internal/engine"
	"github.com/dshills/expando/internal/input"
	"github.com/dshills/expando/internal/platform"
	"github.com/dshills/expando/internal/platform/linux"
)

// newNativeEventSource builds the platform's keypress hook. On linux
// this is the real X11/XRecord backend; CheckEnvironment (called by
// input.Source.Serve) reports whether an X server is actually reachable.
func newNativeEventSource() input.EventSource {
	return linux.NewEventSource()
}

// newNativeActuators builds the keystroke-synthesis, clipboard, and
// window-inspection backends. A non-nil err means the X11 connection
// itself could not be opened (not just that the keypress hook failed),
// in which case the caller falls back to the termsource demo backend.
func newNativeActuators() (engine.Keyboard, engine.Clipboard, platform.WindowInspector, error) {
	kb, err := linux.NewKeyboard()
	if err != nil {
		return nil, nil, nil, err
	}
	wi, err := linux.NewWindowInspector()
	if err != nil {
		return nil, nil, nil, err
	}
	return kb, linux.NewClipboard(), wi, nil
}
