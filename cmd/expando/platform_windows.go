//go:build windows

package main

import (
	"github.com/dshills/expando/internal/engine"
	"github.com/dshills/expando/internal/input"
	"github.com/dshills/expando/internal/platform"
	"github.com/dshills/expando/internal/platform/windows"
)

// newNativeEventSource builds Windows's keypress hook. It always
// constructs; CheckEnvironment is what reports the backend unimplemented.
func newNativeEventSource() input.EventSource {
	return windows.NewEventSource()
}

// newNativeActuators fails on the keyboard and window-inspector
// capabilities: both need a SetWindowsHookEx/GetForegroundWindow bridge
// with no live Windows target in this build environment to verify
// against. The clipboard needs no such bridge (only the plain-text
// clipboard format via golang.org/x/sys/windows), but the caller
// requires the whole actuator set or none of it, so it still falls back
// to the termsource demo backend when the keyboard can't be built.
func newNativeActuators() (engine.Keyboard, engine.Clipboard, platform.WindowInspector, error) {
	kb, err := windows.NewKeyboard()
	if err != nil {
		return nil, nil, nil, err
	}
	wi, err := windows.NewWindowInspector()
	if err != nil {
		return nil, nil, nil, err
	}
	return kb, windows.NewClipboard(), wi, nil
}
