//go:build darwin

package main

import (
	"github.com/dshills/expando/internal/engine"
	"github.com/dshills/expando/internal/input"
	"github.com/dshills/expando/internal/platform"
	"github.com/dshills/expando/internal/platform/darwin"
)

// newNativeEventSource builds darwin's keypress hook. It always
// constructs; CheckEnvironment is what reports the backend unimplemented.
func newNativeEventSource() input.EventSource {
	return darwin.NewEventSource()
}

// newNativeActuators always fails on darwin: there is no running macOS
// target in this build environment to verify a CGEventTap/AXUIElement
// bridge against. The caller falls back to the termsource demo backend,
// the degradation path internal/platform/darwin's own doc comment
// describes.
func newNativeActuators() (engine.Keyboard, engine.Clipboard, platform.WindowInspector, error) {
	kb, err := darwin.NewKeyboard()
	if err != nil {
		return nil, nil, nil, err
	}
	wi, err := darwin.NewWindowInspector()
	if err != nil {
		return nil, nil, nil, err
	}
	return kb, nil, wi, nil
}
