package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dshills/expando/internal/action"
	"github.com/dshills/expando/internal/engine"
	"github.com/dshills/expando/internal/event"
	"github.com/dshills/expando/internal/input"
	"github.com/dshills/expando/internal/platform"
	"github.com/dshills/expando/internal/platform/stub"
	"github.com/dshills/expando/internal/platform/termsource"
	"github.com/dshills/expando/internal/tray/noop"
)

// consoleActuators is the non-input half of --console demo mode's
// actuator set: stub's in-memory keyboard, clipboard, and window
// inspector, plus a no-op tray. These have no dependency on the Engine,
// so they can be built before it, unlike the Event Source below (which
// needs the Engine and Action Bus to wire its control keys).
type consoleActuators struct {
	keyboard  *stub.Keyboard
	clipboard *stub.Clipboard
	inspector platform.WindowInspector
	ui        *noop.UI
}

func newConsoleActuators() *consoleActuators {
	return &consoleActuators{
		keyboard:  stub.NewKeyboard(),
		clipboard: stub.NewClipboard(),
		inspector: stub.NewWindowInspector(),
		ui:        noop.New(),
	}
}

// newConsoleSource wires a raw stdin Event Source (there is no real
// focused application to read keystrokes from) and intercepts two keys
// the demo repurposes for control rather than text: Ctrl+C requests
// shutdown (raw mode disables the usual SIGINT delivery, so termsource
// decodes it as a plain CTRL modifier) and Tab fires passive-mode
// expansion, since the demo has no real "text selection" to hang a
// native passive-mode trigger off of. After every event it prints the
// virtual document so the user can watch expansions happen live.
func newConsoleSource(kb *stub.Keyboard, onQuit, onPassive func()) input.EventSource {
	raw := termsource.New(os.Stdin)

	return &specialKeyInterceptor{
		inner:  raw,
		onCtrl: onQuit,
		onTab:  onPassive,
		afterEmit: func() {
			text, cursor := kb.Snapshot()
			fmt.Printf("\r\x1b[K%s\n", withCaret(text, cursor))
		},
	}
}

func withCaret(text string, cursor int) string {
	runes := []rune(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	return string(runes[:cursor]) + "|" + string(runes[cursor:])
}

// specialKeyInterceptor sits between a raw EventSource and the Matcher,
// diverting a couple of control keys to demo-mode callbacks instead of
// feeding them to the Matcher (which would otherwise just reset its
// buffer on them, per Modifier.ResetsMatcher).
type specialKeyInterceptor struct {
	inner     input.EventSource
	onCtrl    func()
	onTab     func()
	afterEmit func()
}

func (s *specialKeyInterceptor) CheckEnvironment() error { return s.inner.CheckEnvironment() }
func (s *specialKeyInterceptor) Close() error            { return s.inner.Close() }

func (s *specialKeyInterceptor) Run(ctx context.Context, emit func(event.Event)) error {
	return s.inner.Run(ctx, func(ev event.Event) {
		if ev.IsModifier() {
			switch ev.Modifier {
			case event.CTRL:
				if s.onCtrl != nil {
					s.onCtrl()
				}
				return
			case event.TAB:
				if s.onTab != nil {
					s.onTab()
				}
				return
			}
		}
		emit(ev)
		if s.afterEmit != nil {
			s.afterEmit()
		}
	})
}

// quitAction is a small convenience used by console mode:
// posting action.Exit onto the bus routes shutdown through the same
// Engine.OnActionEvent path a real tray's exit menu item would use.
func quitAction(bus *action.Bus) func() {
	return func() { bus.Send(action.Exit) }
}

// passiveAction invokes passive-mode expansion directly: it is not a
// tray/menu event, so it bypasses the Action Bus and calls the Engine
// the same way a native passive-mode hotkey tap would.
func passiveAction(ctx context.Context, eng *engine.Engine) func() {
	return func() { eng.OnPassive(ctx) }
}
