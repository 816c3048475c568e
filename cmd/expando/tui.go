package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/expando/internal/action"
	"github.com/dshills/expando/internal/engine"
	gevent "github.com/dshills/expando/internal/event"
)

// tuiSource drives the Matcher straight from a tcell.Screen instead of
// termsource's raw stdin decode, and owns that screen for the lifetime
// of the run. It is the sole goroutine that ever calls screen.PollEvent:
// tray/console.Tray's ShowMenu also polls the same screen when the menu
// key is pressed, so rather than have a second goroutine compete for
// events, the menu key is handled inline here, synchronously, blocking
// this loop exactly as long as the menu stays open.
type tuiSource struct {
	screen tcell.Screen
	eng    *engine.Engine
	bus    *action.Bus
}

func newTUISource(screen tcell.Screen, eng *engine.Engine, bus *action.Bus) *tuiSource {
	return &tuiSource{screen: screen, eng: eng, bus: bus}
}

// CheckEnvironment always succeeds: tcell.NewScreen/Init already failed
// loudly at construction if the terminal couldn't be initialized.
func (s *tuiSource) CheckEnvironment() error { return nil }

// Close finalizes the screen if nothing else already did.
func (s *tuiSource) Close() error {
	s.screen.Fini()
	return nil
}

// Run polls the screen until ctx is cancelled, translating key events
// into expando Events for the Matcher, with three keys reserved for
// direct control: F1 opens the tray menu, Ctrl+P fires passive-mode
// expansion, Ctrl+Q requests shutdown.
func (s *tuiSource) Run(ctx context.Context, emit func(gevent.Event)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.screen.Fini()
		case <-done:
		}
	}()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return ctx.Err()
		}

		keyEv, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}

		switch keyEv.Key() {
		case tcell.KeyF1:
			s.eng.OnActionEvent(action.IconClick)
		case tcell.KeyCtrlP:
			s.eng.OnPassive(ctx)
		case tcell.KeyCtrlQ:
			s.bus.Send(action.Exit)
		default:
			if translated, ok := translateTcellKey(keyEv); ok {
				emit(translated)
			}
		}
	}
}

// translateTcellKey maps a tcell key event onto expando's event
// vocabulary. Unrecognized keys (function keys other than F1, mouse
// events, resize events) are silently dropped; they carry no meaning
// for either the Matcher or the demo.
func translateTcellKey(keyEv *tcell.EventKey) (gevent.Event, bool) {
	switch keyEv.Key() {
	case tcell.KeyRune:
		return gevent.Char(string(keyEv.Rune())), true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return gevent.Mod(gevent.BACKSPACE), true
	case tcell.KeyEnter:
		return gevent.Mod(gevent.ENTER), true
	case tcell.KeyTab:
		return gevent.Mod(gevent.TAB), true
	case tcell.KeyEscape:
		return gevent.Mod(gevent.ESC), true
	case tcell.KeyUp:
		return gevent.Mod(gevent.UP), true
	case tcell.KeyDown:
		return gevent.Mod(gevent.DOWN), true
	case tcell.KeyLeft:
		return gevent.Mod(gevent.LEFT), true
	case tcell.KeyRight:
		return gevent.Mod(gevent.RIGHT), true
	default:
		if keyEv.Modifiers()&tcell.ModCtrl != 0 {
			return gevent.Mod(gevent.CTRL), true
		}
		if keyEv.Modifiers()&tcell.ModAlt != 0 {
			return gevent.Mod(gevent.ALT), true
		}
		return gevent.Event{}, false
	}
}

func newTUIScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("tui: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("tui: init screen: %w", err)
	}
	screen.EnableMouse()
	return screen, nil
}
