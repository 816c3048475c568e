// Package console implements engine.UI as a tcell-driven terminal
// overlay: a notification line plus a keyboard-navigable menu. It is
// the UI backend for the --tui demo mode, where there is no real
// system tray, and doubles as a reference implementation a native tray
// (AppIndicator on Linux, NSStatusItem on macOS, Shell_NotifyIcon on
// Windows) would sit behind in a full build.
package console

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/dshills/expando/internal/action"
)

// Tray renders notifications and the tray menu onto a tcell.Screen
// shared with the rest of the console demo, and posts menu selections
// back onto the Action Bus.
type Tray struct {
	screen tcell.Screen
	bus    *action.Bus

	mu         sync.Mutex
	lastNotify string
}

// New builds a console Tray over an already-initialized screen.
func New(screen tcell.Screen, bus *action.Bus) *Tray {
	return &Tray{screen: screen, bus: bus}
}

// Notify draws message on the terminal's bottom status line.
func (t *Tray) Notify(message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastNotify = message
	t.drawStatusLine()
	t.screen.Show()
	log.Info().Str("notification", message).Msg("console: notify")
	return nil
}

// ShowMenu draws a simple vertical menu and blocks until the user picks
// an item (Up/Down to move, Enter to select, Esc to cancel), then posts
// the corresponding action.Type onto the Action Bus.
func (t *Tray) ShowMenu(items []action.MenuItem) error {
	selectable := make([]action.MenuItem, 0, len(items))
	for _, it := range items {
		if it.Kind == action.MenuButton {
			selectable = append(selectable, it)
		}
	}
	if len(selectable) == 0 {
		return nil
	}

	cursor := 0
	t.drawMenu(selectable, cursor)
	for {
		ev := t.screen.PollEvent()
		keyEv, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		switch keyEv.Key() {
		case tcell.KeyUp:
			cursor = (cursor - 1 + len(selectable)) % len(selectable)
			t.drawMenu(selectable, cursor)
		case tcell.KeyDown:
			cursor = (cursor + 1) % len(selectable)
			t.drawMenu(selectable, cursor)
		case tcell.KeyEnter:
			t.clearMenu()
			t.bus.Send(action.Type(selectable[cursor].ID))
			return nil
		case tcell.KeyEscape:
			t.clearMenu()
			return nil
		}
	}
}

// Cleanup finalizes the tcell screen.
func (t *Tray) Cleanup() error {
	t.screen.Fini()
	return nil
}

func (t *Tray) drawStatusLine() {
	w, h := t.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for x := 0; x < w; x++ {
		t.screen.SetContent(x, h-1, ' ', nil, style)
	}
	for i, r := range []rune(t.lastNotify) {
		if i >= w {
			break
		}
		t.screen.SetContent(i, h-1, r, nil, style)
	}
}

func (t *Tray) drawMenu(items []action.MenuItem, cursor int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	top := h - len(items) - 2
	if top < 0 {
		top = 0
	}
	for i, it := range items {
		style := tcell.StyleDefault
		prefix := "  "
		if i == cursor {
			style = style.Reverse(true)
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s", prefix, it.Name)
		for x := 0; x < w; x++ {
			r := ' '
			if x < len(line) {
				r = rune(line[x])
			}
			t.screen.SetContent(x, top+i, r, nil, style)
		}
	}
	t.screen.Show()
}

func (t *Tray) clearMenu() {
	w, h := t.screen.Size()
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			t.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
	t.screen.Show()
}
