// Package engine implements the Engine: the orchestrator that receives
// match callbacks from the Matcher and tray events from the Action Bus,
// sequences delete→render→inject→restore, manages enable/disable and
// passive mode, and runs the self-echo guard that keeps the daemon's own
// injected keys from cascading into further matches.
package engine

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rivo/uniseg"
	"github.com/rs/zerolog/log"

	"github.com/dshills/expando/internal/action"
	"github.com/dshills/expando/internal/match"
	"github.com/dshills/expando/internal/render"
)

const defaultPassiveModeDelay = 100 * time.Millisecond

// Engine is parameterized over five capability interfaces (Keyboard,
// Clipboard, ConfigProvider, UI, Renderer), injected at construction.
// This is the same shape as the source's generic parameterization over
// five capability sets, and is what makes the Engine unit-testable with
// in-memory fakes.
type Engine struct {
	keyboard  Keyboard
	clipboard Clipboard
	config    ConfigProvider
	ui        UI
	renderer  Renderer

	now   func() time.Time
	sleep func(time.Duration)

	passiveModeDelay time.Duration

	mu             sync.Mutex
	enabled        bool
	lastActionTime time.Time

	quit     chan struct{}
	quitOnce sync.Once
}

// New builds an Engine over its five capabilities.
func New(keyboard Keyboard, clipboard Clipboard, config ConfigProvider, ui UI, renderer Renderer, opts ...Option) *Engine {
	e := &Engine{
		keyboard:         keyboard,
		clipboard:        clipboard,
		config:           config,
		ui:               ui,
		renderer:         renderer,
		now:              time.Now,
		sleep:            time.Sleep,
		passiveModeDelay: defaultPassiveModeDelay,
		enabled:          true,
		quit:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lastActionTime = e.now()
	return e
}

// checkLastActionAndSet is the self-echo guard: if less than interval
// has elapsed since the last honored action, it returns true (meaning
// "block this call") without touching lastActionTime. Otherwise it sets
// lastActionTime to now and returns false. Callers must hold mu.
func (e *Engine) checkLastActionAndSet(interval time.Duration) bool {
	if e.now().Sub(e.lastActionTime) < interval {
		return true
	}
	e.lastActionTime = e.now()
	return false
}

// Enabled reports the current enable/disable state.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// OnMatch is the main expansion path: delete the trigger, render the
// match, inject or paste the payload, then restore the clipboard if it
// was saved. It is a no-op if the active config disables expansion or
// the self-echo guard blocks it.
func (e *Engine) OnMatch(ctx context.Context, m match.Match, trailingSeparator *string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.config.ActiveConfig()
	if !cfg.EnableActive {
		return
	}
	if e.checkLastActionAndSet(cfg.ActionNoopInterval) {
		return
	}

	charCount := countChars(m.Trigger)
	if trailingSeparator != nil {
		charCount++
	}
	if err := e.keyboard.DeleteString(charCount); err != nil {
		log.Warn().Err(err).Str("trigger", m.Trigger).Msg("engine: delete_string failed")
	}

	result := e.renderer.Render(ctx, m, nil)

	switch result.Kind {
	case render.ResultText:
		e.expandText(cfg, result, trailingSeparator)
	case render.ResultImage:
		e.expandImage(cfg, result.ImagePath)
	case render.ResultError:
		log.Error().Err(result.Err).Str("trigger", m.Trigger).Msg("engine: could not render match")
	}
}

// expandText injects a rendered text payload, appending the trailing
// separator the Matcher consumed, then applies any cursor rewind.
func (e *Engine) expandText(cfg Config, result render.Result, trailingSeparator *string) {
	text := result.Text
	if trailingSeparator != nil {
		sep := *trailingSeparator
		if sep == "\r" {
			text += "\n"
		} else {
			text += sep
		}
	}

	if cfg.Backend == BackendClipboard {
		e.withPreservedClipboard(cfg, func() {
			if err := e.setClipboardRetry(text); err != nil {
				log.Warn().Err(err).Msg("engine: set_clipboard failed")
			}
			if err := e.keyboard.TriggerPaste(cfg.PasteShortcut); err != nil {
				log.Warn().Err(err).Msg("engine: trigger_paste failed")
			}
		})
	} else {
		e.sendInjected(text)
	}

	if result.CursorRewind > 0 {
		if err := e.keyboard.MoveCursorLeft(result.CursorRewind); err != nil {
			log.Warn().Err(err).Msg("engine: move_cursor_left failed")
		}
	}
}

// expandImage always goes through the clipboard: there is no keystroke
// synthesis path for pasting an image.
func (e *Engine) expandImage(cfg Config, imagePath string) {
	e.withPreservedClipboard(cfg, func() {
		if err := e.clipboard.SetClipboardImage(imagePath); err != nil {
			log.Warn().Err(err).Msg("engine: set_clipboard_image failed")
		}
		if err := e.keyboard.TriggerPaste(cfg.PasteShortcut); err != nil {
			log.Warn().Err(err).Msg("engine: trigger_paste failed")
		}
	})
}

// withPreservedClipboard saves the clipboard (if PreserveClipboard is
// set), runs action, then — after RestoreClipboardDelay — writes the
// saved content back. The clipboard never shows a partial state to the
// user beyond the "briefly holds the replacement" window this describes.
func (e *Engine) withPreservedClipboard(cfg Config, action func()) {
	var saved string
	haveSaved := false
	if cfg.PreserveClipboard {
		saved, haveSaved = e.getClipboardRetry()
	}

	action()

	if haveSaved {
		e.sleep(cfg.RestoreClipboardDelay)
		if err := e.setClipboardRetry(saved); err != nil {
			log.Warn().Err(err).Msg("engine: failed to restore clipboard, skipping restore")
		}
	}
}

// setClipboardRetry writes text to the clipboard, retrying exactly once
// on failure before giving up — the "transient IPC" policy for clipboard
// read/write failures, which are expected to be occasionally flaky
// round-trips to the window server rather than permanent faults.
func (e *Engine) setClipboardRetry(text string) error {
	if err := e.clipboard.SetClipboard(text); err != nil {
		return e.clipboard.SetClipboard(text)
	}
	return nil
}

// getClipboardRetry reads the clipboard, retrying once if the first
// attempt reports no readable text.
func (e *Engine) getClipboardRetry() (string, bool) {
	if text, ok := e.clipboard.GetClipboard(); ok {
		return text, ok
	}
	return e.clipboard.GetClipboard()
}

// sendInjected delivers text via simulated keystrokes. Unix-like
// synthesizers handle embedded newlines natively in one call; other
// platforms need an explicit Enter between lines.
func (e *Engine) sendInjected(text string) {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		if err := e.keyboard.SendString(text); err != nil {
			log.Warn().Err(err).Msg("engine: send_string failed")
		}
		return
	}
	segments := strings.Split(text, "\n")
	for i, seg := range segments {
		if i > 0 {
			if err := e.keyboard.SendEnter(); err != nil {
				log.Warn().Err(err).Msg("engine: send_enter failed")
			}
		}
		if err := e.keyboard.SendString(seg); err != nil {
			log.Warn().Err(err).Msg("engine: send_string failed")
		}
	}
}

// countChars counts user-perceived characters (grapheme clusters), not
// bytes or runes, matching the Matcher's trigger-length accounting.
func countChars(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Done is closed once an Exit action has been processed, signalling the
// host (cmd/expando) that it should release the native hook and return.
func (e *Engine) Done() <-chan struct{} {
	return e.quit
}

// OnEnableUpdate flips the enabled flag and notifies the user. It is
// guarded by the same self-echo check as OnMatch and OnPassive, since
// toggling on the fly is itself an action the user triggers.
func (e *Engine) OnEnableUpdate(status bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.config.ActiveConfig()
	if e.checkLastActionAndSet(cfg.ActionNoopInterval) {
		return
	}

	e.enabled = status
	message := "expando disabled"
	if status {
		message = "expando enabled"
	}
	if err := e.ui.Notify(message); err != nil {
		log.Warn().Err(err).Msg("engine: notify failed")
	}
}

// OnPassive implements passive-mode expansion: copy the current
// selection, render it as a template in place, and paste the result
// back over the selection.
func (e *Engine) OnPassive(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.config.ActiveConfig()
	if !cfg.EnablePassive {
		return
	}
	if e.checkLastActionAndSet(cfg.ActionNoopInterval) {
		return
	}

	if err := e.keyboard.TriggerCopy(); err != nil {
		log.Warn().Err(err).Msg("engine: trigger_copy failed")
		return
	}
	e.sleep(e.passiveModeDelay)

	text, ok := e.getClipboardRetry()
	if !ok {
		log.Warn().Err(ErrNoClipboardContent).Msg("engine: passive mode found nothing to expand")
		return
	}

	result := e.renderer.RenderPassive(ctx, text)
	if result.Kind != render.ResultText {
		log.Warn().Interface("kind", result.Kind).Err(result.Err).Msg("engine: passive render produced no text, discarding")
		return
	}

	if err := e.setClipboardRetry(result.Text); err != nil {
		log.Warn().Err(err).Msg("engine: set_clipboard failed")
		return
	}
	e.sleep(e.passiveModeDelay)
	if err := e.keyboard.TriggerPaste(cfg.PasteShortcut); err != nil {
		log.Warn().Err(err).Msg("engine: trigger_paste failed")
	}
}

// OnActionEvent handles a tray/menu event delivered over the Action Bus.
func (e *Engine) OnActionEvent(kind action.Type) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch kind {
	case action.Toggle:
		e.enabled = !e.enabled
		message := "expando disabled"
		if e.enabled {
			message = "expando enabled"
		}
		if err := e.ui.Notify(message); err != nil {
			log.Warn().Err(err).Msg("engine: notify failed")
		}
	case action.IconClick:
		if err := e.ui.ShowMenu(e.buildMenu()); err != nil {
			log.Warn().Err(err).Msg("engine: show_menu failed")
		}
	case action.Exit:
		if err := e.ui.Cleanup(); err != nil {
			log.Warn().Err(err).Msg("engine: cleanup failed")
		}
		e.quitOnce.Do(func() { close(e.quit) })
	}
}

// Menu item IDs, stable across calls so a UI backend can map a click
// back to an action.Type without round-tripping names. These are
// intentionally numbered to match action.Toggle and action.Exit so a UI
// backend can post action.Type(item.ID) straight back onto the Action
// Bus without a translation table.
const (
	menuIDToggle = iota
	menuIDExit
)

// buildMenu renders the two-button-plus-separator tray menu: toggle
// (label reflects current state), a separator, then exit.
func (e *Engine) buildMenu() []action.MenuItem {
	toggleLabel := "Disable"
	if !e.enabled {
		toggleLabel = "Enable"
	}
	return []action.MenuItem{
		{Kind: action.MenuButton, Name: toggleLabel, ID: menuIDToggle},
		{Kind: action.MenuSeparator},
		{Kind: action.MenuButton, Name: "Exit", ID: menuIDExit},
	}
}
