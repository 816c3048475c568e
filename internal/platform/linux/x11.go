//go:build linux

// Package linux implements the native X11 backend: a global keypress
// hook built on the XRecord extension, keystroke synthesis and cursor
// movement via XTest, and focused-window inspection via XGetInputFocus
// and the WM_CLASS / title properties.
package linux

/*
#cgo pkg-config: x11 xtst
#include <stdlib.h>
#include <string.h>
#include <X11/Xlib.h>
#include <X11/Xutil.h>
#include <X11/extensions/XTest.h>
#include <X11/extensions/record.h>

extern void expandoRecordCallback(XPointer closure, XRecordInterceptData *data);

static int expando_check_x11(void) {
	Display *d = XOpenDisplay(NULL);
	if (d == NULL) {
		return -1;
	}
	XCloseDisplay(d);
	return 0;
}

// startRecording opens a dedicated control connection and a dedicated
// data connection (XRecord requires two, per the extension's own
// documentation), then blocks in XRecordEnableContext until
// XRecordDisableContext is called from another thread. Returns 0 on a
// clean shutdown, negative on setup failure.
static int expando_start_recording(Display **outDataDisplay, XRecordContext *outCtx) {
	Display *ctrlDisplay = XOpenDisplay(NULL);
	if (ctrlDisplay == NULL) {
		return -1;
	}
	Display *dataDisplay = XOpenDisplay(NULL);
	if (dataDisplay == NULL) {
		XCloseDisplay(ctrlDisplay);
		return -2;
	}

	XRecordRange *range = XRecordAllocRange();
	if (range == NULL) {
		XCloseDisplay(ctrlDisplay);
		XCloseDisplay(dataDisplay);
		return -3;
	}
	range->device_events.first = KeyPress;
	range->device_events.last = KeyRelease;

	XRecordClientSpec clients = XRecordAllClients;
	XRecordContext ctx = XRecordCreateContext(ctrlDisplay, 0, &clients, 1, &range, 1);
	XFree(range);
	if (ctx == 0) {
		XCloseDisplay(ctrlDisplay);
		XCloseDisplay(dataDisplay);
		return -4;
	}

	*outDataDisplay = dataDisplay;
	*outCtx = ctx;

	XSync(ctrlDisplay, True);
	if (!XRecordEnableContext(dataDisplay, ctx, expandoRecordCallback, NULL)) {
		return -5;
	}
	return 0;
}

static void expando_stop_recording(Display *ctrlDisplayForDisable, XRecordContext ctx) {
	XRecordDisableContext(ctrlDisplayForDisable, ctx);
	XSync(ctrlDisplayForDisable, True);
}

static void expando_send_key(Display *d, KeyCode code, int press) {
	XTestFakeKeyEvent(d, code, press ? True : False, CurrentTime);
	XFlush(d);
}

static char *expando_get_window_class(Display *d, Window w) {
	XClassHint hint;
	memset(&hint, 0, sizeof(hint));
	if (XGetClassHint(d, w, &hint) == 0) {
		return NULL;
	}
	char *result = hint.res_class ? strdup(hint.res_class) : NULL;
	if (hint.res_name) XFree(hint.res_name);
	if (hint.res_class) XFree(hint.res_class);
	return result;
}

static char *expando_get_window_title(Display *d, Window w) {
	XTextProperty prop;
	memset(&prop, 0, sizeof(prop));
	if (XGetWMName(d, w, &prop) == 0 || prop.value == NULL) {
		return NULL;
	}
	char *result = strdup((char *)prop.value);
	XFree(prop.value);
	return result;
}

static Window expando_get_active_window(Display *d) {
	Window focus;
	int revert;
	XGetInputFocus(d, &focus, &revert);
	return focus;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/dshills/expando/internal/event"
	"github.com/dshills/expando/internal/platform"
)

// keycodeModifier mirrors the source's hard-coded X11 keycode table for
// the modifiers expando cares about. Keysyms would be more portable than
// raw keycodes, but the source keys directly off XRecord keycodes and
// this backend follows that choice for parity.
var keycodeModifier = map[C.int]event.Modifier{
	133: event.META,
	50:  event.SHIFT,
	64:  event.ALT,
	37:  event.CTRL,
	22:  event.BACKSPACE,
	36:  event.ENTER,
	9:   event.ESC,
	23:  event.TAB,
	113: event.LEFT,
	114: event.RIGHT,
	111: event.UP,
	116: event.DOWN,
}

var recordMu sync.Mutex
var recordEmit func(event.Event)

//export expandoRecordCallback
func expandoRecordCallback(closure C.XPointer, data *C.XRecordInterceptData) {
	defer C.XRecordFreeData(data)
	if data.category != C.XRecordFromServer {
		return
	}

	raw := (*[32]byte)(unsafe.Pointer(data.data))
	eventType := raw[0]
	if eventType != C.KeyPress {
		return
	}
	keycode := C.int(raw[1])

	recordMu.Lock()
	emit := recordEmit
	recordMu.Unlock()
	if emit == nil {
		return
	}

	if mod, ok := keycodeModifier[keycode]; ok {
		emit(event.Mod(mod))
		return
	}
	// Non-modifier keycodes are not decoded: no keysym->rune table exists
	// here, so they are dropped and this hook emits no Char events.
}

// EventSource is the global keypress hook backed by XRecord.
type EventSource struct {
	ctrlDisplay *C.Display
	dataDisplay *C.Display
	ctx         C.XRecordContext
	started     bool
}

// NewEventSource builds an unopened X11 event source.
func NewEventSource() *EventSource {
	return &EventSource{}
}

// CheckEnvironment reports whether an X11 display is reachable.
func (s *EventSource) CheckEnvironment() error {
	if C.expando_check_x11() < 0 {
		return fmt.Errorf("linux: cannot connect to X11 display")
	}
	return nil
}

// Run blocks delivering KeyPress/modifier events to emit until ctx is
// canceled or the recording loop fails to start.
func (s *EventSource) Run(ctx context.Context, emit func(event.Event)) error {
	recordMu.Lock()
	recordEmit = emit
	recordMu.Unlock()

	ctrlDisplay := C.XOpenDisplay(nil)
	if ctrlDisplay == nil {
		return fmt.Errorf("linux: XOpenDisplay failed for control connection")
	}
	s.ctrlDisplay = ctrlDisplay

	done := make(chan error, 1)
	go func() {
		var dataDisplay *C.Display
		var ctx C.XRecordContext
		rc := C.expando_start_recording(&dataDisplay, &ctx)
		s.dataDisplay = dataDisplay
		s.ctx = ctx
		if rc < 0 {
			done <- fmt.Errorf("linux: XRecord setup failed, code %d", int(rc))
			return
		}
		done <- nil
	}()

	select {
	case <-ctx.Done():
		s.stop()
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return err
		}
	}

	<-ctx.Done()
	s.stop()
	return ctx.Err()
}

func (s *EventSource) stop() {
	if s.ctrlDisplay != nil && s.ctx != 0 {
		C.expando_stop_recording(s.ctrlDisplay, s.ctx)
	}
}

// Close releases the X11 connections.
func (s *EventSource) Close() error {
	if s.dataDisplay != nil {
		C.XCloseDisplay(s.dataDisplay)
		s.dataDisplay = nil
	}
	if s.ctrlDisplay != nil {
		C.XCloseDisplay(s.ctrlDisplay)
		s.ctrlDisplay = nil
	}
	return nil
}

// Keyboard synthesizes keystrokes via XTest and Xlib. One Keyboard owns
// one Xlib connection; it is not safe for
// concurrent use without external synchronization (the Engine already
// serializes all calls into it).
type Keyboard struct {
	display *C.Display
}

// NewKeyboard opens a dedicated Xlib connection for synthesis.
func NewKeyboard() (*Keyboard, error) {
	d := C.XOpenDisplay(nil)
	if d == nil {
		return nil, fmt.Errorf("linux: XOpenDisplay failed for keyboard connection")
	}
	return &Keyboard{display: d}, nil
}

// DeleteString sends n BackSpace key events.
func (k *Keyboard) DeleteString(n int) error {
	code := C.XKeysymToKeycode(k.display, C.XK_BackSpace)
	for i := 0; i < n; i++ {
		C.expando_send_key(k.display, code, 1)
		C.expando_send_key(k.display, code, 0)
	}
	return nil
}

// SendString synthesizes each rune in s via XTestFakeKeyEvent, mapping
// through a scratch keycode (keycode 253, conventionally unused) bound
// to the needed keysym for the duration of the keypress. This is the
// same trick xdotool's "type" command uses to handle characters outside
// the current keyboard layout.
func (k *Keyboard) SendString(s string) error {
	const scratchKeycode = C.KeyCode(253)
	for _, r := range s {
		keysym := C.KeySym(r)
		keysyms := []C.KeySym{keysym, keysym}
		C.XChangeKeyboardMapping(k.display, C.int(scratchKeycode), 1, &keysyms[0], 1)
		C.XSync(k.display, C.False)
		C.expando_send_key(k.display, scratchKeycode, 1)
		C.expando_send_key(k.display, scratchKeycode, 0)
	}
	return nil
}

// SendEnter sends a Return key event.
func (k *Keyboard) SendEnter() error {
	code := C.XKeysymToKeycode(k.display, C.XK_Return)
	C.expando_send_key(k.display, code, 1)
	C.expando_send_key(k.display, code, 0)
	return nil
}

// MoveCursorLeft sends n Left-arrow key events.
func (k *Keyboard) MoveCursorLeft(n int) error {
	code := C.XKeysymToKeycode(k.display, C.XK_Left)
	for i := 0; i < n; i++ {
		C.expando_send_key(k.display, code, 1)
		C.expando_send_key(k.display, code, 0)
	}
	return nil
}

// TriggerCopy sends Ctrl+C.
func (k *Keyboard) TriggerCopy() error {
	return k.sendChord(C.XK_Control_L, C.XK_c)
}

// TriggerPaste sends the configured paste chord. Only "CTRL+V" and
// "CTRL+SHIFT+V" (common in terminal emulators) are recognized; anything
// else falls back to "CTRL+V".
func (k *Keyboard) TriggerPaste(shortcut string) error {
	switch shortcut {
	case "CTRL+SHIFT+V":
		return k.sendChord(C.XK_Control_L, C.XK_Shift_L, C.XK_v)
	default:
		return k.sendChord(C.XK_Control_L, C.XK_v)
	}
}

func (k *Keyboard) sendChord(keysyms ...C.KeySym) error {
	codes := make([]C.KeyCode, len(keysyms))
	for i, ks := range keysyms {
		codes[i] = C.XKeysymToKeycode(k.display, ks)
	}
	for _, c := range codes {
		C.expando_send_key(k.display, c, 1)
	}
	for i := len(codes) - 1; i >= 0; i-- {
		C.expando_send_key(k.display, codes[i], 0)
	}
	return nil
}

// Close releases the Xlib connection.
func (k *Keyboard) Close() error {
	if k.display != nil {
		C.XCloseDisplay(k.display)
		k.display = nil
	}
	return nil
}

// WindowInspector reports the focused window's class and title over its
// own Xlib connection, separate from the Keyboard's.
type WindowInspector struct {
	display *C.Display
}

// NewWindowInspector opens a dedicated Xlib connection.
func NewWindowInspector() (*WindowInspector, error) {
	d := C.XOpenDisplay(nil)
	if d == nil {
		return nil, fmt.Errorf("linux: XOpenDisplay failed for window inspector")
	}
	return &WindowInspector{display: d}, nil
}

// CurrentWindow returns the focused window's class and title. The
// executable field is always left empty; _NET_WM_PID is not read.
func (w *WindowInspector) CurrentWindow() (platform.WindowInfo, error) {
	win := C.expando_get_active_window(w.display)

	var info platform.WindowInfo
	if class := C.expando_get_window_class(w.display, win); class != nil {
		info.Class = C.GoString(class)
		C.free(unsafe.Pointer(class))
	}
	if title := C.expando_get_window_title(w.display, win); title != nil {
		info.Title = C.GoString(title)
		C.free(unsafe.Pointer(title))
	}
	return info, nil
}

// Close releases the Xlib connection.
func (w *WindowInspector) Close() error {
	if w.display != nil {
		C.XCloseDisplay(w.display)
		w.display = nil
	}
	return nil
}

