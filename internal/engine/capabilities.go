package engine

import (
	"context"

	"github.com/dshills/expando/internal/action"
	"github.com/dshills/expando/internal/match"
	"github.com/dshills/expando/internal/render"
)

// Keyboard is the synchronous keystroke-synthesis capability the Engine
// invokes during an expansion.
type Keyboard interface {
	DeleteString(n int) error
	SendString(s string) error
	SendEnter() error
	MoveCursorLeft(n int) error
	TriggerCopy() error
	TriggerPaste(shortcut string) error
}

// Clipboard is the text/image clipboard capability. GetClipboard's
// second return reports whether the clipboard held readable text.
type Clipboard interface {
	GetClipboard() (string, bool)
	SetClipboard(s string) error
	SetClipboardImage(path string) error
}

// ConfigProvider resolves the effective Config for the currently focused
// window. DefaultConfig returns the configuration with no window
// override applied; the Engine itself only calls ActiveConfig.
type ConfigProvider interface {
	DefaultConfig() Config
	ActiveConfig() Config
}

// UI is the tray/notification capability.
type UI interface {
	Notify(message string) error
	ShowMenu(items []action.MenuItem) error
	Cleanup() error
}

// Renderer abstracts internal/render.Renderer so the Engine can be
// tested against an in-memory fake without constructing a real extension
// registry.
type Renderer interface {
	Render(ctx context.Context, m match.Match, args []string) render.Result
	RenderPassive(ctx context.Context, text string) render.Result
}
