package engine

import "errors"

// Engine errors.
var (
	// ErrRenderFailed indicates the Renderer returned ResultError for a
	// match; the expansion was abandoned before injection.
	ErrRenderFailed = errors.New("engine: render failed")

	// ErrNoClipboardContent indicates a passive-mode expansion found
	// nothing on the clipboard after the copy shortcut.
	ErrNoClipboardContent = errors.New("engine: no clipboard content")
)
