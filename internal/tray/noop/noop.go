// Package noop implements engine.UI with no visible surface at all:
// notifications and menu requests are only logged. It is the UI backend
// for native mode and for the --console demo mode; no tray icon is shown.
package noop

import (
	"github.com/rs/zerolog/log"

	"github.com/dshills/expando/internal/action"
)

// UI is a no-op engine.UI.
type UI struct{}

// New returns a no-op UI.
func New() *UI { return &UI{} }

func (UI) Notify(message string) error {
	log.Info().Str("notification", message).Msg("noop: notify")
	return nil
}

func (UI) ShowMenu(items []action.MenuItem) error {
	log.Info().Int("items", len(items)).Msg("noop: show_menu (no tray surface)")
	return nil
}

func (UI) Cleanup() error { return nil }
