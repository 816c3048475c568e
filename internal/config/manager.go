// Package config implements internal/engine.ConfigProvider: a default
// config document plus zero or more per-application override documents,
// selected by matching the focused window's title/class/executable
// against each override's filter_* patterns, in the style of the
// teacher's internal/config/layer DeepMerge-based layering but over
// just two layers (default, active override) instead of an arbitrary
// named-layer stack.
package config

import (
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dshills/expando/internal/config/layer"
	"github.com/dshills/expando/internal/engine"
	"github.com/dshills/expando/internal/platform"
)

// override is one per-application config document: the filters that
// select it plus the raw option keys to merge over the default document
// when it matches.
type override struct {
	path    string
	titleRe *regexp.Regexp
	classRe *regexp.Regexp
	execRe  *regexp.Regexp
	data    map[string]any
}

// matches reports whether every filter this override declares matches
// the focused window; an override with no filters at all never matches
// (it would otherwise apply to everything, silently shadowing the
// default document).
func (o override) matches(win platform.WindowInfo) bool {
	if o.titleRe == nil && o.classRe == nil && o.execRe == nil {
		return false
	}
	if o.titleRe != nil && !o.titleRe.MatchString(win.Title) {
		return false
	}
	if o.classRe != nil && !o.classRe.MatchString(win.Class) {
		return false
	}
	if o.execRe != nil && !o.execRe.MatchString(win.Executable) {
		return false
	}
	return true
}

// Manager loads a default document and its per-application overrides
// from a directory and resolves the effective engine.Config for the
// currently focused window on every ActiveConfig call.
type Manager struct {
	inspector platform.WindowInspector
	baseData  map[string]any
	def       engine.Config
	overrides []override
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithWindowInspector supplies the per-application window lookup.
// Without one, ActiveConfig always returns the default config.
func WithWindowInspector(w platform.WindowInspector) Option {
	return func(m *Manager) { m.inspector = w }
}

// New loads dir/default.yml plus every other *.yml/*.yaml file in dir as
// an override candidate, and returns a Manager ready to serve
// engine.ConfigProvider calls.
func New(dir string, opts ...Option) (*Manager, error) {
	base, rawOverrides, err := loadDir(dir)
	if err != nil {
		return nil, err
	}

	m := &Manager{baseData: base.data}
	for _, opt := range opts {
		opt(m)
	}

	m.def = decodeConfig(base.data, engine.DefaultConfig())

	for _, doc := range rawOverrides {
		ov, err := newOverride(doc)
		if err != nil {
			return nil, err
		}
		m.overrides = append(m.overrides, ov)
	}
	return m, nil
}

func newOverride(doc rawDocument) (override, error) {
	ov := override{path: doc.path, data: doc.data}

	compile := func(key string) (*regexp.Regexp, error) {
		pattern, ok := getString(doc.data, key)
		if !ok || pattern == "" {
			return nil, nil
		}
		return regexp.Compile(pattern)
	}

	var err error
	if ov.titleRe, err = compile("filter_title"); err != nil {
		return override{}, &ParseError{Path: doc.path, Err: err}
	}
	if ov.classRe, err = compile("filter_class"); err != nil {
		return override{}, &ParseError{Path: doc.path, Err: err}
	}
	if ov.execRe, err = compile("filter_exec"); err != nil {
		return override{}, &ParseError{Path: doc.path, Err: err}
	}
	return ov, nil
}

// DefaultConfig returns the config decoded from default.yml, without any
// window override applied.
func (m *Manager) DefaultConfig() engine.Config {
	return m.def
}

// ActiveConfig resolves the config for the currently focused window: the
// first override (in sorted file-name order) whose filters match wins,
// merged over the default document; a WindowInspector error or no
// inspector at all falls back to the default config.
func (m *Manager) ActiveConfig() engine.Config {
	if m.inspector == nil {
		return m.def
	}

	win, err := m.inspector.CurrentWindow()
	if err != nil {
		log.Warn().Err(err).Msg("config: could not inspect focused window, using default config")
		return m.def
	}

	for _, ov := range m.overrides {
		if !ov.matches(win) {
			continue
		}
		merged := layer.DeepMerge(layer.Clone(m.baseData), ov.data)
		return decodeConfig(merged, m.def)
	}
	return m.def
}

func getString(data map[string]any, key string) (string, bool) {
	v, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func getBool(data map[string]any, key string) (bool, bool) {
	v, ok := data[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// getMillis reads an integer/float YAML scalar as a millisecond count.
// YAML decodes unsuffixed numbers as int or float64 depending on
// whether they carry a decimal point, so both are accepted.
func getMillis(data map[string]any, key string) (time.Duration, bool) {
	v, ok := data[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return time.Duration(n) * time.Millisecond, true
	case int64:
		return time.Duration(n) * time.Millisecond, true
	case float64:
		return time.Duration(n) * time.Millisecond, true
	default:
		return 0, false
	}
}

// decodeConfig reads the recognized option keys out of a merged raw
// document into an engine.Config, leaving any key it doesn't find (or
// finds with the wrong YAML type) at fallback's value rather than
// failing the whole document over one bad key.
func decodeConfig(data map[string]any, fallback engine.Config) engine.Config {
	cfg := fallback

	if s, ok := getString(data, "backend"); ok {
		switch s {
		case "clipboard":
			cfg.Backend = engine.BackendClipboard
		case "inject":
			cfg.Backend = engine.BackendInject
		default:
			log.Warn().Str("backend", s).Msg("config: unknown backend, keeping previous value")
		}
	}
	if b, ok := getBool(data, "enable_active"); ok {
		cfg.EnableActive = b
	}
	if b, ok := getBool(data, "enable_passive"); ok {
		cfg.EnablePassive = b
	}
	if b, ok := getBool(data, "preserve_clipboard"); ok {
		cfg.PreserveClipboard = b
	}
	if s, ok := getString(data, "paste_shortcut"); ok {
		cfg.PasteShortcut = s
	}
	if d, ok := getMillis(data, "action_noop_interval"); ok {
		cfg.ActionNoopInterval = d
	}
	if d, ok := getMillis(data, "restore_clipboard_delay"); ok {
		cfg.RestoreClipboardDelay = d
	}
	return cfg
}
