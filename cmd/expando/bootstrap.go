package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// defaultConfigYAML is the default.yml expando writes on first run, so a
// fresh config-dir isn't an immediate ErrNoDefaultDocument. Values match
// engine.DefaultConfig so a freshly bootstrapped install behaves
// identically to running with no config directory at all.
const defaultConfigYAML = `# expando default configuration.
# Per-application overrides go in their own *.yml files in this same
# directory, each declaring filter_title/filter_class/filter_exec to
# select which focused window it applies to.
backend: inject
enable_active: true
enable_passive: true
preserve_clipboard: true
paste_shortcut: CTRL+V
action_noop_interval: 300
restore_clipboard_delay: 50
`

// defaultMatchesYAML is the matches.yml expando writes on first run: one
// harmless example trigger so --matches's default path isn't empty.
const defaultMatchesYAML = `matches:
  - trigger: ":expando"
    replace: "Hello from expando!"
`

// ensureDefaults creates configDir and matchesPath with starter content
// if they don't already exist, the way a first-run wizard would, but
// without any interactive prompt: a missing config directory is far more
// likely to mean "never run before" than "deliberately misconfigured".
func ensureDefaults(configDir, matchesPath string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	defaultYML := filepath.Join(configDir, "default.yml")
	if _, err := os.Stat(defaultYML); os.IsNotExist(err) {
		log.Info().Str("path", defaultYML).Msg("expando: writing starter default.yml")
		if err := os.WriteFile(defaultYML, []byte(defaultConfigYAML), 0o644); err != nil {
			return err
		}
	}

	if _, err := os.Stat(matchesPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(matchesPath), 0o755); err != nil {
			return err
		}
		log.Info().Str("path", matchesPath).Msg("expando: writing starter matches.yml")
		if err := os.WriteFile(matchesPath, []byte(defaultMatchesYAML), 0o644); err != nil {
			return err
		}
	}

	return nil
}
