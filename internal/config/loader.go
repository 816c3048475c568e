package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawDocument is one decoded config file plus the path it came from, used
// for error messages and deterministic override ordering.
type rawDocument struct {
	path string
	data map[string]any
}

// loadDocument reads and YAML-decodes a single config file into a
// generic map, the same decode-to-map-then-merge shape the Match Store
// loader uses for its own file, so a document can carry arbitrary global
// option keys alongside (or instead of) the filter_* keys a per-app
// override declares.
func loadDocument(path string) (rawDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return rawDocument{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return rawDocument{}, &ParseError{Path: path, Err: err}
	}
	return rawDocument{path: path, data: data}, nil
}

// loadDir loads default.yml (the base document) and every other
// *.yml/*.yaml file in dir (the per-application override candidates),
// sorted by filename so override precedence among equally-matching files
// is deterministic and reproducible across runs.
func loadDir(dir string) (base rawDocument, overrides []rawDocument, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return rawDocument{}, nil, ErrConfigDirNotFound
		}
		return rawDocument{}, nil, fmt.Errorf("config: read dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		doc, err := loadDocument(filepath.Join(dir, name))
		if err != nil {
			return rawDocument{}, nil, err
		}
		if name == "default.yml" || name == "default.yaml" {
			base = doc
			continue
		}
		overrides = append(overrides, doc)
	}

	if base.data == nil {
		return rawDocument{}, nil, ErrNoDefaultDocument
	}
	return base, overrides, nil
}
