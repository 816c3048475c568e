package match

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store is the ordered, read-only set of matches built at startup. Order
// is significant: the Matcher's tie-break rule prefers the match declared
// first among equal-length triggers, and Store preserves declaration
// order from the file(s) it was loaded from.
type Store struct {
	matches []Match
}

// NewStore builds a Store from an already-decoded slice of matches,
// preserving order.
func NewStore(matches []Match) *Store {
	cp := make([]Match, len(matches))
	copy(cp, matches)
	return &Store{matches: cp}
}

// Matches returns the ordered match list. Callers must not mutate it.
func (s *Store) Matches() []Match {
	return s.matches
}

// Len reports how many matches the store holds.
func (s *Store) Len() int {
	return len(s.matches)
}

// fileRecord mirrors one entry of the match file's top-level `matches:`
// sequence.
type fileRecord struct {
	Trigger   string         `yaml:"trigger" json:"trigger"`
	Replace   string         `yaml:"replace" json:"replace"`
	ImagePath string         `yaml:"image_path" json:"image_path"`
	Word      bool           `yaml:"word" json:"word"`
	Propagate bool           `yaml:"propagate_case" json:"propagate_case"`
	Clipboard bool           `yaml:"force_clipboard" json:"force_clipboard"`
	Vars      []fileVariable `yaml:"vars" json:"vars"`
}

type fileVariable struct {
	Name      string         `yaml:"name" json:"name"`
	Extension string         `yaml:"type" json:"type"`
	Params    map[string]any `yaml:"params" json:"params"`
}

// fileDocument mirrors the top-level match file: only the `matches:`
// sequence is decoded; any other top-level keys are ignored.
type fileDocument struct {
	Matches []fileRecord `yaml:"matches" json:"matches"`
}

// LoadFile reads a match file and returns its Store. The file's extension
// selects the decoder: ".json" decodes as JSON, anything else (by
// convention ".yml"/".yaml") decodes as YAML. Both formats decode into
// the same record shape, so a match set can be authored in either.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("match: read %s: %w", path, err)
	}
	return LoadBytes(raw, path)
}

// LoadBytes decodes raw match-file content. hint is the originating path
// or a bare extension like ".json", used only to pick the decoder.
func LoadBytes(raw []byte, hint string) (*Store, error) {
	var doc fileDocument
	if strings.EqualFold(filepath.Ext(hint), ".json") {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("match: parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("match: parse yaml: %w", err)
		}
	}

	matches := make([]Match, 0, len(doc.Matches))
	for i, rec := range doc.Matches {
		m, err := rec.toMatch()
		if err != nil {
			return nil, fmt.Errorf("match: entry %d (%q): %w", i, rec.Trigger, err)
		}
		matches = append(matches, m)
	}
	return NewStore(matches), nil
}

func (r fileRecord) toMatch() (Match, error) {
	if r.Trigger == "" {
		return Match{}, fmt.Errorf("empty trigger")
	}
	m := Match{
		Trigger:        r.Trigger,
		WordBoundary:   r.Word,
		PropagateCase:  r.Propagate,
		ForceClipboard: r.Clipboard,
	}
	switch {
	case r.ImagePath != "":
		m.Content = ContentImage
		m.ImagePath = r.ImagePath
	default:
		m.Content = ContentText
		m.Template = r.Replace
	}
	for _, v := range r.Vars {
		if v.Name == "" {
			return Match{}, fmt.Errorf("variable with empty name")
		}
		if v.Extension == "" {
			return Match{}, fmt.Errorf("variable %q missing extension type", v.Name)
		}
		m.Vars = append(m.Vars, Variable{
			Name:      v.Name,
			Extension: v.Extension,
			Params:    v.Params,
		})
	}
	return m, nil
}
