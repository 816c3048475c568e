package render

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/expando/internal/match"
)

// cursorHint is the literal token marking the desired post-expansion
// caret position. Only its first occurrence in a template is honored.
const cursorHint = "$|$"

// varRef matches {{ name }} with optional surrounding whitespace.
var varRef = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// ResultKind discriminates the three shapes a render can produce.
type ResultKind int

const (
	ResultText ResultKind = iota
	ResultImage
	ResultError
)

// Result is the Renderer's output: a rendered string, an image path, or
// a marker that some extension failed and the expansion must be
// abandoned.
type Result struct {
	Kind      ResultKind
	Text      string
	ImagePath string
	// CursorRewind is the number of LEFT presses to apply after
	// injection, computed from the template's $|$ hint. Zero if absent.
	CursorRewind int
	Err          error
}

// Renderer turns a Match plus positional arguments into a Result,
// invoking the configured Extension for each declared variable in
// order.
type Renderer struct {
	extensions *Registry
}

// New builds a Renderer over the given extension registry.
func New(extensions *Registry) *Renderer {
	return &Renderer{extensions: extensions}
}

// Render evaluates m against args (positional arguments handed to every
// extension) and produces a Result. The Engine always passes nil, and
// passive mode goes through RenderPassive, which takes no arguments.
func (r *Renderer) Render(ctx context.Context, m match.Match, args []string) Result {
	if m.IsImage() {
		return Result{Kind: ResultImage, ImagePath: m.ImagePath}
	}

	bindings := make(map[string]string, len(m.Vars))
	for _, v := range m.Vars {
		ext, ok := r.extensions.Lookup(v.Extension)
		if !ok {
			return Result{Kind: ResultError, Err: fmt.Errorf("render: unknown extension %q", v.Extension)}
		}
		val, ok, err := ext.Calculate(ctx, v.Params, args)
		if err != nil {
			return Result{Kind: ResultError, Err: fmt.Errorf("render: extension %q for var %q: %w", v.Extension, v.Name, err)}
		}
		if !ok {
			val = ""
		}
		bindings[v.Name] = val
	}

	text := varRef.ReplaceAllStringFunc(m.Template, func(token string) string {
		name := varRef.FindStringSubmatch(token)[1]
		return bindings[name]
	})

	text = normalizeNewlines(text)

	text, rewind := extractCursorHint(text)

	return Result{Kind: ResultText, Text: text, CursorRewind: rewind}
}

// RenderPassive treats selected text itself as a template: unlike a
// configured Match it declares no {{var}} extensions, so this only
// normalizes newlines and extracts the cursor hint.
func (r *Renderer) RenderPassive(_ context.Context, text string) Result {
	text = normalizeNewlines(text)
	text, rewind := extractCursorHint(text)
	return Result{Kind: ResultText, Text: text, CursorRewind: rewind}
}

// normalizeNewlines converts CRLF to LF. It is idempotent: applying it
// twice yields the same string as applying it once.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// extractCursorHint removes the first occurrence of the cursor-hint
// token and returns the resulting string plus the number of LEFT presses
// needed to place the caret where the hint was.
func extractCursorHint(s string) (string, int) {
	idx := strings.Index(s, cursorHint)
	if idx < 0 {
		return s, 0
	}
	before := s[:idx]
	after := s[idx+len(cursorHint):]
	result := before + after
	rewind := uniseg.GraphemeClusterCount(after)
	return result, rewind
}
