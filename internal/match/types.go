// Package match holds the Match Store: the ordered set of triggers loaded
// from configuration, and the types that describe a single match's
// content, variables, and rendering flags. The store is built once at
// startup (or on config reload) and is read-only thereafter.
package match

// ContentKind discriminates the two shapes a Match's content can take.
type ContentKind int

const (
	// ContentText renders a template with {{var}} substitution.
	ContentText ContentKind = iota
	// ContentImage pastes an image file unchanged.
	ContentImage
)

// Variable is a single {{name}} binding, computed by invoking the named
// extension with its params against the render's positional args.
type Variable struct {
	Name      string
	Extension string
	Params    map[string]any
	Args      []string
}

// Match is an immutable record describing one configured trigger. A zero
// Match is never valid on its own; Trigger must be non-empty.
type Match struct {
	Trigger        string
	Content        ContentKind
	Template       string // valid when Content == ContentText
	ImagePath      string // valid when Content == ContentImage
	Vars           []Variable
	WordBoundary   bool
	PropagateCase  bool
	ForceClipboard bool
}

// IsText reports whether this match renders a text template.
func (m Match) IsText() bool { return m.Content == ContentText }

// IsImage reports whether this match pastes an image.
func (m Match) IsImage() bool { return m.Content == ContentImage }
