// Package render implements the Renderer: it turns a Match plus its
// positional arguments into a RenderResult by evaluating each declared
// variable through a pluggable Extension and substituting {{name}}
// placeholders into the template.
package render

import "context"

// Extension computes one variable's value. calculate semantics from the
// spec: a returned ok == false means "the extension has nothing to
// contribute" (bind empty string, not an error); a non-nil error aborts
// the whole expansion.
type Extension interface {
	// Name is the string a match's `vars[].type` key selects this
	// extension by (e.g. "shell", "random").
	Name() string

	// Calculate evaluates the extension against params (the variable's
	// declared parameters) and args (the positional arguments passed to
	// Renderer.Render; the Engine passes none).
	Calculate(ctx context.Context, params map[string]any, args []string) (value string, ok bool, err error)
}

// Registry maps extension names to implementations. It is built once at
// startup from the configured extension set and is read-only thereafter,
// mirroring the Match Store's lifecycle.
type Registry struct {
	byName map[string]Extension
}

// NewRegistry builds a Registry from a list of extensions. A later entry
// with the same Name overwrites an earlier one.
func NewRegistry(exts ...Extension) *Registry {
	r := &Registry{byName: make(map[string]Extension, len(exts))}
	for _, e := range exts {
		r.byName[e.Name()] = e
	}
	return r
}

// Lookup returns the extension registered under name, if any.
func (r *Registry) Lookup(name string) (Extension, bool) {
	e, ok := r.byName[name]
	return e, ok
}
