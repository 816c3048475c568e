package render

import (
	"context"
	"math/rand"
)

// RandomExtension picks uniformly among params.choices and renders
// positional args into the chosen string.
type RandomExtension struct {
	// Rand, if non-nil, is used instead of the package-level source.
	// Tests supply a seeded one for determinism.
	Rand *rand.Rand
}

func (RandomExtension) Name() string { return "random" }

func (r RandomExtension) Calculate(_ context.Context, params map[string]any, args []string) (string, bool, error) {
	raw, ok := params["choices"]
	if !ok {
		return "", false, nil
	}
	seq, ok := raw.([]any)
	if !ok {
		return "", false, nil
	}
	choices := make([]string, 0, len(seq))
	for _, c := range seq {
		s, ok := c.(string)
		if !ok {
			continue
		}
		choices = append(choices, s)
	}
	if len(choices) == 0 {
		return "", false, nil
	}

	var n int
	if r.Rand != nil {
		n = r.Rand.Intn(len(choices))
	} else {
		n = rand.Intn(len(choices))
	}
	return renderArgs(choices[n], args), true, nil
}
