package render

import (
	"context"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONExtension treats args[0] as a JSON document. If params.set is
// given (a map of dotted path -> value), each entry is applied via sjson
// first, letting a match build up a modified document. The result is
// then read back with params.path via gjson; if path is absent, the
// (possibly sjson-modified) document itself is returned.
type JSONExtension struct{}

func (JSONExtension) Name() string { return "json" }

func (JSONExtension) Calculate(_ context.Context, params map[string]any, args []string) (string, bool, error) {
	if len(args) == 0 {
		return "", false, nil
	}
	doc := args[0]

	if set, ok := params["set"].(map[string]any); ok {
		for path, value := range set {
			updated, err := sjson.Set(doc, path, value)
			if err != nil {
				return "", false, err
			}
			doc = updated
		}
	}

	path, ok := params["path"].(string)
	if !ok || path == "" {
		return doc, true, nil
	}

	res := gjson.Get(doc, path)
	if !res.Exists() {
		return "", false, nil
	}
	return res.String(), true, nil
}
