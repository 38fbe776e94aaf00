package schema

import (
	"fmt"
	"strings"
)

// Retrieve navigates a tree-shaped value (nested maps and slices as produced
// by a JSON decode) using a dotted-path key such as
// "uploaded_spectra.observer". At each step:
//   - a map is descended by the next path segment,
//   - a slice fans out, collecting the lookup result from every element.
//
// The second return value is false when any segment is missing. Callers that
// want a default on missing keys handle that themselves.
func Retrieve(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	head, rest, _ := strings.Cut(path, ".")

	switch node := v.(type) {
	case map[string]any:
		child, ok := node[head]
		if !ok {
			return nil, false
		}
		return Retrieve(child, rest)
	case Record:
		return Retrieve(map[string]any(node), path)
	case []any:
		out := make([]any, 0, len(node))
		for _, el := range node {
			got, ok := Retrieve(el, path)
			if !ok {
				return nil, false
			}
			out = append(out, got)
		}
		return out, true
	default:
		return nil, false
	}
}

// RetrieveAll looks up several dotted-path keys at once, substituting def for
// missing ones. The returned slice of missing keys lets callers warn about
// them without failing the whole lookup.
func RetrieveAll(v any, paths []string, def any) (map[string]any, []string) {
	out := make(map[string]any, len(paths))
	var missing []string
	for _, p := range paths {
		got, ok := Retrieve(v, p)
		if !ok {
			out[p] = def
			missing = append(missing, p)
			continue
		}
		out[p] = got
	}
	return out, missing
}

// FormatCoord renders an RA or Dec value for table output.
func FormatCoord(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
