package skeleton

import (
	"slices"
	"sort"
)

// Span replaces the half-open byte range [Start, End) of a source
// buffer with Text. Spans produced by a single tree walk never overlap.
type Span struct {
	Start uint32
	End   uint32
	Text  string
}

// Apply splices spans into src and returns the result. Replacements
// run from the highest start offset down, so the byte positions of
// spans not yet applied stay valid throughout. The input slices are
// not modified.
func Apply(src []byte, spans []Span) []byte {
	if len(spans) == 0 {
		return src
	}
	sorted := slices.Clone(spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	out := slices.Clone(src)
	for _, sp := range sorted {
		if sp.Start > sp.End || int(sp.End) > len(out) {
			continue
		}
		var next []byte
		next = append(next, out[:sp.Start]...)
		next = append(next, sp.Text...)
		next = append(next, out[sp.End:]...)
		out = next
	}
	return out
}
