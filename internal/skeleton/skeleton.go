// Package skeleton rewrites source files into compact structural
// outlines: signatures, types and doc comments survive while function
// bodies collapse to placeholders. Rewrites are span splices over the
// original bytes, so everything outside a replaced range is preserved
// exactly.
package skeleton

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"
)

// parseFailedMarker is appended when a structured-family file cannot be
// parsed; the original content is kept above it.
const parseFailedMarker = "// NOTE: file could not be parsed, content preserved as-is"

// Transformer hollows out function bodies. It is safe for concurrent
// use; each call builds its own parser.
type Transformer struct {
	reg *Registry
	log zerolog.Logger

	mu     sync.Mutex
	warned map[Lang]bool
}

// NewTransformer builds a transformer over a grammar registry.
func NewTransformer(reg *Registry, log zerolog.Logger) *Transformer {
	return &Transformer{reg: reg, log: log, warned: make(map[Lang]bool)}
}

// Transform rewrites src according to the language detected from path.
// Unknown languages and missing grammars pass through unchanged; a
// transform never fails.
func (t *Transformer) Transform(path string, src []byte) []byte {
	lang := Detect(path)
	switch lang.Strategy() {
	case StrategyStructured:
		return t.structured(lang, src)
	case StrategyGeneric:
		return t.generic(lang, src)
	default:
		return src
	}
}

// grammar resolves a language's grammar, warning once per language when
// it is missing.
func (t *Transformer) grammar(lang Lang) (*sitter.Language, bool) {
	g, ok := t.reg.Lookup(lang)
	if !ok {
		t.mu.Lock()
		if !t.warned[lang] {
			t.warned[lang] = true
			t.log.Warn().Str("language", lang.String()).Msg("no grammar registered, files pass through unchanged")
		}
		t.mu.Unlock()
	}
	return g, ok
}

func parseTree(g *sitter.Language, src []byte) (*sitter.Tree, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(g)
	return p.ParseCtx(context.Background(), nil, src)
}

// ---------------------------------------------------------------------------
// Structured strategy (ECMAScript family)
// ---------------------------------------------------------------------------

// structuredFuncKinds are the node types whose block bodies get
// hollowed out in the ECMAScript family.
var structuredFuncKinds = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"generator_function_declaration": true,
	"arrow_function":                 true,
	"method_definition":              true,
}

func (t *Transformer) structured(lang Lang, src []byte) []byte {
	g, ok := t.grammar(lang)
	if !ok {
		return src
	}
	tree, err := parseTree(g, src)
	if err != nil || tree == nil {
		return appendMarker(src)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return appendMarker(src)
	}

	var spans []Span
	collectStructured(src, root, &spans)
	return Apply(src, spans)
}

func appendMarker(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(parseFailedMarker)+2)
	out = append(out, src...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, parseFailedMarker...)
	out = append(out, '\n')
	return out
}

func collectStructured(src []byte, n *sitter.Node, spans *[]Span) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if structuredFuncKinds[child.Type()] && hollowFunction(src, child, spans) {
			continue
		}
		collectStructured(src, child, spans)
	}
}

// hollowFunction records the spans for one function-like node: the
// block body becomes a one-line placeholder, and any doc comments
// attached above the enclosing statement move inside the braces so the
// skeleton keeps the API description next to the signature. Returns
// false when the node has no block body (concise arrows), in which
// case the caller keeps descending.
func hollowFunction(src []byte, fn *sitter.Node, spans *[]Span) bool {
	body := fn.ChildByFieldName("body")
	if body == nil || body.Type() != "statement_block" {
		return false
	}
	// A body that already holds no statements stays untouched, which
	// is what makes a second pass over skeleton output a no-op.
	if !hasStatements(body) {
		return true
	}

	inner := "/* ... */"
	if doc, start, end, ok := leadingDocs(src, fn); ok {
		inner = doc
		ds, de := expandDocSpan(src, start, end)
		*spans = append(*spans, Span{Start: ds, End: de, Text: ""})
	}
	*spans = append(*spans, Span{
		Start: body.StartByte(),
		End:   body.EndByte(),
		Text:  "{ " + inner + " }",
	})
	return true
}

// hasStatements reports whether a statement_block holds anything other
// than comments.
func hasStatements(block *sitter.Node) bool {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		if block.NamedChild(i).Type() != "comment" {
			return true
		}
	}
	return false
}

// docAnchor climbs from a function node to the statement it belongs
// to: docs for "export const f = () => {...}" sit above the export,
// not above the arrow.
func docAnchor(fn *sitter.Node) *sitter.Node {
	n := fn
	for p := n.Parent(); p != nil; p = n.Parent() {
		switch p.Type() {
		case "program", "statement_block", "class_body":
			return n
		}
		n = p
	}
	return n
}

// leadingDocs returns the contiguous run of doc comments directly
// above the function's statement, with their byte range in src.
func leadingDocs(src []byte, fn *sitter.Node) (string, uint32, uint32, bool) {
	anchor := docAnchor(fn)

	var first, last *sitter.Node
	for prev := anchor.PrevNamedSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevNamedSibling() {
		if !isDocComment(src[prev.StartByte():prev.EndByte()]) {
			break
		}
		if last == nil {
			last = prev
		}
		first = prev
	}
	if first == nil {
		return "", 0, 0, false
	}
	start, end := first.StartByte(), last.EndByte()
	return string(src[start:end]), start, end, true
}

func isDocComment(text []byte) bool {
	s := strings.TrimSpace(string(text))
	return strings.HasPrefix(s, "/**") || strings.HasPrefix(s, "/*!") || strings.HasPrefix(s, "///")
}

// expandDocSpan widens a doc comment's byte range to swallow its line
// indentation and the newline after it, so deleting it leaves no blank
// hole behind.
func expandDocSpan(src []byte, start, end uint32) (uint32, uint32) {
	for start > 0 && (src[start-1] == ' ' || src[start-1] == '\t') {
		start--
	}
	for end < uint32(len(src)) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	if end < uint32(len(src)) && src[end] == '\n' {
		end++
	}
	return start, end
}

// ---------------------------------------------------------------------------
// Generic strategy (brace and indentation families)
// ---------------------------------------------------------------------------

type genericSpec struct {
	defKinds  map[string]bool
	bodyKinds map[string]bool

	// indent marks indentation-delimited bodies, which take a pass
	// placeholder instead of a brace pair.
	indent bool
}

const (
	bracePlaceholder  = "{ /* ... */ }"
	indentPlaceholder = "pass  # ..."
)

var genericSpecs = map[Lang]genericSpec{
	LangC: {
		defKinds:  kinds("function_definition"),
		bodyKinds: kinds("compound_statement"),
	},
	LangCPP: {
		defKinds:  kinds("function_definition"),
		bodyKinds: kinds("compound_statement"),
	},
	LangJava: {
		defKinds:  kinds("method_declaration", "constructor_declaration"),
		bodyKinds: kinds("block", "constructor_body"),
	},
	LangKotlin: {
		defKinds:  kinds("function_declaration", "secondary_constructor"),
		bodyKinds: kinds("function_body"),
	},
	LangPython: {
		defKinds:  kinds("function_definition"),
		bodyKinds: kinds("block"),
		indent:    true,
	},
}

func kinds(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func (t *Transformer) generic(lang Lang, src []byte) []byte {
	g, ok := t.grammar(lang)
	if !ok {
		return src
	}
	spec, ok := genericSpecs[lang]
	if !ok {
		return src
	}
	tree, err := parseTree(g, src)
	if err != nil || tree == nil {
		return src
	}
	defer tree.Close()

	var spans []Span
	collectGeneric(spec, tree.RootNode(), &spans)
	return Apply(src, spans)
}

func collectGeneric(spec genericSpec, n *sitter.Node, spans *[]Span) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if spec.defKinds[child.Type()] {
			if body := findBody(spec, child); body != nil {
				text := bracePlaceholder
				if spec.indent {
					text = indentPlaceholder
				}
				*spans = append(*spans, Span{Start: body.StartByte(), End: body.EndByte(), Text: text})
				// Recorded bodies are final: nothing inside them
				// is visited again.
				continue
			}
		}
		collectGeneric(spec, child, spans)
	}
}

// findBody locates a definition's body node by field name first, then
// by scanning child types. Indentation families fall back to the last
// named child.
func findBody(spec genericSpec, def *sitter.Node) *sitter.Node {
	if b := def.ChildByFieldName("body"); b != nil && spec.bodyKinds[b.Type()] {
		return b
	}
	for i := 0; i < int(def.NamedChildCount()); i++ {
		if c := def.NamedChild(i); spec.bodyKinds[c.Type()] {
			return c
		}
	}
	if spec.indent && def.NamedChildCount() > 0 {
		return def.NamedChild(int(def.NamedChildCount()) - 1)
	}
	return nil
}
