package skeleton

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"
)

// Abstraction levels run from 1 (bare structure) to 10 (everything
// short of function bodies). Raising the level only ever adds detail.
const (
	MinAbstractLevel = 1
	MaxAbstractLevel = 10

	// levelVariables is the first level that shows plain variables,
	// arrays and (trimmed) initialized globals.
	levelVariables = 4

	// levelDocComments is the first level that keeps doc-style
	// comments; levelAllComments keeps every comment.
	levelDocComments = 7
	levelAllComments = 9
)

// Extractor reduces C sources to a declaration-level outline: includes
// and macros verbatim, aggregates as forward declarations, function
// definitions as prototypes. The level dial controls how much beyond
// that survives.
type Extractor struct {
	reg   *Registry
	level int
	log   zerolog.Logger
}

// NewExtractor builds an extractor clamped to the valid level range.
func NewExtractor(reg *Registry, level int, log zerolog.Logger) *Extractor {
	if level < MinAbstractLevel {
		level = MinAbstractLevel
	}
	if level > MaxAbstractLevel {
		level = MaxAbstractLevel
	}
	return &Extractor{reg: reg, level: level, log: log}
}

// Level returns the clamped abstraction level.
func (e *Extractor) Level() int { return e.level }

// Extract returns the outline of a C source file. When the grammar is
// unavailable or parsing fails outright, the original bytes come back
// unchanged.
func (e *Extractor) Extract(src []byte) []byte {
	g, ok := e.reg.Lookup(LangC)
	if !ok {
		e.log.Warn().Msg("c grammar unavailable, emitting file unchanged")
		return src
	}
	tree, err := parseTree(g, src)
	if err != nil || tree == nil {
		return src
	}
	defer tree.Close()

	var b strings.Builder
	e.visit(&b, src, tree.RootNode())
	return []byte(cleanupOutline(b.String(), e.level))
}

func (e *Extractor) visit(b *strings.Builder, src []byte, n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		e.emit(b, src, n.NamedChild(i))
	}
}

func (e *Extractor) emit(b *strings.Builder, src []byte, n *sitter.Node) {
	switch n.Type() {
	case "preproc_include", "preproc_def", "preproc_function_def", "preproc_call":
		writeLine(b, nodeText(src, n))

	case "preproc_if", "preproc_ifdef", "preproc_elif", "preproc_else":
		// The guarded content survives, the directives do not: an
		// outline reader cares about what exists, not when.
		e.visitGuarded(b, src, n)

	case "type_definition":
		e.emitTypedef(b, src, n)

	case "struct_specifier", "union_specifier", "enum_specifier":
		e.emitForward(b, src, n)

	case "declaration":
		e.emitDeclaration(b, src, n)

	case "function_definition":
		body := n.ChildByFieldName("body")
		if body == nil {
			writeLine(b, nodeText(src, n))
			return
		}
		sig := strings.TrimRight(string(src[n.StartByte():body.StartByte()]), " \t\n")
		writeLine(b, sig+";")

	case "comment":
		if e.keepComment(src, n) {
			writeLine(b, nodeText(src, n))
		}
	}
}

// visitGuarded walks the children of a conditional-compilation node,
// skipping its condition or name operand.
func (e *Extractor) visitGuarded(b *strings.Builder, src []byte, n *sitter.Node) {
	cond := n.ChildByFieldName("condition")
	if cond == nil {
		cond = n.ChildByFieldName("name")
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if cond != nil && c.StartByte() == cond.StartByte() && c.EndByte() == cond.EndByte() {
			continue
		}
		e.emit(b, src, c)
	}
}

func (e *Extractor) emitTypedef(b *strings.Builder, src []byte, n *sitter.Node) {
	var agg *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "struct_specifier", "union_specifier", "enum_specifier":
			if c.ChildByFieldName("body") != nil {
				agg = c
			}
		}
	}
	if agg == nil {
		writeLine(b, nodeText(src, n))
		return
	}

	alias := typedefAlias(src, n)
	if alias == "" {
		writeLine(b, nodeText(src, n))
		return
	}
	// The struct tag doubles as the alias for anonymous aggregates,
	// which is how "typedef struct { ... } Point;" round-trips to a
	// forward-declarable name.
	tag := alias
	if name := agg.ChildByFieldName("name"); name != nil {
		tag = nodeText(src, name)
	}
	writeLine(b, fmt.Sprintf("typedef %s %s %s;", aggregateKeyword(agg.Type()), tag, alias))
}

// typedefAlias finds the declared alias name of a type_definition,
// descending through pointer declarators if needed.
func typedefAlias(src []byte, n *sitter.Node) string {
	d := n.ChildByFieldName("declarator")
	for d != nil {
		if d.Type() == "type_identifier" {
			return nodeText(src, d)
		}
		d = d.ChildByFieldName("declarator")
	}
	return ""
}

func aggregateKeyword(nodeType string) string {
	switch nodeType {
	case "union_specifier":
		return "union"
	case "enum_specifier":
		return "enum"
	default:
		return "struct"
	}
}

// emitForward reduces a file-scope aggregate definition to a forward
// declaration. Members are never visited. Anonymous aggregates have
// nothing to forward-declare and vanish.
func (e *Extractor) emitForward(b *strings.Builder, src []byte, n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	writeLine(b, aggregateKeyword(n.Type())+" "+nodeText(src, name)+";")
}

func (e *Extractor) emitDeclaration(b *strings.Builder, src []byte, n *sitter.Node) {
	text := nodeText(src, n)
	switch {
	case containsKind(n, "function_declarator"):
		// Prototypes are the backbone of the outline at every level.
		writeLine(b, text)
	case isExtern(src, n):
		writeLine(b, text)
	case e.level < levelVariables:
		return
	case containsKind(n, "init_declarator"):
		writeLine(b, trimInitializer(text))
	default:
		writeLine(b, text)
	}
}

func containsKind(n *sitter.Node, kind string) bool {
	if n.Type() == kind {
		return true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if containsKind(n.NamedChild(i), kind) {
			return true
		}
	}
	return false
}

func isExtern(src []byte, n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "storage_class_specifier" && nodeText(src, c) == "extern" {
			return true
		}
	}
	return false
}

// trimInitializer cuts a declaration at its first "=", keeping the
// declared name and dropping the value.
func trimInitializer(text string) string {
	if i := strings.IndexByte(text, '='); i >= 0 {
		return strings.TrimRight(text[:i], " \t") + ";"
	}
	return text
}

func (e *Extractor) keepComment(src []byte, n *sitter.Node) bool {
	if e.level >= levelAllComments {
		return true
	}
	if e.level >= levelDocComments {
		return isDocComment(src[n.StartByte():n.EndByte()])
	}
	return false
}

func nodeText(src []byte, n *sitter.Node) string {
	return strings.TrimRight(string(src[n.StartByte():n.EndByte()]), "\n")
}

func writeLine(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	b.WriteString(s)
	b.WriteByte('\n')
}

// ---------------------------------------------------------------------------
// Outline cleanup
// ---------------------------------------------------------------------------

var (
	conditionalDirectiveRe = regexp.MustCompile(`^\s*#\s*(if|ifdef|ifndef|elif|else|endif)\b`)
	inlineBlockCommentRe   = regexp.MustCompile(`/\*.*?\*/`)
	blankRunRe             = regexp.MustCompile(`\n{3,}`)
)

// cleanupOutline is the final text pass over an extracted outline:
// residual conditional directives and inline comments go, array lines
// vanish at the structural levels and blank-line runs collapse.
func cleanupOutline(text string, level int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if conditionalDirectiveRe.MatchString(trimmed) {
			continue
		}
		if level < levelAllComments && !isCommentLine(trimmed) {
			line = stripInlineComments(line)
		}
		if level < levelVariables && strings.Contains(line, "[") {
			continue
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	joined := strings.Join(out, "\n")
	joined = blankRunRe.ReplaceAllString(joined, "\n\n")
	joined = strings.Trim(joined, "\n")
	if joined == "" {
		return ""
	}
	return joined + "\n"
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*")
}

func stripInlineComments(line string) string {
	line = inlineBlockCommentRe.ReplaceAllString(line, "")
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return line
}
