package skeleton

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransformer(t *testing.T) *Transformer {
	t.Helper()
	return NewTransformer(NewRegistry(), zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Language detection
// ---------------------------------------------------------------------------

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want Lang
	}{
		{"src/index.js", LangJavaScript},
		{"lib/mod.mjs", LangJavaScript},
		{"src/app.ts", LangTypeScript},
		{"src/App.tsx", LangTSX},
		{"src/Legacy.jsx", LangTSX},
		{"main.c", LangC},
		{"include/api.h", LangC},
		{"engine.cpp", LangCPP},
		{"Server.java", LangJava},
		{"Main.kt", LangKotlin},
		{"tool.py", LangPython},
		{"README.md", LangNone},
		{"Makefile", LangNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.path), "Detect(%q)", tt.path)
	}
}

func TestTransform_UnknownLanguagePassesThrough(t *testing.T) {
	tr := newTestTransformer(t)
	src := []byte("# Heading\n\nprose, not code\n")
	assert.Equal(t, src, tr.Transform("README.md", src))
}

func TestTransform_EmptyRegistryPassesThrough(t *testing.T) {
	tr := NewTransformer(EmptyRegistry(), zerolog.Nop())
	src := []byte("function add(a,b){return a+b;}")
	assert.Equal(t, src, tr.Transform("a.js", src))
}

// ---------------------------------------------------------------------------
// Structured strategy
// ---------------------------------------------------------------------------

func TestStructured_HollowsFunctionBody(t *testing.T) {
	tr := newTestTransformer(t)

	got := string(tr.Transform("math.js", []byte("function add(a,b){return a+b;}")))

	assert.Equal(t, "function add(a,b){ /* ... */ }", got)
}

func TestStructured_SignatureSurvivesByteForByte(t *testing.T) {
	tr := newTestTransformer(t)
	src := "export async function fetchUsers(page = 1, {limit} = {}) {\n  const r = await api.get(page, limit);\n  return r.data;\n}\n"

	got := string(tr.Transform("api.ts", []byte(src)))

	assert.Contains(t, got, "export async function fetchUsers(page = 1, {limit} = {}) { /* ... */ }")
	assert.NotContains(t, got, "api.get")
}

func TestStructured_MovesDocCommentInsideBody(t *testing.T) {
	tr := newTestTransformer(t)
	src := "/** Adds two numbers. */\nfunction add(a, b) {\n  return a + b;\n}\n"

	got := string(tr.Transform("math.js", []byte(src)))

	assert.Equal(t, "function add(a, b) { /** Adds two numbers. */ }\n", got)
}

func TestStructured_MultiLineDocComment(t *testing.T) {
	tr := newTestTransformer(t)
	src := strings.Join([]string{
		"/**",
		" * Multiplies two numbers.",
		" * @returns {number}",
		" */",
		"function mul(a, b) {",
		"  return a * b;",
		"}",
		"",
	}, "\n")

	got := string(tr.Transform("math.js", []byte(src)))

	assert.Contains(t, got, "function mul(a, b) { /**")
	assert.Contains(t, got, "@returns {number}")
	assert.NotContains(t, got, "return a * b")
	// The doc block must not remain above the function too.
	require.Equal(t, 1, strings.Count(got, "Multiplies"))
}

func TestStructured_ArrowAndMethod(t *testing.T) {
	tr := newTestTransformer(t)
	src := strings.Join([]string{
		"const mul = (a, b) => {",
		"  return a * b;",
		"};",
		"",
		"class Calc {",
		"  add(a, b) {",
		"    return a + b;",
		"  }",
		"}",
		"",
	}, "\n")

	got := string(tr.Transform("calc.js", []byte(src)))

	assert.Contains(t, got, "const mul = (a, b) => { /* ... */ };")
	assert.Contains(t, got, "add(a, b) { /* ... */ }")
	assert.NotContains(t, got, "return")
}

func TestStructured_ConciseArrowUntouched(t *testing.T) {
	tr := newTestTransformer(t)
	src := []byte("const double = x => x * 2;\n")

	assert.Equal(t, src, tr.Transform("util.js", src))
}

func TestStructured_AlreadyEmptyBlockUntouched(t *testing.T) {
	tr := newTestTransformer(t)
	src := []byte("function noop() {}\n")

	assert.Equal(t, src, tr.Transform("noop.js", src))
}

func TestStructured_Idempotent(t *testing.T) {
	tr := newTestTransformer(t)
	src := []byte(strings.Join([]string{
		"/** Entry point. */",
		"export function main() {",
		"  run();",
		"}",
		"",
		"const helper = () => {",
		"  return 1;",
		"};",
		"",
	}, "\n"))

	once := tr.Transform("main.ts", src)
	twice := tr.Transform("main.ts", once)

	require.Equal(t, string(once), string(twice))
}

func TestStructured_ParseFailureAppendsMarker(t *testing.T) {
	tr := newTestTransformer(t)
	src := "function broken((( {\n"

	got := string(tr.Transform("broken.js", []byte(src)))

	assert.True(t, strings.HasPrefix(got, src), "original content must be preserved")
	assert.Contains(t, got, parseFailedMarker)
}

func TestStructured_TSX(t *testing.T) {
	tr := newTestTransformer(t)
	src := "const App = () => {\n  return <div>hello</div>;\n};\n"

	got := string(tr.Transform("App.tsx", []byte(src)))

	assert.Contains(t, got, "const App = () => { /* ... */ };")
	assert.NotContains(t, got, "<div>")
}

// ---------------------------------------------------------------------------
// Generic strategy
// ---------------------------------------------------------------------------

func TestGeneric_C(t *testing.T) {
	tr := newTestTransformer(t)
	src := "int add(int a, int b) {\n    return a + b;\n}\n"

	got := string(tr.Transform("math.c", []byte(src)))

	assert.Equal(t, "int add(int a, int b) { /* ... */ }\n", got)
}

func TestGeneric_Java(t *testing.T) {
	tr := newTestTransformer(t)
	src := strings.Join([]string{
		"public class Greeter {",
		"    private final String name;",
		"",
		"    public Greeter(String name) {",
		"        this.name = name;",
		"    }",
		"",
		"    public String greet() {",
		"        return \"hello \" + name;",
		"    }",
		"}",
		"",
	}, "\n")

	got := string(tr.Transform("Greeter.java", []byte(src)))

	assert.Contains(t, got, "public Greeter(String name) { /* ... */ }")
	assert.Contains(t, got, "public String greet() { /* ... */ }")
	assert.Contains(t, got, "private final String name;")
	assert.NotContains(t, got, "this.name = name")
}

func TestGeneric_Kotlin(t *testing.T) {
	tr := newTestTransformer(t)
	src := "fun add(a: Int, b: Int): Int { return a + b }\n"

	got := string(tr.Transform("Math.kt", []byte(src)))

	assert.Contains(t, got, "fun add(a: Int, b: Int): Int { /* ... */ }")
	assert.NotContains(t, got, "return a + b")
}

func TestGeneric_Python(t *testing.T) {
	tr := newTestTransformer(t)
	src := "def add(a, b):\n    return a + b\n"

	got := string(tr.Transform("math.py", []byte(src)))

	assert.Equal(t, "def add(a, b):\n    pass  # ...\n", got)
}

func TestGeneric_PythonClassShellSurvives(t *testing.T) {
	tr := newTestTransformer(t)
	src := strings.Join([]string{
		"class Stack:",
		"    def __init__(self):",
		"        self.items = []",
		"",
		"    def push(self, item):",
		"        self.items.append(item)",
		"",
	}, "\n")

	got := string(tr.Transform("stack.py", []byte(src)))

	assert.Contains(t, got, "class Stack:")
	assert.Contains(t, got, "def __init__(self):")
	assert.Contains(t, got, "def push(self, item):")
	assert.NotContains(t, got, "self.items")
	assert.Equal(t, 2, strings.Count(got, indentPlaceholder))
}

func TestGeneric_NoRecursionIntoReplacedBodies(t *testing.T) {
	tr := newTestTransformer(t)
	src := strings.Join([]string{
		"def outer():",
		"    def inner():",
		"        return 1",
		"    return inner",
		"",
	}, "\n")

	got := string(tr.Transform("nested.py", []byte(src)))

	// The outer body is replaced exactly once; the nested definition
	// disappears with it instead of producing a second placeholder.
	assert.Equal(t, 1, strings.Count(got, indentPlaceholder))
	assert.NotContains(t, got, "inner")
}

// ---------------------------------------------------------------------------
// Span splicing
// ---------------------------------------------------------------------------

func TestApply_DescendingOrderKeepsOffsetsValid(t *testing.T) {
	src := []byte("aaa bbb ccc")
	spans := []Span{
		{Start: 0, End: 3, Text: "X"},
		{Start: 8, End: 11, Text: "Z"},
		{Start: 4, End: 7, Text: "Y"},
	}

	assert.Equal(t, "X Y Z", string(Apply(src, spans)))
}

func TestApply_EmptyReplacementDeletes(t *testing.T) {
	src := []byte("keep DROP keep")
	got := Apply(src, []Span{{Start: 4, End: 9, Text: ""}})
	assert.Equal(t, "keep keep", string(got))
}

func TestApply_NoSpansReturnsInput(t *testing.T) {
	src := []byte("unchanged")
	assert.Equal(t, src, Apply(src, nil))
}
