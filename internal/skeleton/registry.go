package skeleton

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Registry maps languages to their compiled grammars. Build it once at
// startup and hand the same instance to every transformer; grammar
// pointers are immutable and safe to share.
type Registry struct {
	grammars map[Lang]*sitter.Language
}

// NewRegistry returns a registry with every compiled-in grammar.
func NewRegistry() *Registry {
	return &Registry{grammars: map[Lang]*sitter.Language{
		LangJavaScript: javascript.GetLanguage(),
		LangTypeScript: typescript.GetLanguage(),
		LangTSX:        tsx.GetLanguage(),
		LangC:          c.GetLanguage(),
		LangCPP:        cpp.GetLanguage(),
		LangJava:       java.GetLanguage(),
		LangKotlin:     kotlin.GetLanguage(),
		LangPython:     python.GetLanguage(),
	}}
}

// EmptyRegistry returns a registry with no grammars. Transformers built
// on it pass every file through unchanged; tests use it to cover the
// degraded path.
func EmptyRegistry() *Registry {
	return &Registry{grammars: map[Lang]*sitter.Language{}}
}

// Lookup returns the grammar for a language, if registered.
func (r *Registry) Lookup(l Lang) (*sitter.Language, bool) {
	g, ok := r.grammars[l]
	return g, ok
}

// Languages returns the names of all registered grammars, sorted.
func (r *Registry) Languages() []string {
	names := make([]string, 0, len(r.grammars))
	for l := range r.grammars {
		names = append(names, l.String())
	}
	sort.Strings(names)
	return names
}
