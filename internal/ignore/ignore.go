// Package ignore decides which discovered paths are excluded from a
// snapshot and why. Rules are evaluated in a fixed precedence order so
// that a path skipped for several reasons always reports the same one.
package ignore

import (
	"path"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Reason identifies why a path was excluded. Reasons are stable strings:
// they appear in skip records, stats breakdowns and JSON output.
type Reason string

const (
	ReasonDirectory Reason = "ignored-directory"
	ReasonExtension Reason = "ignored-extension"
	ReasonPattern   Reason = "ignored-pattern"
	ReasonExclude   Reason = "external-exclude"
	ReasonBinary    Reason = "binary-file"
	ReasonHidden    Reason = "hidden-file"
)

// Matcher is an externally supplied exclusion predicate, typically built
// from a .gitignore file. The engine treats it as opaque.
type Matcher interface {
	MatchesPath(path string) bool
}

// Config holds the rule sets an Engine evaluates. All rules operate on
// slash-separated paths relative to the snapshot root.
type Config struct {
	// Directories are names excluded wherever they appear as a path
	// segment (e.g. "node_modules" excludes "a/node_modules/b.js").
	Directories []string

	// Extensions are leaf-name suffixes, usually with the leading dot
	// (".log", ".min.js"). Dotfiles like ".env" match as suffixes too.
	Extensions []string

	// Patterns are leaf-name globs where "*" matches any run of
	// characters.
	Patterns []string

	// Exclude is an optional external matcher consulted after the
	// built-in rule sets. Nil disables it.
	Exclude Matcher

	// IncludeHidden keeps dotfiles that no other rule excluded.
	IncludeHidden bool
}

// Engine evaluates paths against a fixed rule chain. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	dirs          map[string]struct{}
	exts          []string
	patterns      []*regexp.Regexp
	exclude       Matcher
	includeHidden bool
}

// NewEngine compiles the configured rules. Invalid wildcard patterns are
// logged and dropped; they never exclude anything.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	e := &Engine{
		dirs:          make(map[string]struct{}, len(cfg.Directories)),
		exts:          make([]string, 0, len(cfg.Extensions)),
		exclude:       cfg.Exclude,
		includeHidden: cfg.IncludeHidden,
	}

	for _, d := range cfg.Directories {
		d = strings.Trim(strings.TrimSpace(d), "/")
		if d == "" {
			continue
		}
		e.dirs[d] = struct{}{}
	}

	for _, x := range cfg.Extensions {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		e.exts = append(e.exts, x)
	}

	for _, p := range cfg.Patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := compilePattern(p)
		if err != nil {
			log.Warn().Str("pattern", p).Err(err).Msg("invalid ignore pattern, skipping")
			continue
		}
		e.patterns = append(e.patterns, re)
	}

	return e
}

// compilePattern turns a single-wildcard glob into an anchored regexp
// by expanding "*" to ".*". Patterns that do not survive compilation
// (stray regex metacharacters) are reported to the caller.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^" + strings.ReplaceAll(pattern, "*", ".*") + "$")
}

// Evaluate reports whether relPath should be skipped and, if so, the
// first matching reason. relPath must be slash-separated and relative.
//
// Precedence: directory, extension, pattern, external exclude, binary
// sniff, hidden file. The first rule set that matches wins.
func (e *Engine) Evaluate(relPath string) (Reason, bool) {
	relPath = strings.TrimPrefix(path.Clean(relPath), "./")
	leaf := path.Base(relPath)

	if e.matchesDirectory(relPath) {
		return ReasonDirectory, true
	}

	for _, x := range e.exts {
		if strings.HasSuffix(leaf, x) {
			return ReasonExtension, true
		}
	}

	for _, re := range e.patterns {
		if re.MatchString(leaf) {
			return ReasonPattern, true
		}
	}

	if e.exclude != nil && e.exclude.MatchesPath(relPath) {
		return ReasonExclude, true
	}

	if IsBinaryPath(leaf) {
		return ReasonBinary, true
	}

	if !e.includeHidden && strings.HasPrefix(leaf, ".") && leaf != "." {
		return ReasonHidden, true
	}

	return "", false
}

// matchesDirectory reports whether any directory segment of relPath is
// an ignored directory name. The leaf itself does not count: a file
// named "build" is not inside a "build" directory.
func (e *Engine) matchesDirectory(relPath string) bool {
	if len(e.dirs) == 0 {
		return false
	}
	segs := strings.Split(relPath, "/")
	for _, seg := range segs[:len(segs)-1] {
		if _, ok := e.dirs[seg]; ok {
			return true
		}
	}
	return false
}
