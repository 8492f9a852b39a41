package ignore

import (
	"fmt"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// LoadGitignore compiles the .gitignore file at the snapshot root into a
// Matcher. A missing file is not an error: both return values are nil
// and the engine runs without an external exclude.
func LoadGitignore(root string) (Matcher, error) {
	p := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil, nil
	}
	m, err := gitignore.CompileIgnoreFile(p)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", p, err)
	}
	return m, nil
}

// CompileExcludes builds a Matcher from gitignore-style lines, for
// excludes passed on the command line.
func CompileExcludes(lines []string) Matcher {
	if len(lines) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(lines...)
}

// Merge combines matchers into one that matches when any member does.
// Nil members are dropped; merging nothing yields nil.
func Merge(ms ...Matcher) Matcher {
	var live []Matcher
	for _, m := range ms {
		if m != nil {
			live = append(live, m)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return multiMatcher(live)
}

type multiMatcher []Matcher

func (mm multiMatcher) MatchesPath(path string) bool {
	for _, m := range mm {
		if m.MatchesPath(path) {
			return true
		}
	}
	return false
}
