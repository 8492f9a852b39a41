// Package pathlist discovers the candidate file paths of a snapshot
// root. Inside a git work tree it defers to git's own index so that
// tracked and untracked-but-not-ignored files come back in git's
// order; everywhere else it walks the filesystem.
package pathlist

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// Provider lists candidate paths for a root, relative and
// slash-separated, in discovery order.
type Provider interface {
	// Name identifies the provider in logs and summaries.
	Name() string

	List(ctx context.Context, root string) ([]string, error)
}

// ErrGitMissing is returned by Select when the root is a git work tree
// but no git binary is available. Falling back silently would produce
// a snapshot with different contents than the user asked for.
var ErrGitMissing = errors.New("root is a git repository but git is not installed; re-run with --no-git to walk the filesystem instead")

// Select picks the provider for a root. forceWalk skips git detection
// entirely.
func Select(root string, forceWalk bool) (Provider, error) {
	if forceWalk {
		return WalkProvider{}, nil
	}
	if !IsGitRepo(root) {
		return WalkProvider{}, nil
	}
	if !GitAvailable() {
		return nil, ErrGitMissing
	}
	return GitProvider{}, nil
}

// IsGitRepo reports whether root has a .git entry. Both directories
// and files count; worktrees keep a .git file.
func IsGitRepo(root string) bool {
	_, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil
}

// GitAvailable reports whether a git binary is on PATH.
func GitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}
