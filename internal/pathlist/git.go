package pathlist

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitProvider lists files through git ls-files: everything tracked plus
// untracked files that are not ignored. Paths come back NUL-separated
// so names with spaces or newlines survive.
type GitProvider struct{}

func (GitProvider) Name() string { return "git" }

func (GitProvider) List(ctx context.Context, root string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", root,
		"ls-files", "-z", "--cached", "--others", "--exclude-standard")
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("git ls-files: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	raw := strings.Split(strings.TrimRight(string(out), "\x00"), "\x00")
	paths := make([]string, 0, len(raw))
	for _, p := range raw {
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}
