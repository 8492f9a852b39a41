package pathlist

import (
	"context"
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/rs/zerolog"
)

// IsRemoteURL reports whether the root argument names a remote
// repository rather than a local directory.
func IsRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "ssh://") ||
		strings.HasPrefix(s, "git@")
}

// CloneTemp shallow-clones a remote repository into a temporary
// directory and returns its path plus a cleanup function. The cleanup
// is safe to call exactly once, after the snapshot is written.
func CloneTemp(ctx context.Context, url string, log zerolog.Logger) (string, func(), error) {
	dir, err := os.MkdirTemp("", "ecksnap-clone-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating clone dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	log.Info().Str("url", url).Str("dir", dir).Msg("cloning remote repository")
	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("cloning %s: %w", url, err)
	}
	return dir, cleanup, nil
}
