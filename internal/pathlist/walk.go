package pathlist

import (
	"context"
	"io/fs"
	"path/filepath"
)

// WalkProvider lists files by walking the filesystem. Only the .git
// directory is pruned here; every other path is reported so the ignore
// rules can record why it was dropped.
type WalkProvider struct{}

func (WalkProvider) Name() string { return "walk" }

func (WalkProvider) List(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			// Unreadable subtree: move on, the rest of the walk
			// is still useful.
			return fs.SkipDir
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return rerr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
