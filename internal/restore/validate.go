package restore

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsafePath marks a snapshot entry whose path must not be written
// to disk. Matched with errors.Is.
var ErrUnsafePath = errors.New("unsafe path")

var windowsDriveRe = regexp.MustCompile(`^[a-zA-Z]:`)

// ValidatePath rejects any entry path that could escape the restore
// target or smuggle in reserved characters. Paths arrive in their
// snapshot form: slash-separated and nominally relative.
func ValidatePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafePath)
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) || windowsDriveRe.MatchString(p) {
		return fmt.Errorf("%w: absolute path %q", ErrUnsafePath, p)
	}
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return fmt.Errorf("%w: parent traversal in %q", ErrUnsafePath, p)
		}
	}
	for _, r := range p {
		if r == 0 {
			return fmt.Errorf("%w: NUL byte in path", ErrUnsafePath)
		}
		if r < 0x20 {
			return fmt.Errorf("%w: control character in %q", ErrUnsafePath, p)
		}
		if strings.ContainsRune(`<>:"|?*`, r) {
			return fmt.Errorf("%w: reserved character %q in %q", ErrUnsafePath, r, p)
		}
	}
	return nil
}

// ValidateAll checks every path and fails on the first offender. One
// bad entry aborts the whole restore before anything touches disk.
func ValidateAll(paths []string) error {
	for _, p := range paths {
		if err := ValidatePath(p); err != nil {
			return err
		}
	}
	return nil
}
