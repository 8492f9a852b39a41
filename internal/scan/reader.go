package scan

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// ErrTooLarge is returned by ReadBounded for files over the size limit.
// Callers distinguish it from plain read failures with errors.Is.
var ErrTooLarge = errors.New("file exceeds size limit")

// ReadBounded reads a file after checking its size against maxBytes.
// Oversized files fail fast on the stat alone; their contents are never
// read. A maxBytes of zero disables the check.
func ReadBounded(path string, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %s (limit %s)",
			ErrTooLarge, path, humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(maxBytes)))
	}
	return os.ReadFile(path)
}
