// Package archive handles the on-disk artifact form of a snapshot:
// gzip compression and the timestamped file naming scheme.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
)

// CompressedExt is appended to artifact names when compression is on.
const CompressedExt = ".gz"

// Compress gzips a rendered snapshot.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compressing snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress gunzips an artifact.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	return out, nil
}

// MaybeDecompress sniffs the gzip magic bytes and decompresses when
// present, so reads work on either artifact form regardless of the
// file name.
func MaybeDecompress(data []byte) ([]byte, bool, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, false, nil
	}
	out, err := Decompress(data)
	if err != nil {
		return nil, true, err
	}
	return out, true, nil
}

// Name builds the artifact file name for a snapshot of rootName taken
// at the given time: <root>_<UTC stamp>.snapshot.<ext>, plus .gz when
// compressed.
func Name(rootName, ext string, compressed bool, at time.Time) string {
	name := fmt.Sprintf("%s_%s.snapshot.%s", rootName, at.UTC().Format("20060102-150405"), ext)
	if compressed {
		name += CompressedExt
	}
	return name
}
