// Package scan reads the discovered files of a snapshot root under a
// bounded worker pool and settles one record per path, preserving
// discovery order regardless of which worker finishes first.
package scan

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xelth-com/ecksnap/internal/ignore"
)

// defaultWorkers bounds concurrent file reads when no explicit worker
// count is configured.
const defaultWorkers = 10

// Options tunes a single scan run.
type Options struct {
	// Workers caps concurrent reads. Zero or negative means the
	// default of 10.
	Workers int

	// MaxFileBytes skips any single file larger than this. Zero
	// disables the per-file limit.
	MaxFileBytes int64

	// MaxTotalBytes bounds the aggregate emitted content. Once
	// adding the next file would exceed it, emission stops. Zero
	// disables the budget.
	MaxTotalBytes int64

	// Transform, when set, rewrites file content before it is
	// recorded (skeleton mode). It must not fail; degraded output
	// falls back to the original bytes inside the transformer.
	Transform func(path string, content []byte) []byte
}

// Result is the settled outcome of a scan.
type Result struct {
	// Records holds one entry per discovered path, in discovery
	// order, whether included or skipped.
	Records []FileRecord

	// Emit holds the included records that fit the size budget, in
	// discovery order. This is what the serializer renders.
	Emit []FileRecord

	Stats     *Stats
	Truncated bool
}

// Run evaluates every discovered path against the ignore engine, reads
// survivors concurrently and settles results by discovery index. The
// skip decision is cheap and runs inline; only file reads go through
// the pool. A failed read never fails the run: the path settles as a
// skipped record carrying the error.
func Run(ctx context.Context, root string, paths []string, eng *ignore.Engine, opts Options, log zerolog.Logger) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	rels := normalize(paths)
	records := make([]FileRecord, len(rels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range rels {
		if reason, skip := eng.Evaluate(rel); skip {
			records[i] = FileRecord{Path: rel, Skipped: true, Reason: string(reason)}
			log.Debug().Str("path", rel).Str("reason", string(reason)).Msg("skipping")
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			abs := filepath.Join(root, filepath.FromSlash(rel))
			content, err := ReadBounded(abs, opts.MaxFileBytes)
			if err != nil {
				reason := ReasonReadError
				if errors.Is(err, ErrTooLarge) {
					reason = ReasonTooLarge
				}
				records[i] = FileRecord{Path: rel, Skipped: true, Reason: reason, Detail: err.Error()}
				log.Warn().Str("path", rel).Err(err).Msg("skipping unreadable file")
				return nil
			}
			if opts.Transform != nil {
				content = opts.Transform(rel, content)
			}
			records[i] = FileRecord{Path: rel, Content: content, Size: int64(len(content))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Records: records}

	// Walk settled records in discovery order and stop emitting at
	// the first file that would blow the budget. Skipped records are
	// already out; included records past the cutoff stay counted in
	// the stats even though the document will not carry them.
	var used int64
	for _, rec := range records {
		if rec.Skipped {
			continue
		}
		if opts.MaxTotalBytes > 0 && used+rec.Size > opts.MaxTotalBytes {
			res.Truncated = true
			log.Warn().
				Str("path", rec.Path).
				Str("limit", humanize.Bytes(uint64(opts.MaxTotalBytes))).
				Msg("size budget reached, truncating snapshot")
			break
		}
		used += rec.Size
		res.Emit = append(res.Emit, rec)
	}

	res.Stats = Collect(records)
	res.Stats.Truncated = res.Truncated
	return res, nil
}

// normalize cleans raw provider paths into slash-separated relatives.
func normalize(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = path.Clean(filepath.ToSlash(strings.TrimSpace(p)))
		if p == "" || p == "." || p == "/" {
			continue
		}
		p = strings.TrimPrefix(p, "./")
		out = append(out, p)
	}
	return out
}
