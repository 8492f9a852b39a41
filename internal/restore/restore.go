// Package restore writes snapshot entries back onto the filesystem.
// Every path is validated before the first byte hits disk; failures in
// individual files never stop the remaining writes.
package restore

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/xelth-com/ecksnap/internal/snapshot"
)

// defaultWorkers bounds concurrent file writes.
const defaultWorkers = 8

// Options tunes a restore run.
type Options struct {
	// Target is the directory entries are written under.
	Target string

	// Include and Exclude are glob patterns matched against the
	// entry path and its leaf name. Include empty means everything.
	// Filtering runs before path validation: entries the user
	// filtered away cannot fail the run.
	Include []string
	Exclude []string

	// Workers caps concurrent writes. Zero means the default of 8.
	Workers int

	// DryRun plans the restore without touching the filesystem.
	DryRun bool
}

// Failure records one entry that could not be written.
type Failure struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// Summary is the outcome of a restore.
type Summary struct {
	Planned     []string  `json:"planned,omitempty"`
	Written     int       `json:"written"`
	Failed      int       `json:"failed"`
	FilteredOut int       `json:"filtered_out"`
	Failures    []Failure `json:"failures,omitempty"`
	DryRun      bool      `json:"dry_run,omitempty"`
}

// Run restores a parsed snapshot into the target directory.
func Run(ctx context.Context, doc *snapshot.Document, opts Options, log zerolog.Logger) (*Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	entries, filtered := filterEntries(doc.Entries, opts.Include, opts.Exclude)
	sum := &Summary{FilteredOut: filtered, DryRun: opts.DryRun}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	if err := ValidateAll(paths); err != nil {
		return nil, err
	}

	if opts.DryRun {
		sum.Planned = paths
		return sum, nil
	}

	var (
		mu       sync.Mutex
		written  int
		failures []Failure
	)

	p := pool.New().WithMaxGoroutines(workers)
	for _, e := range entries {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			abs := filepath.Join(opts.Target, filepath.FromSlash(e.Path))
			err := writeEntry(abs, []byte(e.Content))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Str("path", e.Path).Err(err).Msg("restore failed for file")
				failures = append(failures, Failure{Path: e.Path, Err: err.Error()})
				return
			}
			written++
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	sum.Written = written
	sum.Failed = len(failures)
	sum.Failures = failures
	return sum, nil
}

func writeEntry(abs string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return os.WriteFile(abs, content, 0o644)
}

// filterEntries applies include and exclude globs. Patterns match the
// full relative path or just the leaf, whichever the user had in mind.
func filterEntries(entries []snapshot.Entry, include, exclude []string) ([]snapshot.Entry, int) {
	kept := make([]snapshot.Entry, 0, len(entries))
	filtered := 0
	for _, e := range entries {
		if len(include) > 0 && !matchesAny(include, e.Path) {
			filtered++
			continue
		}
		if matchesAny(exclude, e.Path) {
			filtered++
			continue
		}
		kept = append(kept, e)
	}
	return kept, filtered
}

func matchesAny(patterns []string, p string) bool {
	leaf := path.Base(p)
	for _, pat := range patterns {
		if ok, err := path.Match(pat, p); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pat, leaf); err == nil && ok {
			return true
		}
	}
	return false
}
