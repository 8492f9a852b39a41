// Package watcher provides background monitoring of a project tree,
// detecting file additions, removals, and edits so that snapshots can
// be regenerated when the tree settles into a new state.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/xelth-com/ecksnap/internal/pathlist"
)

// State captures a point-in-time fingerprint of the tracked tree.
type State struct {
	Timestamp time.Time
	FileCount int
	Digest    string

	// Internal: per-file stamps for diffing.
	stamps map[string]fileStamp
}

// fileStamp is the change-detection identity of one file. Content is
// never read; size plus mtime is cheap and good enough for polling.
type fileStamp struct {
	size    int64
	modTime int64
}

// Watcher polls a project tree at a regular interval and invokes a
// callback when the tracked files change.
type Watcher struct {
	root     string
	provider pathlist.Provider
	interval time.Duration
	onChange func(Change)
	previous *State
	log      zerolog.Logger
}

// New creates a Watcher over root. The provider decides which paths are
// tracked, so git-ignored files never trigger a rebuild.
func New(root string, provider pathlist.Provider, interval time.Duration, onChange func(Change), log zerolog.Logger) *Watcher {
	return &Watcher{
		root:     root,
		provider: provider,
		interval: interval,
		onChange: onChange,
		log:      log,
	}
}

// Run starts the watch loop. It takes an initial fingerprint, then
// checks at every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial fingerprint: %w", err)
	}
	w.previous = initial

	w.log.Info().
		Int("files", initial.FileCount).
		Str("digest", shortDigest(initial.Digest)).
		Dur("interval", w.interval).
		Msg("watching for changes")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			change, err := w.Check(ctx)
			if err != nil {
				w.log.Warn().Err(err).Msg("fingerprint cycle failed")
				continue
			}
			if change != nil && w.onChange != nil {
				w.onChange(*change)
			}
		}
	}
}

// Check performs a single cycle: fingerprints the tree, diffs against
// the previous state, and updates it. Returns nil when nothing changed.
func (w *Watcher) Check(ctx context.Context) (*Change, error) {
	curr, err := w.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var change *Change
	if w.previous != nil && curr.Digest != w.previous.Digest {
		c := Diff(w.previous, curr)
		change = &c
	}

	w.previous = curr
	return change, nil
}

// Snapshot fingerprints the tracked tree: the provider's path list plus
// each file's size and modification time, digested in sorted order so
// the result does not depend on discovery order.
func (w *Watcher) Snapshot(ctx context.Context) (*State, error) {
	paths, err := w.provider.List(ctx, w.root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", w.root, err)
	}

	state := &State{
		Timestamp: time.Now(),
		stamps:    make(map[string]fileStamp, len(paths)),
	}

	for _, rel := range paths {
		info, err := os.Stat(filepath.Join(w.root, filepath.FromSlash(rel)))
		if err != nil {
			// Races against deletion are expected; the next cycle settles it.
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		state.stamps[rel] = fileStamp{size: info.Size(), modTime: info.ModTime().UnixNano()}
	}
	state.FileCount = len(state.stamps)

	sorted := make([]string, 0, len(state.stamps))
	for rel := range state.stamps {
		sorted = append(sorted, rel)
	}
	sort.Strings(sorted)

	h := sha256.New()
	for _, rel := range sorted {
		st := state.stamps[rel]
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", rel, st.size, st.modTime)
	}
	state.Digest = hex.EncodeToString(h.Sum(nil))

	return state, nil
}

// shortDigest truncates a hex digest for log lines.
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
