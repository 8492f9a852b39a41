package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/xelth-com/ecksnap/internal/pathlist"
)

// writeFile creates a file under root, making parent directories as needed.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func newTestWatcher(root string, onChange func(Change)) *Watcher {
	return New(root, pathlist.WalkProvider{}, time.Minute, onChange, zerolog.Nop())
}

func TestSnapshot_EmptyTree(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(root, nil)

	state, err := w.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.FileCount != 0 {
		t.Errorf("expected 0 files, got %d", state.FileCount)
	}
	if state.Digest == "" {
		t.Error("expected non-empty digest even for an empty tree")
	}
	if state.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestSnapshot_StableAcrossUnchangedTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "lib/util.go", "package lib\n")

	w := newTestWatcher(root, nil)

	first, err := w.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := w.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Digest != second.Digest {
		t.Error("digest changed with no file changes")
	}
	if first.FileCount != 2 {
		t.Errorf("expected 2 files, got %d", first.FileCount)
	}
}

func TestSnapshot_DigestChangesOnEdit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	w := newTestWatcher(root, nil)

	before, err := w.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A different length guarantees the stamp changes even on coarse
	// mtime filesystems.
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")

	after, err := w.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if before.Digest == after.Digest {
		t.Error("expected digest to change after edit")
	}
}

func TestSnapshot_MissingRoot(t *testing.T) {
	w := newTestWatcher("/nonexistent/path/to/project", nil)

	_, err := w.Snapshot(context.Background())
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestCheck_FirstCycleReportsNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	w := newTestWatcher(root, nil)

	change, err := w.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change != nil {
		t.Errorf("first cycle has no previous state to diff, got %+v", change)
	}
}

func TestCheck_DetectsEditAndAddition(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	w := newTestWatcher(root, nil)

	// Establish the baseline.
	if _, err := w.Check(context.Background()); err != nil {
		t.Fatalf("baseline check: %v", err)
	}

	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "extra.go", "package main\n")

	change, err := w.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change == nil {
		t.Fatal("expected a change to be detected")
	}

	if len(change.Added) != 1 || change.Added[0] != "extra.go" {
		t.Errorf("added = %v, want [extra.go]", change.Added)
	}
	if len(change.Modified) != 1 || change.Modified[0] != "main.go" {
		t.Errorf("modified = %v, want [main.go]", change.Modified)
	}
	if len(change.Removed) != 0 {
		t.Errorf("removed = %v, want none", change.Removed)
	}
}

func TestCheck_DetectsRemoval(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package main\n")
	writeFile(t, root, "b.go", "package main\n")

	w := newTestWatcher(root, nil)
	if _, err := w.Check(context.Background()); err != nil {
		t.Fatalf("baseline check: %v", err)
	}

	if err := os.Remove(filepath.Join(root, "b.go")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	change, err := w.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change == nil {
		t.Fatal("expected a change to be detected")
	}
	if len(change.Removed) != 1 || change.Removed[0] != "b.go" {
		t.Errorf("removed = %v, want [b.go]", change.Removed)
	}
}

func TestCheck_QuietCycleReturnsNil(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	w := newTestWatcher(root, nil)
	if _, err := w.Check(context.Background()); err != nil {
		t.Fatalf("baseline check: %v", err)
	}

	change, err := w.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change != nil {
		t.Errorf("expected nil change for quiet cycle, got %+v", change)
	}
}
