package app

import (
	"strings"
	"testing"
	"time"

	"github.com/xelth-com/ecksnap/internal/scan"
	"github.com/xelth-com/ecksnap/internal/store"
)

func TestCommands_Registered(t *testing.T) {
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[strings.Fields(cmd.Use)[0]] = true
	}

	for _, want := range []string{"create", "restore", "inspect", "history", "watch", "doctor", "mcp"} {
		if !registered[want] {
			t.Errorf("%s subcommand not registered on rootCmd", want)
		}
	}
}

// ---------------------------------------------------------------------------

func TestRemoteName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/xelth-com/ecksnap.git", "ecksnap"},
		{"git@github.com:org/webapp.git", "webapp"},
		{"https://gitlab.com/group/sub/tool/", "tool"},
		{"ssh://git@host/repo", "repo"},
		{"", "snapshot"},
	}
	for _, tt := range tests {
		if got := remoteName(tt.url); got != tt.want {
			t.Errorf("remoteName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSkipBreakdown(t *testing.T) {
	stats := &scan.Stats{
		SkippedFiles: 6,
		ByReason: map[string]int{
			"binary-file":       3,
			"ignored-directory": 2,
			"file-too-large":    1,
		},
	}
	got := skipBreakdown(stats)
	want := "6 (3 binary-file, 2 ignored-directory, 1 file-too-large)"
	if got != want {
		t.Errorf("skipBreakdown = %q, want %q", got, want)
	}
}

func TestSkipBreakdown_TiesSortByName(t *testing.T) {
	stats := &scan.Stats{
		SkippedFiles: 4,
		ByReason: map[string]int{
			"read-error":  2,
			"hidden-file": 2,
		},
	}
	got := skipBreakdown(stats)
	want := "4 (2 hidden-file, 2 read-error)"
	if got != want {
		t.Errorf("skipBreakdown = %q, want %q", got, want)
	}
}

func TestSignedCount(t *testing.T) {
	if got := signedCount(7); got != "+7" {
		t.Errorf("signedCount(7) = %q, want %q", got, "+7")
	}
	if got := signedCount(-3); got != "-3" {
		t.Errorf("signedCount(-3) = %q, want %q", got, "-3")
	}
	if got := signedCount(0); got != "+0" {
		t.Errorf("signedCount(0) = %q, want %q", got, "+0")
	}
}

func TestSignedBytes(t *testing.T) {
	if got := signedBytes(1500); got != "+1.5 kB" {
		t.Errorf("signedBytes(1500) = %q, want %q", got, "+1.5 kB")
	}
	if got := signedBytes(-812); got != "-812 B" {
		t.Errorf("signedBytes(-812) = %q, want %q", got, "-812 B")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()

	if got := formatRelativeTime(now.Add(-10 * time.Minute)); got != "just now" {
		t.Errorf("10m = %q, want %q", got, "just now")
	}
	if got := formatRelativeTime(now.Add(-5 * time.Hour)); got != "5h ago" {
		t.Errorf("5h = %q, want %q", got, "5h ago")
	}
	if got := formatRelativeTime(now.Add(-72 * time.Hour)); got != "3d ago" {
		t.Errorf("72h = %q, want %q", got, "3d ago")
	}
}

func TestLatestDelta(t *testing.T) {
	runs := []store.Run{
		{ID: 5, Root: "/home/dev/webapp", IncludedFiles: 120, TotalBytes: 500000},
		{ID: 4, Root: "/home/dev/api", IncludedFiles: 40, TotalBytes: 90000},
		{ID: 3, Root: "/home/dev/webapp", IncludedFiles: 110, TotalBytes: 480000},
	}

	d := latestDelta(runs)
	if d == nil {
		t.Fatal("latestDelta returned nil")
	}
	if d.Previous.ID != 3 || d.Current.ID != 5 {
		t.Errorf("delta pairs runs %d and %d, want 3 and 5", d.Previous.ID, d.Current.ID)
	}
	if d.FilesDelta != 10 {
		t.Errorf("FilesDelta = %d, want 10", d.FilesDelta)
	}
	if d.BytesDelta != 20000 {
		t.Errorf("BytesDelta = %d, want 20000", d.BytesDelta)
	}
}

func TestLatestDelta_NoMatchingRoot(t *testing.T) {
	runs := []store.Run{
		{ID: 2, Root: "/home/dev/webapp"},
		{ID: 1, Root: "/home/dev/api"},
	}
	if d := latestDelta(runs); d != nil {
		t.Errorf("expected nil delta across different roots, got %+v", d)
	}

	if d := latestDelta(nil); d != nil {
		t.Errorf("expected nil delta for empty history, got %+v", d)
	}
}
