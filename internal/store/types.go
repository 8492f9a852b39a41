// Package store provides SQLite database access for ecksnap run history.
package store

import "time"

// Run records one completed snapshot generation.
type Run struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Root          string    `json:"root"`
	Artifact      string    `json:"artifact"`
	Format        string    `json:"format"`
	Compressed    bool      `json:"compressed"`
	TotalFiles    int       `json:"total_files"`
	IncludedFiles int       `json:"included_files"`
	SkippedFiles  int       `json:"skipped_files"`
	TotalBytes    int64     `json:"total_bytes"`
	TokenEstimate int       `json:"token_estimate,omitempty"`
	Truncated     bool      `json:"truncated"`
	DurationMs    int64     `json:"duration_ms"`
	Version       string    `json:"version"`
}

// RunDelta compares two runs of the same root, used by history output
// to show how a project's snapshot footprint changed over time.
type RunDelta struct {
	Previous   *Run  `json:"previous"`
	Current    *Run  `json:"current"`
	FilesDelta int   `json:"files_delta"`
	BytesDelta int64 `json:"bytes_delta"`
}
