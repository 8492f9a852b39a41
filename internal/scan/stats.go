package scan

import (
	"path"
	"strings"
)

// maxReasonSamples caps how many example paths are kept per skip reason.
const maxReasonSamples = 5

// Stats summarizes a finished scan. It is computed in a single pass
// over the settled records, after all workers are done, so no counter
// is ever touched concurrently.
type Stats struct {
	TotalFiles    int   `json:"total_files"`
	IncludedFiles int   `json:"included_files"`
	SkippedFiles  int   `json:"skipped_files"`
	TotalBytes    int64 `json:"total_bytes"`
	Errors        int   `json:"errors"`
	Truncated     bool  `json:"truncated,omitempty"`

	// TokenEstimate is filled in later when token counting was
	// requested; zero means "not estimated".
	TokenEstimate int `json:"token_estimate,omitempty"`

	ByExtension   map[string]int      `json:"by_extension"`
	ByReason      map[string]int      `json:"by_reason"`
	ReasonSamples map[string][]string `json:"reason_samples,omitempty"`
}

// Collect derives Stats from settled records. Included counts reflect
// what the scan admitted, not what a later size budget may have cut:
// truncation trims the document, never the bookkeeping.
func Collect(records []FileRecord) *Stats {
	s := &Stats{
		ByExtension:   make(map[string]int),
		ByReason:      make(map[string]int),
		ReasonSamples: make(map[string][]string),
	}
	for _, r := range records {
		s.TotalFiles++
		if r.Skipped {
			s.SkippedFiles++
			s.ByReason[r.Reason]++
			if r.Reason == ReasonReadError || r.Reason == ReasonTooLarge {
				s.Errors++
			}
			if len(s.ReasonSamples[r.Reason]) < maxReasonSamples {
				s.ReasonSamples[r.Reason] = append(s.ReasonSamples[r.Reason], r.Path)
			}
			continue
		}
		s.IncludedFiles++
		s.TotalBytes += r.Size
		s.ByExtension[extKey(r.Path)]++
	}
	return s
}

func extKey(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return "(none)"
	}
	return ext
}
