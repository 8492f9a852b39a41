// Package snapshot defines the snapshot document and its two wire
// renderings: a delimited plain-text stream and a JSON envelope that
// also carries the scan stats.
package snapshot

import (
	"time"

	"github.com/xelth-com/ecksnap/internal/scan"
)

// Entry is one file captured in a snapshot.
type Entry struct {
	// Path is slash-separated and relative to the snapshot root.
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Document is a parsed or about-to-be-rendered snapshot.
type Document struct {
	// Tree is the optional directory overview printed ahead of the
	// first file entry. Informational only; parsers skip it.
	Tree string

	Entries []Entry
}

// FromRecords builds a document from the records a scan chose to emit.
func FromRecords(records []scan.FileRecord, tree string) *Document {
	doc := &Document{Tree: tree, Entries: make([]Entry, 0, len(records))}
	for _, r := range records {
		if r.Skipped {
			continue
		}
		doc.Entries = append(doc.Entries, Entry{Path: r.Path, Content: string(r.Content)})
	}
	return doc
}

// Envelope is the JSON rendering: the same entries as the text form
// plus generation metadata and the scan summary.
type Envelope struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Root        string      `json:"root,omitempty"`
	Tree        string      `json:"tree,omitempty"`
	Files       []Entry     `json:"files"`
	Stats       *scan.Stats `json:"stats,omitempty"`
}
