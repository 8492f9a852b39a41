package scan

// Skip reason categories produced by the scanner itself. Rule-based
// reasons come from the ignore package and flow through unchanged.
const (
	ReasonTooLarge  = "file-too-large"
	ReasonReadError = "read-error"
)

// FileRecord is the outcome for a single discovered path. Records keep
// their discovery position: the scanner fills a fixed slot per path no
// matter which worker finishes first.
type FileRecord struct {
	// Path is slash-separated and relative to the snapshot root.
	Path string `json:"path"`

	// Content holds the (possibly transformed) file body. Nil when
	// the file was skipped.
	Content []byte `json:"-"`

	// Size is the byte length of Content.
	Size int64 `json:"size"`

	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`

	// Detail carries the underlying error message for failure
	// reasons. Empty for rule-based skips.
	Detail string `json:"detail,omitempty"`
}

// Included reports whether the record carries content.
func (r FileRecord) Included() bool { return !r.Skipped }
