package snapshot

import (
	"encoding/json"
	"strings"
	"time"
)

// Each entry is framed as:
//
//	--- File: /<relative-path> ---
//	<blank>
//	<content>
//	<blank>
//
// Content is written raw. A file that itself contains a delimiter line
// will split the stream at that point when parsed back; that is a
// known limitation of the format, accepted for the sake of snapshots
// that stay readable and diffable as plain text.
func delimiterFor(path string) string {
	return "--- File: /" + path + " ---"
}

// Render writes the document in the delimited text form.
func (d *Document) Render() string {
	var b strings.Builder
	if d.Tree != "" {
		b.WriteString(d.Tree)
		if !strings.HasSuffix(d.Tree, "\n") {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	for _, e := range d.Entries {
		b.WriteString(delimiterFor(e.Path))
		b.WriteString("\n\n")
		b.WriteString(e.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderJSON writes the document as an indented JSON envelope.
func RenderJSON(d *Document, env Envelope) ([]byte, error) {
	env.Tree = d.Tree
	env.Files = d.Entries
	if env.GeneratedAt.IsZero() {
		env.GeneratedAt = time.Now().UTC()
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
