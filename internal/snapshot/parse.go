package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/xelth-com/ecksnap/internal/scan"
)

// ErrNoEntries means the input held no recognizable file delimiters
// and cannot be a snapshot.
var ErrNoEntries = errors.New("no file entries found")

var delimiterRe = regexp.MustCompile(`(?m)^--- File: /(.+) ---$`)

// Parse reads either rendering of a snapshot. JSON envelopes are
// detected by their leading brace; anything else is treated as the
// delimited text form. The returned stats are nil for text snapshots,
// which do not carry them.
func Parse(data []byte) (*Document, *scan.Stats, error) {
	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSON(trimmed)
	}
	return parseText(string(data))
}

func parseJSON(data []byte) (*Document, *scan.Stats, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("decoding snapshot envelope: %w", err)
	}
	if len(env.Files) == 0 {
		return nil, nil, ErrNoEntries
	}
	return &Document{Tree: env.Tree, Entries: env.Files}, env.Stats, nil
}

func parseText(text string) (*Document, *scan.Stats, error) {
	locs := delimiterRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil, nil, ErrNoEntries
	}

	doc := &Document{Tree: strings.Trim(text[:locs[0][0]], "\n")}
	for i, loc := range locs {
		path := text[loc[2]:loc[3]]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		// Strip the framing blank lines, and only those: interior
		// newlines belong to the file.
		raw := text[loc[1]:end]
		content := strings.TrimPrefix(raw, "\n\n")
		content = strings.TrimSuffix(content, "\n\n")
		doc.Entries = append(doc.Entries, Entry{Path: path, Content: content})
	}
	return doc, nil, nil
}
