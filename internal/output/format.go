package output

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// Bytes renders a byte count in human-readable form, e.g. "1.5 MB".
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Count renders an integer with thousands separators, e.g. "12,405".
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Ratio renders "included/total" pairs like "118/124 files".
func Ratio(part, total int, noun string) string {
	return fmt.Sprintf("%s/%s %s", Count(part), Count(total), noun)
}

// SummaryLine renders a labeled value for summary blocks, with the
// label padded to a fixed width so values line up.
func SummaryLine(label, value string) string {
	return fmt.Sprintf(" %s %s", StyleLabel.Render(label), value)
}
