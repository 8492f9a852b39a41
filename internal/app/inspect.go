package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/xelth-com/ecksnap/internal/archive"
	"github.com/xelth-com/ecksnap/internal/output"
	"github.com/xelth-com/ecksnap/internal/scan"
	"github.com/xelth-com/ecksnap/internal/snapshot"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact>",
	Short: "Summarize a snapshot artifact without restoring it",
	Long: `Inspect parses a snapshot artifact and reports what is inside: entry
count, content size, and the largest files. Works on both renderings,
gzipped or not, and never writes anything.

Examples:
  ecksnap inspect webapp_20260820-143000.snapshot.txt
  ecksnap inspect api.snapshot.json.gz --limit 50`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 20, "Entries listed in the table; 0 shows all")
	rootCmd.AddCommand(inspectCmd)
}

// inspectReport is the JSON rendering of an inspection.
type inspectReport struct {
	Artifact     string      `json:"artifact"`
	Format       string      `json:"format"`
	Compressed   bool        `json:"compressed"`
	Files        int         `json:"files"`
	ContentBytes int64       `json:"content_bytes"`
	HasTree      bool        `json:"has_tree"`
	Stats        *scan.Stats `json:"stats,omitempty"`
	Entries      []entryInfo `json:"entries"`
}

type entryInfo struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}

	artifact := args[0]
	raw, err := os.ReadFile(artifact)
	if err != nil {
		return fmt.Errorf("reading %s: %w", artifact, err)
	}

	data, compressed, err := archive.MaybeDecompress(raw)
	if err != nil {
		return fmt.Errorf("decompressing %s: %w", artifact, err)
	}

	doc, stats, err := snapshot.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", artifact, err)
	}

	format := "text"
	if trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace); len(trimmed) > 0 && trimmed[0] == '{' {
		format = "json"
	}

	report := inspectReport{
		Artifact:   artifact,
		Format:     format,
		Compressed: compressed,
		Files:      len(doc.Entries),
		HasTree:    doc.Tree != "",
		Stats:      stats,
		Entries:    make([]entryInfo, 0, len(doc.Entries)),
	}
	for _, e := range doc.Entries {
		report.ContentBytes += int64(len(e.Content))
		report.Entries = append(report.Entries, entryInfo{Path: e.Path, Bytes: len(e.Content)})
	}
	// Largest entries first; ties keep artifact order.
	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Bytes > report.Entries[j].Bytes
	})

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	renderInspectReport(&report)
	return nil
}

func renderInspectReport(r *inspectReport) {
	fmt.Println(output.Section("Snapshot Contents"))
	fmt.Println()

	kind := r.Format
	if r.Compressed {
		kind += ", gzipped"
	}
	fmt.Println(output.SummaryLine("Artifact:", fmt.Sprintf("%s (%s)", r.Artifact, kind)))
	fmt.Println(output.SummaryLine("Files:", output.Count(r.Files)))
	fmt.Println(output.SummaryLine("Content:", output.Bytes(r.ContentBytes)))
	if r.HasTree {
		fmt.Println(output.SummaryLine("Tree:", "included"))
	}
	if r.Stats != nil {
		fmt.Println(output.SummaryLine("Scanned:", output.Ratio(r.Stats.IncludedFiles, r.Stats.TotalFiles, "included")))
		if r.Stats.TokenEstimate > 0 {
			fmt.Println(output.SummaryLine("Tokens:", "~"+output.Count(r.Stats.TokenEstimate)))
		}
		if r.Stats.Truncated {
			fmt.Println(output.SummaryLine("Truncated:", output.StyleWarning.Render("yes")))
		}
	}
	fmt.Println()

	limit := inspectLimit
	if limit <= 0 || limit > len(r.Entries) {
		limit = len(r.Entries)
	}

	table := output.NewTable("Path", "Size").AlignRight(1)
	for _, e := range r.Entries[:limit] {
		table.AddRow(e.Path, output.Bytes(int64(e.Bytes)))
	}
	fmt.Println(table.Render())

	if rest := len(r.Entries) - limit; rest > 0 {
		fmt.Printf("\n %s\n", output.StyleMuted.Render(fmt.Sprintf("... and %d more (use --limit 0 to show all)", rest)))
	}
	fmt.Println()
}
