package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/xelth-com/ecksnap/internal/config"
	"github.com/xelth-com/ecksnap/internal/output"
	"github.com/xelth-com/ecksnap/internal/store"
)

var (
	historyLimit int
	historyRoot  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent snapshot runs",
	Long: `History lists the runs recorded in the local database, newest first,
with the size and token trend against the previous run of the same
project.

Examples:
  ecksnap history
  ecksnap history --root ~/code/webapp --limit 25
  ecksnap history --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Runs to show")
	historyCmd.Flags().StringVar(&historyRoot, "root", "", "Only runs for this project root")
	rootCmd.AddCommand(historyCmd)
}

// historyOutput is the JSON rendering of the history listing.
type historyOutput struct {
	Runs  []store.Run     `json:"runs"`
	Delta *store.RunDelta `json:"delta,omitempty"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}

	root := historyRoot
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", root, err)
		}
		root = abs
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	runs, err := db.ListRuns(root, historyLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	out := historyOutput{Runs: runs, Delta: latestDelta(runs)}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	renderHistory(&out)
	return nil
}

// latestDelta compares the newest run against the previous run of the
// same root, so mixed-project listings still give a sane trend.
func latestDelta(runs []store.Run) *store.RunDelta {
	if len(runs) < 2 {
		return nil
	}
	latest := &runs[0]
	for i := 1; i < len(runs); i++ {
		if runs[i].Root == latest.Root {
			return store.Delta(&runs[i], latest)
		}
	}
	return nil
}

func renderHistory(out *historyOutput) {
	fmt.Println(output.Section("Snapshot History"))
	fmt.Println()

	if len(out.Runs) == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No runs recorded yet. Run 'ecksnap create' first."))
		return
	}

	table := output.NewTable("ID", "When", "Project", "Files", "Size", "Tokens", "Artifact").AlignRight(0, 3, 4, 5)
	for _, r := range out.Runs {
		tokens := ""
		if r.TokenEstimate > 0 {
			tokens = output.Count(r.TokenEstimate)
		}
		table.AddRow(
			fmt.Sprintf("%d", r.ID),
			formatRelativeTime(r.CreatedAt),
			filepath.Base(r.Root),
			fmt.Sprintf("%d", r.IncludedFiles),
			output.Bytes(r.TotalBytes),
			tokens,
			filepath.Base(r.Artifact),
		)
	}
	fmt.Println(table.Render())

	if d := out.Delta; d != nil {
		fmt.Println()
		fmt.Println(output.SummaryLine("Since last run:", fmt.Sprintf("%s files, %s", signedCount(d.FilesDelta), signedBytes(d.BytesDelta))))
	}
	fmt.Println()
}

// formatRelativeTime renders a timestamp as "just now", "12h ago", or
// "3d ago".
func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Hour:
		return "just now"
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func signedCount(n int) string {
	if n >= 0 {
		return "+" + output.Count(n)
	}
	return output.Count(n)
}

func signedBytes(n int64) string {
	if n < 0 {
		return "-" + output.Bytes(-n)
	}
	return "+" + output.Bytes(n)
}
