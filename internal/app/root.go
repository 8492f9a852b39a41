// Package app contains the Cobra command tree for ecksnap.
package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xelth-com/ecksnap/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "ecksnap",
	Short: "Package a project tree into a single LLM-ready snapshot",
	Long: `ecksnap walks a project (or clones a remote repository), filters out
noise like dependencies and build output, and packages the surviving files
into one reviewable snapshot artifact that can be pasted into an LLM
conversation or restored back onto disk later.

Run 'ecksnap create' in a project directory to produce a snapshot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("ecksnap", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  create    Snapshot a project tree into a single artifact")
		fmt.Println("  restore   Unpack a snapshot artifact back into files")
		fmt.Println("  inspect   Show what a snapshot artifact contains")
		fmt.Println("  history   List recent snapshot runs")
		fmt.Println("  watch     Re-snapshot automatically when the tree changes")
		fmt.Println("  doctor    Check whether the ecksnap setup is healthy")
		fmt.Println("  mcp       Serve snapshot tools over MCP stdio")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	output.AutoDetect()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger. Diagnostics go to stderr so they
// never mix with artifact or JSON output on stdout.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/ecksnap/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
