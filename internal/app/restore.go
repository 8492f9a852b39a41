package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xelth-com/ecksnap/internal/archive"
	"github.com/xelth-com/ecksnap/internal/config"
	"github.com/xelth-com/ecksnap/internal/output"
	"github.com/xelth-com/ecksnap/internal/restore"
	"github.com/xelth-com/ecksnap/internal/snapshot"
)

var (
	restoreTarget  string
	restoreDryRun  bool
	restoreForce   bool
	restoreInclude []string
	restoreExclude []string
	restoreWorkers int
)

var restoreCmd = &cobra.Command{
	Use:   "restore <artifact>",
	Short: "Unpack a snapshot back into a directory tree",
	Long: `Restore reads a snapshot artifact (text or JSON, optionally gzipped),
validates every entry path, and writes the files into the target
directory. Entries with absolute or escaping paths abort the run before
anything is written.

By default restore asks for confirmation. Use --dry-run to list what
would be written, or --force to skip the prompt.

Examples:
  ecksnap restore webapp_20260820-143000.snapshot.txt
  ecksnap restore api.snapshot.json.gz --target ./recovered
  ecksnap restore app.snapshot.txt --include "*.go" --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	f := restoreCmd.Flags()
	f.StringVarP(&restoreTarget, "target", "t", ".", "Directory the files are written under")
	f.BoolVar(&restoreDryRun, "dry-run", false, "List planned writes without touching the filesystem")
	f.BoolVar(&restoreForce, "force", false, "Skip the confirmation prompt")
	f.StringSliceVar(&restoreInclude, "include", nil, "Glob of entries to restore (repeatable; default all)")
	f.StringSliceVar(&restoreExclude, "exclude", nil, "Glob of entries to skip (repeatable)")
	f.IntVar(&restoreWorkers, "workers", 0, "Concurrent file writes (default: config restore.workers)")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}
	log := newLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
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
	if compressed {
		log.Debug().Str("artifact", artifact).Msg("gzip artifact decompressed")
	}

	doc, _, err := snapshot.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", artifact, err)
	}
	if len(doc.Entries) == 0 {
		return fmt.Errorf("%s contains no files", artifact)
	}

	workers := cfg.Restore.Workers
	if cmd.Flags().Changed("workers") {
		workers = restoreWorkers
	}

	opts := restore.Options{
		Target:  restoreTarget,
		Include: restoreInclude,
		Exclude: restoreExclude,
		Workers: workers,
		DryRun:  restoreDryRun,
	}

	if !restoreDryRun && !restoreForce && !flagJSON {
		if !confirmRestore(len(doc.Entries), restoreTarget) {
			fmt.Println(" Restore cancelled.")
			return nil
		}
	}

	sum, err := restore.Run(cmd.Context(), doc, opts, log)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return err
		}
	} else {
		renderRestoreSummary(artifact, sum)
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to restore", sum.Failed, sum.Failed+sum.Written)
	}
	return nil
}

// confirmRestore prompts before the filesystem is touched.
func confirmRestore(count int, target string) bool {
	fmt.Printf("  Restore %d files into %s? [y/N] ", count, target)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func renderRestoreSummary(artifact string, sum *restore.Summary) {
	fmt.Println(output.Section("Restore"))
	fmt.Println()

	if sum.DryRun {
		fmt.Println(output.SummaryLine("Artifact:", artifact))
		fmt.Println(output.SummaryLine("Planned:", output.Count(len(sum.Planned))+" files"))
		if sum.FilteredOut > 0 {
			fmt.Println(output.SummaryLine("Filtered:", output.Count(sum.FilteredOut)+" files"))
		}
		fmt.Println()
		for _, p := range sum.Planned {
			fmt.Printf("   %s\n", p)
		}
		fmt.Println()
		return
	}

	fmt.Println(output.SummaryLine("Artifact:", artifact))
	fmt.Println(output.SummaryLine("Written:", output.Count(sum.Written)+" files"))
	if sum.FilteredOut > 0 {
		fmt.Println(output.SummaryLine("Filtered:", output.Count(sum.FilteredOut)+" files"))
	}
	if sum.Failed > 0 {
		fmt.Println(output.SummaryLine("Failed:", output.StyleError.Render(output.Count(sum.Failed)+" files")))
		fmt.Println()
		table := output.NewTable("Path", "Error")
		for _, f := range sum.Failures {
			table.AddRow(f.Path, output.StyleMuted.Render(f.Err))
		}
		fmt.Println(table.Render())
	}
	fmt.Println()
}
