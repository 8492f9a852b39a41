package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xelth-com/ecksnap/internal/archive"
	"github.com/xelth-com/ecksnap/internal/config"
	"github.com/xelth-com/ecksnap/internal/ignore"
	"github.com/xelth-com/ecksnap/internal/output"
	"github.com/xelth-com/ecksnap/internal/pathlist"
	"github.com/xelth-com/ecksnap/internal/scan"
	"github.com/xelth-com/ecksnap/internal/skeleton"
	"github.com/xelth-com/ecksnap/internal/snapshot"
	"github.com/xelth-com/ecksnap/internal/store"
	"github.com/xelth-com/ecksnap/internal/tokens"
)

var (
	createOutputDir     string
	createFormat        string
	createCompress      bool
	createMaxFileSize   string
	createMaxTotalSize  string
	createWorkers       int
	createIncludeHidden bool
	createNoGit         bool
	createNoTree        bool
	createSkeleton      bool
	createAbstractLevel int
	createTokens        bool
	createClipboard     bool
	createExcludes      []string
)

var createCmd = &cobra.Command{
	Use:   "create [root]",
	Short: "Snapshot a project tree into a single artifact",
	Long: `Create walks the project at root (default: current directory), filters
out dependencies, build output, binaries, and other noise, and packages
the surviving files into one timestamped snapshot artifact.

Inside a git work tree the file list comes from git itself, so ignored
files never enter the snapshot. A root that looks like a git URL is
shallow-cloned to a temporary directory first.

Examples:
  ecksnap create                          # snapshot the current directory
  ecksnap create ~/code/webapp --compress
  ecksnap create --skeleton               # signatures only, bodies hollowed
  ecksnap create --abstract-level 5       # C declaration outline
  ecksnap create git@github.com:org/repo.git`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	addCreateFlags(createCmd)
	createCmd.Flags().BoolVar(&createClipboard, "clipboard", false, "Copy the snapshot to the clipboard instead of writing a file")
	rootCmd.AddCommand(createCmd)
}

// addCreateFlags registers the snapshot-shaping flags shared by create
// and watch.
func addCreateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&createOutputDir, "output-dir", "o", "", "Directory the artifact is written to (default: config output_dir)")
	f.StringVar(&createFormat, "format", "", "Artifact format: text or json (default: config format)")
	f.BoolVar(&createCompress, "compress", false, "Gzip the artifact")
	f.StringVar(&createMaxFileSize, "max-file-size", "", `Per-file size limit, e.g. "1 MB"; 0 disables`)
	f.StringVar(&createMaxTotalSize, "max-total-size", "", `Total content budget, e.g. "50 MB"; 0 disables`)
	f.IntVar(&createWorkers, "workers", 0, "Concurrent file reads (default: config workers)")
	f.BoolVar(&createIncludeHidden, "include-hidden", false, "Keep dotfiles that no other rule excludes")
	f.BoolVar(&createNoGit, "no-git", false, "Walk the filesystem even inside a git repository")
	f.BoolVar(&createNoTree, "no-tree", false, "Omit the directory tree block")
	f.BoolVar(&createSkeleton, "skeleton", false, "Hollow out function bodies, keeping signatures and types")
	f.IntVar(&createAbstractLevel, "abstract-level", 0, "C outline detail level 1-10; 0 disables")
	f.BoolVar(&createTokens, "tokens", false, "Estimate LLM token count of the artifact")
	f.StringSliceVar(&createExcludes, "exclude", nil, "Extra gitignore-style exclude pattern (repeatable)")
}

// createRequest carries one generation's fully resolved settings, after
// config defaults and flag overrides are merged.
type createRequest struct {
	Root          string // absolute path of the tree to snapshot
	RootName      string
	OutputDir     string
	Format        string
	Compress      bool
	Workers       int
	MaxFileBytes  int64
	MaxTotalBytes int64
	IncludeHidden bool
	Tree          bool
	NoGit         bool
	Skeleton      bool
	AbstractLevel int
	CountTokens   bool
	Clipboard     bool
	Excludes      []string

	IgnoreDirs     []string
	IgnoreExts     []string
	IgnorePatterns []string
}

// createOutcome is what a finished generation reports.
type createOutcome struct {
	Artifact   string      `json:"artifact,omitempty"`
	Clipboard  bool        `json:"clipboard,omitempty"`
	Provider   string      `json:"provider"`
	Stats      *scan.Stats `json:"stats"`
	Truncated  bool        `json:"truncated,omitempty"`
	Bytes      int         `json:"artifact_bytes"`
	DurationMs int64       `json:"duration_ms"`
}

func runCreate(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}
	log := newLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := cmd.Context()

	rootArg := "."
	if len(args) == 1 {
		rootArg = args[0]
	}

	root := rootArg
	rootName := ""
	if pathlist.IsRemoteURL(rootArg) {
		dir, cleanup, cerr := pathlist.CloneTemp(ctx, rootArg, log)
		if cerr != nil {
			return fmt.Errorf("cloning %s: %w", rootArg, cerr)
		}
		defer cleanup()
		root = dir
		rootName = remoteName(rootArg)
	}

	req, err := buildCreateRequest(cmd, cfg, root, rootName)
	if err != nil {
		return err
	}

	outcome, err := performCreate(ctx, req, log)
	if err != nil {
		return err
	}

	recordRun(req, outcome, log)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}
	renderCreateSummary(req, outcome)
	return nil
}

// buildCreateRequest resolves the effective settings for one run:
// config values first, then any flag the user actually set.
func buildCreateRequest(cmd *cobra.Command, cfg *config.Config, root, rootName string) (*createRequest, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	if rootName == "" {
		rootName = filepath.Base(abs)
	}

	flags := cmd.Flags()

	if flags.Changed("max-file-size") {
		cfg.MaxFileSize = createMaxFileSize
	}
	if flags.Changed("max-total-size") {
		cfg.MaxTotalSize = createMaxTotalSize
	}
	fileBudget, err := cfg.FileBudget()
	if err != nil {
		return nil, err
	}
	totalBudget, err := cfg.TotalBudget()
	if err != nil {
		return nil, err
	}

	req := &createRequest{
		Root:           abs,
		RootName:       rootName,
		OutputDir:      cfg.OutputDir,
		Format:         cfg.Format,
		Compress:       cfg.Compress,
		Workers:        cfg.Workers,
		MaxFileBytes:   fileBudget,
		MaxTotalBytes:  totalBudget,
		IncludeHidden:  cfg.IncludeHidden,
		Tree:           cfg.Tree,
		NoGit:          !cfg.UseGit,
		AbstractLevel:  createAbstractLevel,
		Skeleton:       createSkeleton,
		CountTokens:    createTokens,
		Clipboard:      createClipboard,
		Excludes:       createExcludes,
		IgnoreDirs:     cfg.Ignore.Directories,
		IgnoreExts:     cfg.Ignore.Extensions,
		IgnorePatterns: cfg.Ignore.Patterns,
	}

	if flags.Changed("output-dir") {
		req.OutputDir = createOutputDir
	}
	if flags.Changed("format") {
		req.Format = createFormat
	}
	if flags.Changed("compress") {
		req.Compress = createCompress
	}
	if flags.Changed("workers") {
		req.Workers = createWorkers
	}
	if flags.Changed("include-hidden") {
		req.IncludeHidden = createIncludeHidden
	}
	if createNoGit {
		req.NoGit = true
	}
	if createNoTree {
		req.Tree = false
	}

	if req.Format != "text" && req.Format != "json" {
		return nil, fmt.Errorf("invalid format %q: must be text or json", req.Format)
	}
	if req.Skeleton && req.AbstractLevel > 0 {
		return nil, fmt.Errorf("--skeleton and --abstract-level are mutually exclusive")
	}
	if req.Clipboard && req.Compress {
		return nil, fmt.Errorf("--clipboard and --compress are mutually exclusive")
	}

	return req, nil
}

// performCreate runs the full snapshot pipeline: discover, filter, read,
// transform, serialize, and deliver. Watch mode calls this on every
// detected change.
func performCreate(ctx context.Context, req *createRequest, log zerolog.Logger) (*createOutcome, error) {
	started := time.Now()

	provider, err := pathlist.Select(req.Root, req.NoGit)
	if err != nil {
		return nil, err
	}

	paths, err := provider.List(ctx, req.Root)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	log.Debug().Str("provider", provider.Name()).Int("candidates", len(paths)).Msg("paths discovered")

	eng := buildEngine(req, log)

	opts := scan.Options{
		Workers:       req.Workers,
		MaxFileBytes:  req.MaxFileBytes,
		MaxTotalBytes: req.MaxTotalBytes,
		Transform:     buildTransform(req, log),
	}
	result, err := scan.Run(ctx, req.Root, paths, eng, opts, log)
	if err != nil {
		return nil, err
	}

	tree := ""
	if req.Tree {
		included := make([]string, 0, len(result.Emit))
		for _, r := range result.Emit {
			included = append(included, r.Path)
		}
		tree = snapshot.RenderTree(req.RootName, included)
	}

	doc := snapshot.FromRecords(result.Emit, tree)

	var rendered []byte
	ext := "txt"
	if req.Format == "json" {
		ext = "json"
		env := snapshot.Envelope{
			GeneratedAt: started.UTC(),
			Root:        req.RootName,
			Stats:       result.Stats,
		}
		rendered, err = snapshot.RenderJSON(doc, env)
		if err != nil {
			return nil, fmt.Errorf("serializing snapshot: %w", err)
		}
	} else {
		rendered = []byte(doc.Render())
	}

	if req.CountTokens {
		n, terr := tokens.Estimate(string(rendered))
		if terr != nil {
			log.Warn().Err(terr).Msg("token estimate unavailable")
		} else {
			result.Stats.TokenEstimate = n
		}
	}

	outcome := &createOutcome{
		Provider:  provider.Name(),
		Stats:     result.Stats,
		Truncated: result.Truncated,
		Bytes:     len(rendered),
	}

	if req.Clipboard {
		if err := clipboard.WriteAll(string(rendered)); err != nil {
			return nil, fmt.Errorf("copying to clipboard: %w", err)
		}
		outcome.Clipboard = true
	} else {
		data := rendered
		if req.Compress {
			data, err = archive.Compress(rendered)
			if err != nil {
				return nil, fmt.Errorf("compressing: %w", err)
			}
		}
		if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
		artifact := filepath.Join(req.OutputDir, archive.Name(req.RootName, ext, req.Compress, started))
		if err := os.WriteFile(artifact, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", artifact, err)
		}
		outcome.Artifact = artifact
		outcome.Bytes = len(data)
	}

	outcome.DurationMs = time.Since(started).Milliseconds()
	return outcome, nil
}

// buildEngine assembles the ignore rule chain. The .gitignore at the
// root is folded in so walk mode matches what git mode would exclude.
func buildEngine(req *createRequest, log zerolog.Logger) *ignore.Engine {
	var matchers []ignore.Matcher

	gi, err := ignore.LoadGitignore(req.Root)
	if err != nil {
		log.Warn().Err(err).Msg("gitignore unreadable, continuing without it")
	} else if gi != nil {
		matchers = append(matchers, gi)
	}

	if m := ignore.CompileExcludes(req.Excludes); m != nil {
		matchers = append(matchers, m)
	}

	return ignore.NewEngine(ignore.Config{
		Directories:   req.IgnoreDirs,
		Extensions:    req.IgnoreExts,
		Patterns:      req.IgnorePatterns,
		Exclude:       ignore.Merge(matchers...),
		IncludeHidden: req.IncludeHidden,
	}, log)
}

// buildTransform returns the content rewrite for skeleton or
// abstraction mode, or nil for verbatim snapshots. The grammar registry
// is built once per run and shared across all files.
func buildTransform(req *createRequest, log zerolog.Logger) func(string, []byte) []byte {
	if req.Skeleton {
		tr := skeleton.NewTransformer(skeleton.NewRegistry(), log)
		return tr.Transform
	}
	if req.AbstractLevel > 0 {
		ex := skeleton.NewExtractor(skeleton.NewRegistry(), req.AbstractLevel, log)
		return func(path string, content []byte) []byte {
			if skeleton.Detect(path) == skeleton.LangC {
				return ex.Extract(content)
			}
			return content
		}
	}
	return nil
}

// historyKeep caps recorded runs per project root.
const historyKeep = 50

// recordRun stores the finished run in the history database. History is
// a convenience, so failures degrade to a warning.
func recordRun(req *createRequest, outcome *createOutcome, log zerolog.Logger) {
	db, err := store.Open(config.DBPath())
	if err != nil {
		log.Warn().Err(err).Msg("run history unavailable")
		return
	}
	defer func() { _ = db.Close() }()

	artifact := outcome.Artifact
	if outcome.Clipboard {
		artifact = "(clipboard)"
	}

	run := &store.Run{
		Root:          req.Root,
		Artifact:      artifact,
		Format:        req.Format,
		Compressed:    req.Compress,
		TotalFiles:    outcome.Stats.TotalFiles,
		IncludedFiles: outcome.Stats.IncludedFiles,
		SkippedFiles:  outcome.Stats.SkippedFiles,
		TotalBytes:    outcome.Stats.TotalBytes,
		TokenEstimate: outcome.Stats.TokenEstimate,
		Truncated:     outcome.Truncated,
		DurationMs:    outcome.DurationMs,
		Version:       appVersion,
	}
	if _, err := db.InsertRun(run); err != nil {
		log.Warn().Err(err).Msg("recording run failed")
		return
	}
	if _, err := db.PruneRuns(req.Root, historyKeep); err != nil {
		log.Warn().Err(err).Msg("pruning run history failed")
	}
}

func renderCreateSummary(req *createRequest, o *createOutcome) {
	fmt.Println(output.Section("Snapshot"))
	fmt.Println()

	fmt.Println(output.SummaryLine("Root:", fmt.Sprintf("%s (%s)", req.RootName, o.Provider)))
	fmt.Println(output.SummaryLine("Files:", output.Ratio(o.Stats.IncludedFiles, o.Stats.TotalFiles, "included")))
	if o.Stats.SkippedFiles > 0 {
		fmt.Println(output.SummaryLine("Skipped:", skipBreakdown(o.Stats)))
	}
	fmt.Println(output.SummaryLine("Content:", output.Bytes(o.Stats.TotalBytes)))
	if o.Stats.TokenEstimate > 0 {
		fmt.Println(output.SummaryLine("Tokens:", "~"+output.Count(o.Stats.TokenEstimate)))
	}
	if o.Truncated {
		fmt.Println(output.SummaryLine("Truncated:", output.StyleWarning.Render("yes, total size budget reached")))
	}
	if o.Clipboard {
		fmt.Println(output.SummaryLine("Artifact:", fmt.Sprintf("copied to clipboard (%s)", output.Bytes(int64(o.Bytes)))))
	} else {
		fmt.Println(output.SummaryLine("Artifact:", fmt.Sprintf("%s (%s)", o.Artifact, output.Bytes(int64(o.Bytes)))))
	}
	fmt.Println(output.SummaryLine("Duration:", fmt.Sprintf("%dms", o.DurationMs)))

	renderSkipSamples(o.Stats)
	fmt.Println()
}

// skipBreakdown renders skip counts per reason, largest first, like
// "6 (3 binary-file, 2 ignored-directory, 1 file-too-large)".
func skipBreakdown(stats *scan.Stats) string {
	reasons := make([]string, 0, len(stats.ByReason))
	for r := range stats.ByReason {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if stats.ByReason[reasons[i]] != stats.ByReason[reasons[j]] {
			return stats.ByReason[reasons[i]] > stats.ByReason[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})

	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, fmt.Sprintf("%d %s", stats.ByReason[r], r))
	}
	return fmt.Sprintf("%d (%s)", stats.SkippedFiles, strings.Join(parts, ", "))
}

// renderSkipSamples lists sample paths for failure reasons so oversized
// or unreadable files are easy to chase down.
func renderSkipSamples(stats *scan.Stats) {
	if stats.Errors == 0 && stats.ByReason[scan.ReasonTooLarge] == 0 {
		return
	}

	fmt.Println()
	for _, reason := range []string{scan.ReasonTooLarge, scan.ReasonReadError} {
		samples := stats.ReasonSamples[reason]
		if len(samples) == 0 {
			continue
		}
		fmt.Printf(" %s\n", output.StyleBold.Render(reason+":"))
		for _, p := range samples {
			fmt.Printf("   %s\n", output.StyleMuted.Render(p))
		}
		if extra := stats.ByReason[reason] - len(samples); extra > 0 {
			fmt.Printf("   %s\n", output.StyleMuted.Render(fmt.Sprintf("... and %d more", extra)))
		}
	}
}

// remoteName derives an artifact root name from a git URL.
func remoteName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return "snapshot"
	}
	return trimmed
}
