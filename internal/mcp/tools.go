package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/xelth-com/ecksnap/internal/config"
	"github.com/xelth-com/ecksnap/internal/ignore"
	"github.com/xelth-com/ecksnap/internal/pathlist"
	"github.com/xelth-com/ecksnap/internal/scan"
	"github.com/xelth-com/ecksnap/internal/skeleton"
	"github.com/xelth-com/ecksnap/internal/snapshot"
	"github.com/xelth-com/ecksnap/internal/store"
)

// mcpTotalBudget caps snapshot_project output when the config sets no
// budget of its own. An unbounded tree would blow the client's context
// window.
const mcpTotalBudget = 4 << 20

// SnapshotResult holds a rendered snapshot plus its scan summary.
type SnapshotResult struct {
	Root       string `json:"root"`
	Provider   string `json:"provider"`
	Files      int    `json:"files"`
	TotalBytes int64  `json:"total_bytes"`
	Truncated  bool   `json:"truncated,omitempty"`
	Snapshot   string `json:"snapshot"`
}

// ProjectStatsResult holds the scan summary without any file content.
type ProjectStatsResult struct {
	Root     string      `json:"root"`
	Provider string      `json:"provider"`
	Stats    *scan.Stats `json:"stats"`
}

// HistoryResult holds recorded snapshot runs, newest first.
type HistoryResult struct {
	Runs []store.Run `json:"runs"`
}

var (
	snapshotSchema = json.RawMessage(`{"type":"object","properties":{"root":{"type":"string","description":"Project directory to snapshot"},"skeleton":{"type":"boolean","description":"Hollow out function bodies, keeping signatures and types"},"max_file_size":{"type":"string","description":"Per-file size limit, e.g. \"256 KB\""},"max_total_size":{"type":"string","description":"Total content budget, e.g. \"2 MB\""}},"required":["root"],"additionalProperties":false}`)
	statsSchema    = json.RawMessage(`{"type":"object","properties":{"root":{"type":"string","description":"Project directory to analyze"}},"required":["root"],"additionalProperties":false}`)
	historySchema  = json.RawMessage(`{"type":"object","properties":{"root":{"type":"string","description":"Only runs for this project root"},"limit":{"type":"integer","description":"Runs to return (default 10)"}},"additionalProperties":false}`)
)

// addTools registers all three MCP tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "snapshot_project",
		Description: "Package a project tree into a single LLM-ready text snapshot, filtered the same way 'ecksnap create' filters.",
		InputSchema: snapshotSchema,
		Handler:     s.handleSnapshotProject,
	})
	s.registerTool(toolDef{
		Name:        "project_stats",
		Description: "File counts, sizes, and skip reasons for a project tree, without returning any content.",
		InputSchema: statsSchema,
		Handler:     s.handleProjectStats,
	})
	s.registerTool(toolDef{
		Name:        "list_snapshot_history",
		Description: "Recent snapshot runs recorded in the local history database.",
		InputSchema: historySchema,
		Handler:     s.handleListHistory,
	})
}

// snapshotArgs are the arguments accepted by snapshot_project.
type snapshotArgs struct {
	Root         string `json:"root"`
	Skeleton     bool   `json:"skeleton"`
	MaxFileSize  string `json:"max_file_size"`
	MaxTotalSize string `json:"max_total_size"`
}

// handleSnapshotProject runs the full pipeline in memory and returns
// the text rendering.
func (s *Server) handleSnapshotProject(args json.RawMessage) (any, error) {
	var p snapshotArgs
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	fileBudget, err := s.cfg.FileBudget()
	if err != nil {
		return nil, err
	}
	if p.MaxFileSize != "" {
		n, perr := humanize.ParseBytes(p.MaxFileSize)
		if perr != nil {
			return nil, fmt.Errorf("invalid max_file_size %q: %w", p.MaxFileSize, perr)
		}
		fileBudget = int64(n)
	}

	totalBudget, err := s.cfg.TotalBudget()
	if err != nil {
		return nil, err
	}
	if p.MaxTotalSize != "" {
		n, perr := humanize.ParseBytes(p.MaxTotalSize)
		if perr != nil {
			return nil, fmt.Errorf("invalid max_total_size %q: %w", p.MaxTotalSize, perr)
		}
		totalBudget = int64(n)
	}
	if totalBudget <= 0 {
		totalBudget = mcpTotalBudget
	}

	providerName, result, root, err := s.scanProject(p.Root, p.Skeleton, fileBudget, totalBudget)
	if err != nil {
		return nil, err
	}

	doc := snapshot.FromRecords(result.Emit, "")

	// Report what the rendering actually carries: a truncated run
	// includes fewer files than the stats counted.
	return SnapshotResult{
		Root:       root,
		Provider:   providerName,
		Files:      len(doc.Entries),
		TotalBytes: result.Stats.TotalBytes,
		Truncated:  result.Truncated,
		Snapshot:   doc.Render(),
	}, nil
}

// handleProjectStats runs discovery and filtering, returning only the
// summary.
func (s *Server) handleProjectStats(args json.RawMessage) (any, error) {
	var p struct {
		Root string `json:"root"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	fileBudget, err := s.cfg.FileBudget()
	if err != nil {
		return nil, err
	}
	totalBudget, err := s.cfg.TotalBudget()
	if err != nil {
		return nil, err
	}

	providerName, result, root, err := s.scanProject(p.Root, false, fileBudget, totalBudget)
	if err != nil {
		return nil, err
	}

	return ProjectStatsResult{
		Root:     root,
		Provider: providerName,
		Stats:    result.Stats,
	}, nil
}

// handleListHistory returns recent runs from the history database.
func (s *Server) handleListHistory(args json.RawMessage) (any, error) {
	var p struct {
		Root  string `json:"root"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	root := p.Root
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", root, err)
		}
		root = abs
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	runs, err := db.ListRuns(root, limit)
	if err != nil {
		return nil, err
	}
	return HistoryResult{Runs: runs}, nil
}

// scanProject runs discovery, filtering, and reading for one MCP call.
// Handlers run synchronously per request, so a background context is
// fine here.
func (s *Server) scanProject(root string, hollow bool, fileBudget, totalBudget int64) (string, *scan.Result, string, error) {
	if root == "" {
		return "", nil, "", fmt.Errorf("root is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", nil, "", fmt.Errorf("root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", nil, "", fmt.Errorf("root %s is not a directory", root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", nil, "", fmt.Errorf("resolving %s: %w", root, err)
	}

	ctx := context.Background()

	provider, err := pathlist.Select(abs, !s.cfg.UseGit)
	if err != nil {
		return "", nil, "", err
	}
	paths, err := provider.List(ctx, abs)
	if err != nil {
		return "", nil, "", fmt.Errorf("listing files: %w", err)
	}

	var matchers []ignore.Matcher
	if gi, gerr := ignore.LoadGitignore(abs); gerr == nil && gi != nil {
		matchers = append(matchers, gi)
	}
	eng := ignore.NewEngine(ignore.Config{
		Directories:   s.cfg.Ignore.Directories,
		Extensions:    s.cfg.Ignore.Extensions,
		Patterns:      s.cfg.Ignore.Patterns,
		Exclude:       ignore.Merge(matchers...),
		IncludeHidden: s.cfg.IncludeHidden,
	}, s.log)

	var transform func(string, []byte) []byte
	if hollow {
		transform = skeleton.NewTransformer(s.reg, s.log).Transform
	}

	result, err := scan.Run(ctx, abs, paths, eng, scan.Options{
		Workers:       s.cfg.Workers,
		MaxFileBytes:  fileBudget,
		MaxTotalBytes: totalBudget,
		Transform:     transform,
	}, s.log)
	if err != nil {
		return "", nil, "", err
	}
	return provider.Name(), result, abs, nil
}
